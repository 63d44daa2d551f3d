package httpapi

import (
	"context"
	"time"

	"github.com/UkralStul/socialgraph/internal/dataloader"
	"github.com/UkralStul/socialgraph/internal/domain"
)

type commentView struct {
	ID        string                 `json:"id"`
	Author    *domain.AccountSummary `json:"author"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"createdAt"`
}

type postView struct {
	ID         string                 `json:"id"`
	Author     *domain.AccountSummary `json:"author"`
	Content    string                 `json:"content"`
	Image      string                 `json:"image"`
	Hashtags   []string               `json:"hashtags"`
	Mentions   []string               `json:"mentions"`
	Likes      []string               `json:"likes"`
	LikesCount int                    `json:"likesCount"`
	Comments   []commentView          `json:"comments"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type postListResponse struct {
	Items      []postView        `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type accountListResponse struct {
	Items      []*domain.Account `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

// authors подгружает авторов через лоадер запроса, а без него - одним запросом к хранилищу.
func (s *Server) authors(ctx context.Context, ids []string) (map[string]*domain.Account, error) {
	if loaders := dataloader.For(ctx); loaders != nil {
		return loaders.Accounts(ctx, ids)
	}
	return s.accounts.GetAccountsByIDs(ctx, ids)
}

func summaryOf(authors map[string]*domain.Account, id string) *domain.AccountSummary {
	acc, ok := authors[id]
	if !ok {
		return &domain.AccountSummary{ID: id}
	}
	summary := acc.Summary()
	return &summary
}

func (s *Server) postViews(ctx context.Context, posts []*domain.Post) ([]postView, error) {
	seen := make(map[string]struct{})
	var ids []string
	collect := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		collect(p.AuthorID)
		for _, c := range p.Comments {
			collect(c.AuthorID)
		}
	}

	authors, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]postView, len(posts))
	for i, p := range posts {
		comments := make([]commentView, len(p.Comments))
		for j, c := range p.Comments {
			comments[j] = commentViewOf(authors, c)
		}
		views[i] = postView{
			ID:         p.ID,
			Author:     summaryOf(authors, p.AuthorID),
			Content:    p.Content,
			Image:      p.Image,
			Hashtags:   p.Hashtags,
			Mentions:   p.Mentions,
			Likes:      p.Likes,
			LikesCount: p.LikeCount(),
			Comments:   comments,
			CreatedAt:  p.CreatedAt,
		}
	}
	return views, nil
}

func commentViewOf(authors map[string]*domain.Account, c *domain.Comment) commentView {
	return commentView{
		ID:        c.ID,
		Author:    summaryOf(authors, c.AuthorID),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) postList(ctx context.Context, page *domain.PostPage) (*postListResponse, error) {
	items, err := s.postViews(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	return &postListResponse{Items: items, Pagination: page.Pagination, NextCursor: page.NextCursor}, nil
}
