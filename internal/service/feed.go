package service

import (
	"context"
	"strings"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/UkralStul/socialgraph/internal/tagging"
	"go.uber.org/zap"
)

// FeedAssembler строит ленты. Все выборки упорядочены по (createdAt DESC, id DESC)
// и отличаются только предикатом.
type FeedAssembler struct {
	store  storage.Storage
	graph  *SocialGraph
	limits Limits
	log    *zap.Logger
}

func NewFeedAssembler(store storage.Storage, graph *SocialGraph, cfg Config) *FeedAssembler {
	cfg = cfg.withDefaults()
	return &FeedAssembler{store: store, graph: graph, limits: cfg.Limits, log: cfg.Logger}
}

// Feed - личная лента: свои посты и посты тех, на кого подписан владелец.
// Запросить ее может только сам владелец.
func (f *FeedAssembler) Feed(ctx context.Context, viewerID, ownerID string, req domain.PageRequest) (*domain.PostPage, error) {
	if viewerID != ownerID {
		return nil, domain.Forbidden("feed is only available to its owner")
	}
	followees, err := f.graph.ResolveFollowees(ctx, ownerID)
	if err != nil {
		logFailure(f.log, "resolving followees failed", err, zap.String("account", ownerID))
		return nil, err
	}
	authors := append([]string{ownerID}, followees...)
	return f.page(ctx, storage.PostFilter{AuthorIDs: authors}, req)
}

// Global - все посты.
func (f *FeedAssembler) Global(ctx context.Context, req domain.PageRequest) (*domain.PostPage, error) {
	return f.page(ctx, storage.PostFilter{}, req)
}

// UserPosts - посты одного автора.
func (f *FeedAssembler) UserPosts(ctx context.Context, authorID string, req domain.PageRequest) (*domain.PostPage, error) {
	if _, err := f.store.GetAccountByID(ctx, authorID); err != nil {
		logFailure(f.log, "loading author failed", err, zap.String("author", authorID))
		return nil, err
	}
	return f.page(ctx, storage.PostFilter{AuthorIDs: []string{authorID}}, req)
}

// Search ищет по подстроке текста или точному хэштегу, без учета регистра.
func (f *FeedAssembler) Search(ctx context.Context, query string, req domain.PageRequest) (*domain.PostPage, error) {
	query = strings.TrimSpace(tagging.Normalize(query))
	if query == "" {
		return nil, domain.InvalidInput("search query must not be empty")
	}
	return f.page(ctx, storage.PostFilter{Query: strings.ToLower(query)}, req)
}

func (f *FeedAssembler) page(ctx context.Context, filter storage.PostFilter, req domain.PageRequest) (*domain.PostPage, error) {
	req = f.limits.normalize(req, f.limits.FeedLimit)
	filter.After = req.Cursor

	posts, total, err := f.store.ListPosts(ctx, filter, req.Limit, req.Offset())
	if err != nil {
		logFailure(f.log, "listing posts failed", err)
		return nil, err
	}

	page := &domain.PostPage{
		Items:      posts,
		Pagination: domain.NewPagination(req, len(posts), total),
	}
	if page.Pagination.HasNext && len(posts) > 0 {
		page.NextCursor = domain.CursorOf(posts[len(posts)-1]).Encode()
	}
	return page, nil
}
