package inmemory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/google/uuid"
)

type accountRecord struct {
	account   *domain.Account
	followers map[string]struct{}
	following map[string]struct{}
}

// Store реализует интерфейс Storage в памяти.
// Все мутации идут под одной блокировкой, поэтому обе стороны ребра подписки
// меняются за один критический участок.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*accountRecord
	byUsername map[string]string
	posts      map[string]*domain.Post
	timeline   []*domain.Post            // все посты, от старых к новым
	byAuthor   map[string][]*domain.Post // map[authorID], от старых к новым
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		accounts:   make(map[string]*accountRecord),
		byUsername: make(map[string]string),
		posts:      make(map[string]*domain.Post),
		byAuthor:   make(map[string][]*domain.Post),
	}
}

func (s *Store) Close() error { return nil }

// === Account Methods ===

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[account.Username]; taken {
		return nil, domain.InvalidInput("username %q is already taken", account.Username)
	}

	acc := *account
	acc.ID = uuid.NewString()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	s.accounts[acc.ID] = &accountRecord{
		account:   &acc,
		followers: make(map[string]struct{}),
		following: make(map[string]struct{}),
	}
	s.byUsername[acc.Username] = acc.ID

	out := acc
	return &out, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[id]
	if !ok {
		return nil, domain.NotFound("account with id %s not found", id)
	}
	acc := *rec.account
	return &acc, nil
}

func (s *Store) GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.Account, len(ids))
	for _, id := range ids {
		if rec, ok := s.accounts[id]; ok {
			acc := *rec.account
			result[id] = &acc
		}
	}
	return result, nil
}

func (s *Store) GetAccountsByUsernames(ctx context.Context, usernames []string) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Account, 0, len(usernames))
	seen := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		id, ok := s.byUsername[name]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		acc := *s.accounts[id].account
		result = append(result, &acc)
	}
	return result, nil
}

func (s *Store) ListAccounts(ctx context.Context, search string, limit, offset int) ([]*domain.Account, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	matched := make([]*domain.Account, 0, len(s.accounts))
	for _, rec := range s.accounts {
		a := rec.account
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Username), needle) &&
			!strings.Contains(strings.ToLower(a.FirstName), needle) &&
			!strings.Contains(strings.ToLower(a.LastName), needle) {
			continue
		}
		matched = append(matched, a)
	}
	sortByUsername(matched)
	return paginateAccounts(matched, limit, offset), int64(len(matched)), nil
}

// === Follow Methods ===

func (s *Store) SetFollowing(ctx context.Context, actorID, targetID string, desired bool) (domain.FollowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actorID == targetID {
		return domain.FollowResult{}, domain.InvalidOperation("you cannot follow yourself")
	}
	actor, ok := s.accounts[actorID]
	if !ok {
		return domain.FollowResult{}, domain.NotFound("account with id %s not found", actorID)
	}
	target, ok := s.accounts[targetID]
	if !ok {
		return domain.FollowResult{}, domain.NotFound("account with id %s not found", targetID)
	}

	if desired {
		actor.following[targetID] = struct{}{}
		target.followers[actorID] = struct{}{}
	} else {
		delete(actor.following, targetID)
		delete(target.followers, actorID)
	}

	return domain.FollowResult{
		Following:     desired,
		FollowerCount: int64(len(target.followers)),
	}, nil
}

func (s *Store) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.accounts[actorID]
	if !ok {
		return false, domain.NotFound("account with id %s not found", actorID)
	}
	_, following := actor.following[targetID]
	return following, nil
}

func (s *Store) GetFollowingIDs(ctx context.Context, accountID string) ([]string, error) {
	return s.edgeIDs(accountID, func(r *accountRecord) map[string]struct{} { return r.following })
}

func (s *Store) GetFollowerIDs(ctx context.Context, accountID string) ([]string, error) {
	return s.edgeIDs(accountID, func(r *accountRecord) map[string]struct{} { return r.followers })
}

func (s *Store) edgeIDs(accountID string, side func(*accountRecord) map[string]struct{}) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.NotFound("account with id %s not found", accountID)
	}
	set := side(rec)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error) {
	return s.listEdgeSide(accountID, limit, offset, func(r *accountRecord) map[string]struct{} { return r.followers })
}

func (s *Store) ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error) {
	return s.listEdgeSide(accountID, limit, offset, func(r *accountRecord) map[string]struct{} { return r.following })
}

func (s *Store) listEdgeSide(accountID string, limit, offset int, side func(*accountRecord) map[string]struct{}) ([]*domain.Account, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, 0, domain.NotFound("account with id %s not found", accountID)
	}
	ids := side(rec)
	accounts := make([]*domain.Account, 0, len(ids))
	for id := range ids {
		if other, ok := s.accounts[id]; ok {
			accounts = append(accounts, other.account)
		}
	}
	sortByUsername(accounts)
	return paginateAccounts(accounts, limit, offset), int64(len(accounts)), nil
}

func (s *Store) CountFollowers(ctx context.Context, accountID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return 0, domain.NotFound("account with id %s not found", accountID)
	}
	return int64(len(rec.followers)), nil
}

func (s *Store) CountFollowing(ctx context.Context, accountID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return 0, domain.NotFound("account with id %s not found", accountID)
	}
	return int64(len(rec.following)), nil
}

func (s *Store) ListSuggestions(ctx context.Context, accountID string, limit int) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.NotFound("account with id %s not found", accountID)
	}
	candidates := make([]*domain.Account, 0, len(s.accounts))
	for id, other := range s.accounts {
		if id == accountID {
			continue
		}
		if _, followed := rec.following[id]; followed {
			continue
		}
		candidates = append(candidates, other.account)
	}
	// Сначала новые аккаунты
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID > candidates[j].ID
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return paginateAccounts(candidates, limit, 0), nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[post.AuthorID]; !ok {
		return nil, domain.NotFound("account with id %s not found", post.AuthorID)
	}

	p := post.Clone()
	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV7()).String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Likes = []string{}
	p.Comments = []*domain.Comment{}

	s.posts[p.ID] = p
	s.timeline = insertOrdered(s.timeline, p)
	s.byAuthor[p.AuthorID] = insertOrdered(s.byAuthor[p.AuthorID], p)

	return p.Clone(), nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, domain.NotFound("post with id %s not found", id)
	}
	return post.Clone(), nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stream postStream
	if filter.AuthorIDs == nil {
		stream = newTimelineStream(s.timeline)
	} else {
		lists := make([][]*domain.Post, 0, len(filter.AuthorIDs))
		for _, id := range filter.AuthorIDs {
			if posts := s.byAuthor[id]; len(posts) > 0 {
				lists = append(lists, posts)
			}
		}
		stream = newMergeStream(lists)
	}

	match := matcher(filter)
	page := make([]*domain.Post, 0, limit)
	var total int64
	for p := stream.next(); p != nil; p = stream.next() {
		if !match(p) {
			continue
		}
		if total >= int64(offset) && len(page) < limit {
			page = append(page, p.Clone())
		}
		total++
	}
	return page, total, nil
}

func (s *Store) CountPostsByAuthor(ctx context.Context, authorID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byAuthor[authorID])), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return domain.NotFound("post with id %s not found", id)
	}
	delete(s.posts, id)
	s.timeline = removeOrdered(s.timeline, post)
	s.byAuthor[post.AuthorID] = removeOrdered(s.byAuthor[post.AuthorID], post)
	if len(s.byAuthor[post.AuthorID]) == 0 {
		delete(s.byAuthor, post.AuthorID)
	}
	return nil
}

// === Engagement Methods ===

func (s *Store) SetLiked(ctx context.Context, postID, accountID string, desired bool) (domain.LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return domain.LikeResult{}, domain.NotFound("post with id %s not found", postID)
	}
	if _, ok := s.accounts[accountID]; !ok {
		return domain.LikeResult{}, domain.NotFound("account with id %s not found", accountID)
	}

	idx := slices.Index(post.Likes, accountID)
	switch {
	case desired && idx < 0:
		post.Likes = append(post.Likes, accountID)
	case !desired && idx >= 0:
		post.Likes = append(post.Likes[:idx], post.Likes[idx+1:]...)
	}

	return domain.LikeResult{Liked: desired, LikeCount: len(post.Likes)}, nil
}

func (s *Store) IsLiked(ctx context.Context, postID, accountID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return false, domain.NotFound("post with id %s not found", postID)
	}
	return post.LikedBy(accountID), nil
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return nil, domain.NotFound("post with id %s not found", comment.PostID)
	}
	if _, ok := s.accounts[comment.AuthorID]; !ok {
		return nil, domain.NotFound("account with id %s not found", comment.AuthorID)
	}

	c := *comment
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	post.Comments = append(post.Comments, &c)

	out := c
	return &out, nil
}

// === Helpers ===

func matcher(filter storage.PostFilter) func(*domain.Post) bool {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	return func(p *domain.Post) bool {
		if filter.After != nil && !filter.After.Before(p) {
			return false
		}
		if query == "" {
			return true
		}
		if strings.Contains(strings.ToLower(p.Content), query) {
			return true
		}
		for _, tag := range p.Hashtags {
			if tag == query {
				return true
			}
		}
		return false
	}
}

// insertOrdered вставляет пост, сохраняя порядок от старых к новым.
func insertOrdered(list []*domain.Post, p *domain.Post) []*domain.Post {
	i := sort.Search(len(list), func(i int) bool { return domain.Newer(list[i], p) })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = p
	return list
}

func removeOrdered(list []*domain.Post, p *domain.Post) []*domain.Post {
	i := sort.Search(len(list), func(i int) bool { return !domain.Newer(p, list[i]) })
	if i < len(list) && list[i].ID == p.ID {
		return append(list[:i], list[i+1:]...)
	}
	return list
}

func sortByUsername(accounts []*domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})
}

func paginateAccounts(all []*domain.Account, limit, offset int) []*domain.Account {
	if offset >= len(all) {
		return []*domain.Account{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*domain.Account, 0, end-offset)
	for _, a := range all[offset:end] {
		acc := *a
		out = append(out, &acc)
	}
	return out
}
