package storage

import (
	"context"

	"github.com/UkralStul/socialgraph/internal/domain"
)

// PostFilter - предикат выборки постов. Порядок всегда (createdAt DESC, id DESC).
type PostFilter struct {
	// AuthorIDs ограничивает выборку авторами; nil - любые авторы, пустой слайс - никто.
	AuthorIDs []string
	// Query - подстрока текста или точный хэштег, без учета регистра.
	Query string
	// After оставляет только посты строго после курсора.
	After *domain.Cursor
}

// IdentityStore хранит учетные записи и ребра подписок.
// Ребро (actor -> target) всегда видно с обеих сторон одновременно.
type IdentityStore interface {
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	GetAccountsByUsernames(ctx context.Context, usernames []string) ([]*domain.Account, error)
	ListAccounts(ctx context.Context, search string, limit, offset int) ([]*domain.Account, int64, error)

	SetFollowing(ctx context.Context, actorID, targetID string, desired bool) (domain.FollowResult, error)
	IsFollowing(ctx context.Context, actorID, targetID string) (bool, error)
	GetFollowingIDs(ctx context.Context, accountID string) ([]string, error)
	GetFollowerIDs(ctx context.Context, accountID string) ([]string, error)
	ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error)
	ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error)
	CountFollowers(ctx context.Context, accountID string) (int64, error)
	CountFollowing(ctx context.Context, accountID string) (int64, error)
	ListSuggestions(ctx context.Context, accountID string, limit int) ([]*domain.Account, error)

	// Метод для Dataloader'а
	GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*domain.Account, error)
}

// ContentStore хранит посты вместе с хэштегами, упоминаниями, лайками и комментариями.
type ContentStore interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*domain.Post, int64, error)
	CountPostsByAuthor(ctx context.Context, authorID string) (int64, error)
	DeletePost(ctx context.Context, id string) error

	SetLiked(ctx context.Context, postID, accountID string, desired bool) (domain.LikeResult, error)
	IsLiked(ctx context.Context, postID, accountID string) (bool, error)
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
}

// Storage определяет контракт для хранилищ.
type Storage interface {
	IdentityStore
	ContentStore
	Close() error
}
