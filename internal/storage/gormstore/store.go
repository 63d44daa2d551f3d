package gormstore

import (
	"context"
	"strings"
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// Store реализует интерфейс Storage поверх gorm (PostgreSQL или SQLite).
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New оборачивает уже открытое и смигрированное подключение.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === Account Methods ===

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m := AccountModel{
		ID:             uuid.NewString(),
		Username:       account.Username,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		Bio:            account.Bio,
		ProfilePicture: account.ProfilePicture,
		CreatedAt:      account.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&AccountModel{}).Where("username = ?", m.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return domain.InvalidInput("username %q is already taken", m.Username)
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.InvalidInput("username %q is already taken", m.Username)
		}
		return nil, wrap(err, "creating account failed")
	}
	return toAccount(m), nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	var m AccountModel
	if err := s.db.WithContext(ctx).Take(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("account with id %s not found", id)
		}
		return nil, errors.Wrap(err, "loading account failed")
	}
	return toAccount(m), nil
}

func (s *Store) GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*domain.Account, error) {
	result := make(map[string]*domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []AccountModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "loading accounts failed")
	}
	for _, m := range rows {
		result[m.ID] = toAccount(m)
	}
	return result, nil
}

func (s *Store) GetAccountsByUsernames(ctx context.Context, usernames []string) ([]*domain.Account, error) {
	if len(usernames) == 0 {
		return []*domain.Account{}, nil
	}
	var rows []AccountModel
	if err := s.db.WithContext(ctx).Where("username IN ?", usernames).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "resolving usernames failed")
	}
	byName := make(map[string]AccountModel, len(rows))
	for _, m := range rows {
		byName[m.Username] = m
	}
	// Порядок как во входе, без повторов
	result := make([]*domain.Account, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, name := range usernames {
		m, ok := byName[name]
		if !ok {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		result = append(result, toAccount(m))
	}
	return result, nil
}

func (s *Store) ListAccounts(ctx context.Context, search string, limit, offset int) ([]*domain.Account, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&AccountModel{})
		if needle := strings.ToLower(strings.TrimSpace(search)); needle != "" {
			like := "%" + escapeLike(needle) + "%"
			q = q.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`, like, like, like)
		}
		return q
	}

	var total int64
	var rows []AccountModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(scope).Order("username ASC").Limit(limit).Offset(offset).Find(&rows).Error
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing accounts failed")
	}
	return toAccounts(rows), total, nil
}

// === Follow Methods ===

func (s *Store) SetFollowing(ctx context.Context, actorID, targetID string, desired bool) (domain.FollowResult, error) {
	if actorID == targetID {
		return domain.FollowResult{}, domain.InvalidOperation("you cannot follow yourself")
	}

	var followers int64
	// Ребро - одна строка, поэтому обе стороны меняются одной записью в транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, actorID); err != nil {
			return err
		}
		if err := requireAccount(tx, targetID); err != nil {
			return err
		}

		if desired {
			edge := FollowModel{FollowerID: actorID, FolloweeID: targetID, CreatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).Delete(&FollowModel{}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&FollowModel{}).Where("followee_id = ?", targetID).Count(&followers).Error
	})
	if err != nil {
		return domain.FollowResult{}, wrap(err, "updating follow edge failed")
	}
	return domain.FollowResult{Following: desired, FollowerCount: followers}, nil
}

func (s *Store) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&FollowModel{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "checking follow edge failed")
	}
	return count > 0, nil
}

func (s *Store) GetFollowingIDs(ctx context.Context, accountID string) ([]string, error) {
	return s.edgeIDs(ctx, accountID, "followee_id", "follower_id = ?")
}

func (s *Store) GetFollowerIDs(ctx context.Context, accountID string) ([]string, error) {
	return s.edgeIDs(ctx, accountID, "follower_id", "followee_id = ?")
}

func (s *Store) edgeIDs(ctx context.Context, accountID, column, where string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, accountID); err != nil {
			return err
		}
		return tx.Model(&FollowModel{}).Where(where, accountID).Order(column).Pluck(column, &ids).Error
	})
	if err != nil {
		return nil, wrap(err, "resolving follow edges failed")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Store) ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error) {
	return s.listEdgeSide(ctx, accountID, limit, offset, "follows.follower_id = accounts.id", "follows.followee_id = ?")
}

func (s *Store) ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]*domain.Account, int64, error) {
	return s.listEdgeSide(ctx, accountID, limit, offset, "follows.followee_id = accounts.id", "follows.follower_id = ?")
}

func (s *Store) listEdgeSide(ctx context.Context, accountID string, limit, offset int, on, where string) ([]*domain.Account, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&AccountModel{}).Joins("JOIN follows ON "+on).Where(where, accountID)
	}

	var total int64
	var rows []AccountModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, accountID); err != nil {
			return err
		}
		if err := tx.Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(scope).Select("accounts.*").Order("accounts.username ASC").Limit(limit).Offset(offset).Find(&rows).Error
	})
	if err != nil {
		return nil, 0, wrap(err, "listing follow edges failed")
	}
	return toAccounts(rows), total, nil
}

func (s *Store) CountFollowers(ctx context.Context, accountID string) (int64, error) {
	return s.countEdges(ctx, accountID, "followee_id = ?")
}

func (s *Store) CountFollowing(ctx context.Context, accountID string) (int64, error) {
	return s.countEdges(ctx, accountID, "follower_id = ?")
}

func (s *Store) countEdges(ctx context.Context, accountID, where string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, accountID); err != nil {
			return err
		}
		return tx.Model(&FollowModel{}).Where(where, accountID).Count(&count).Error
	})
	if err != nil {
		return 0, wrap(err, "counting follow edges failed")
	}
	return count, nil
}

func (s *Store) ListSuggestions(ctx context.Context, accountID string, limit int) ([]*domain.Account, error) {
	var rows []AccountModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, accountID); err != nil {
			return err
		}
		return tx.
			Where("id <> ? AND id NOT IN (SELECT followee_id FROM follows WHERE follower_id = ?)", accountID, accountID).
			Order("created_at DESC, id DESC").
			Limit(limit).
			Find(&rows).Error
	})
	if err != nil {
		return nil, wrap(err, "listing suggestions failed")
	}
	return toAccounts(rows), nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	m := PostModel{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Image:     post.Image,
		CreatedAt: post.CreatedAt,
	}
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV7()).String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, m.AuthorID); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(post.Hashtags) > 0 {
			tags := make([]HashtagModel, len(post.Hashtags))
			for i, tag := range post.Hashtags {
				tags[i] = HashtagModel{PostID: m.ID, Ord: i, Tag: tag}
			}
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		if len(post.Mentions) > 0 {
			mentions := make([]MentionModel, len(post.Mentions))
			for i, id := range post.Mentions {
				mentions[i] = MentionModel{PostID: m.ID, AccountID: id, Ord: i}
			}
			if err := tx.Create(&mentions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "creating post failed")
	}

	created := post.Clone()
	created.ID = m.ID
	created.CreatedAt = m.CreatedAt.UTC()
	created.Likes = []string{}
	created.Comments = []*domain.Comment{}
	return created, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post *domain.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m PostModel
		if err := tx.Take(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("post with id %s not found", id)
			}
			return err
		}
		posts, err := loadDetails(tx, []PostModel{m})
		if err != nil {
			return err
		}
		post = posts[0]
		return nil
	})
	if err != nil {
		return nil, wrap(err, "loading post failed")
	}
	return post, nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&PostModel{})
		if filter.AuthorIDs != nil {
			if len(filter.AuthorIDs) == 0 {
				return q.Where("1 = 0")
			}
			q = q.Where("author_id IN ?", filter.AuthorIDs)
		}
		if query := strings.ToLower(strings.TrimSpace(filter.Query)); query != "" {
			like := "%" + escapeLike(query) + "%"
			q = q.Where(`(LOWER(content) LIKE ? ESCAPE '\' OR id IN (SELECT post_id FROM post_hashtags WHERE tag = ?))`, like, query)
		}
		if c := filter.After; c != nil {
			q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
		}
		return q
	}

	var total int64
	var posts []*domain.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		var rows []PostModel
		if err := tx.Scopes(scope).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
			return err
		}
		var err error
		posts, err = loadDetails(tx, rows)
		return err
	})
	if err != nil {
		return nil, 0, wrap(err, "listing posts failed")
	}
	return posts, total, nil
}

func (s *Store) CountPostsByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&PostModel{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting posts failed")
	}
	return count, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, id); err != nil {
			return err
		}
		for _, model := range []any{&CommentModel{}, &LikeModel{}, &MentionModel{}, &HashtagModel{}} {
			if err := tx.Where("post_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&PostModel{}).Error
	})
	return wrap(err, "deleting post failed")
}

// === Engagement Methods ===

func (s *Store) SetLiked(ctx context.Context, postID, accountID string, desired bool) (domain.LikeResult, error) {
	var likes int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		if err := requireAccount(tx, accountID); err != nil {
			return err
		}
		if desired {
			like := LikeModel{PostID: postID, AccountID: accountID, CreatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("post_id = ? AND account_id = ?", postID, accountID).Delete(&LikeModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&LikeModel{}).Where("post_id = ?", postID).Count(&likes).Error
	})
	if err != nil {
		return domain.LikeResult{}, wrap(err, "updating like failed")
	}
	return domain.LikeResult{Liked: desired, LikeCount: int(likes)}, nil
}

func (s *Store) IsLiked(ctx context.Context, postID, accountID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		return tx.Model(&LikeModel{}).Where("post_id = ? AND account_id = ?", postID, accountID).Count(&count).Error
	})
	if err != nil {
		return false, wrap(err, "checking like failed")
	}
	return count > 0, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	m := CommentModel{
		ID:        uuid.NewString(),
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	// Проверяем пост и автора и создаем комментарий в одной транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, m.PostID); err != nil {
			return err
		}
		if err := requireAccount(tx, m.AuthorID); err != nil {
			return err
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, wrap(err, "creating comment failed")
	}
	return toComment(m), nil
}

// === Helpers ===

func requireAccount(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&AccountModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFound("account with id %s not found", id)
	}
	return nil
}

func requirePost(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&PostModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFound("post with id %s not found", id)
	}
	return nil
}

// loadDetails подгружает хэштеги, упоминания, лайки и комментарии для страницы постов
// несколькими запросами вместо N+1.
func loadDetails(tx *gorm.DB, rows []PostModel) ([]*domain.Post, error) {
	posts := make([]*domain.Post, len(rows))
	byID := make(map[string]*domain.Post, len(rows))
	ids := make([]string, len(rows))
	for i, m := range rows {
		p := &domain.Post{
			ID:        m.ID,
			AuthorID:  m.AuthorID,
			Content:   m.Content,
			Image:     m.Image,
			Hashtags:  []string{},
			Mentions:  []string{},
			Likes:     []string{},
			Comments:  []*domain.Comment{},
			CreatedAt: m.CreatedAt.UTC(),
		}
		posts[i] = p
		byID[m.ID] = p
		ids[i] = m.ID
	}
	if len(ids) == 0 {
		return posts, nil
	}

	var tags []HashtagModel
	if err := tx.Where("post_id IN ?", ids).Order("post_id, ord").Find(&tags).Error; err != nil {
		return nil, err
	}
	for _, t := range tags {
		byID[t.PostID].Hashtags = append(byID[t.PostID].Hashtags, t.Tag)
	}

	var mentions []MentionModel
	if err := tx.Where("post_id IN ?", ids).Order("post_id, ord").Find(&mentions).Error; err != nil {
		return nil, err
	}
	for _, m := range mentions {
		byID[m.PostID].Mentions = append(byID[m.PostID].Mentions, m.AccountID)
	}

	var likes []LikeModel
	if err := tx.Where("post_id IN ?", ids).Order("created_at, account_id").Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		byID[l.PostID].Likes = append(byID[l.PostID].Likes, l.AccountID)
	}

	var comments []CommentModel
	if err := tx.Where("post_id IN ?", ids).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		byID[c.PostID].Comments = append(byID[c.PostID].Comments, toComment(c))
	}

	return posts, nil
}

// wrap оставляет ошибки бизнес-правил как есть, остальное помечает как отказ хранилища.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return errors.Wrap(err, msg)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
