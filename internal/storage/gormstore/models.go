package gormstore

import (
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
)

type AccountModel struct {
	ID             string `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null"`
	FirstName      string `gorm:"not null;default:''"`
	LastName       string `gorm:"not null;default:''"`
	Bio            string `gorm:"not null;default:''"`
	ProfilePicture string `gorm:"not null;default:''"`
	CreatedAt      time.Time
}

func (AccountModel) TableName() string { return "accounts" }

// FollowModel - одно ребро подписки. Одна строка обслуживает обе стороны:
// following - по follower_id, followers - по индексу followee_id.
type FollowModel struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}

func (FollowModel) TableName() string { return "follows" }

type PostModel struct {
	ID        string `gorm:"primaryKey"`
	AuthorID  string `gorm:"not null;index"`
	Content   string `gorm:"not null"`
	Image     string `gorm:"not null;default:''"`
	CreatedAt time.Time
}

func (PostModel) TableName() string { return "posts" }

type HashtagModel struct {
	PostID string `gorm:"primaryKey"`
	Ord    int    `gorm:"primaryKey"`
	Tag    string `gorm:"not null;index"`
}

func (HashtagModel) TableName() string { return "post_hashtags" }

type MentionModel struct {
	PostID    string `gorm:"primaryKey"`
	AccountID string `gorm:"primaryKey"`
	Ord       int    `gorm:"not null"`
}

func (MentionModel) TableName() string { return "post_mentions" }

type LikeModel struct {
	PostID    string `gorm:"primaryKey"`
	AccountID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (LikeModel) TableName() string { return "likes" }

type CommentModel struct {
	ID        string `gorm:"primaryKey"`
	PostID    string `gorm:"not null;index"`
	AuthorID  string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func (CommentModel) TableName() string { return "comments" }

func toAccount(m AccountModel) *domain.Account {
	return &domain.Account{
		ID:             m.ID,
		Username:       m.Username,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Bio:            m.Bio,
		ProfilePicture: m.ProfilePicture,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func toAccounts(rows []AccountModel) []*domain.Account {
	result := make([]*domain.Account, 0, len(rows))
	for _, m := range rows {
		result = append(result, toAccount(m))
	}
	return result
}

func toComment(m CommentModel) *domain.Comment {
	return &domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
