package service

import (
	"context"
	"unicode/utf8"

	"github.com/UkralStul/socialgraph/internal/clock"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/UkralStul/socialgraph/internal/tagging"
	"go.uber.org/zap"
)

const (
	MinCommentLength = 1
	MaxCommentLength = 160
)

// Engagement - лайки, комментарии и удаление постов.
type Engagement struct {
	store    storage.ContentStore
	clock    clock.Clock
	notifier Notifier
	log      *zap.Logger
}

func NewEngagement(store storage.ContentStore, cfg Config) *Engagement {
	cfg = cfg.withDefaults()
	return &Engagement{store: store, clock: cfg.Clock, notifier: cfg.Notifier, log: cfg.Logger}
}

// ToggleLike ставит лайк, если его нет, и снимает, если есть.
func (e *Engagement) ToggleLike(ctx context.Context, postID, actorID string) (domain.LikeResult, error) {
	liked, err := e.store.IsLiked(ctx, postID, actorID)
	if err != nil {
		logFailure(e.log, "reading like failed", err, zap.String("post", postID), zap.String("actor", actorID))
		return domain.LikeResult{}, err
	}
	return e.SetLiked(ctx, postID, actorID, !liked)
}

// SetLiked приводит лайк к нужному состоянию. Идемпотентен.
func (e *Engagement) SetLiked(ctx context.Context, postID, actorID string, desired bool) (domain.LikeResult, error) {
	res, err := e.store.SetLiked(ctx, postID, actorID, desired)
	if err != nil {
		logFailure(e.log, "updating like failed", err, zap.String("post", postID), zap.String("actor", actorID))
		return domain.LikeResult{}, err
	}
	e.log.Debug("like updated",
		zap.String("post", postID),
		zap.String("actor", actorID),
		zap.Bool("liked", res.Liked),
		zap.Int("likes", res.LikeCount),
	)
	return res, nil
}

// AddComment добавляет комментарий и уведомляет подписчиков поста.
func (e *Engagement) AddComment(ctx context.Context, postID, actorID, content string) (*domain.Comment, error) {
	content = tagging.Normalize(content)
	if n := utf8.RuneCountInString(content); n < MinCommentLength || n > MaxCommentLength {
		return nil, domain.InvalidInput("comment must be between %d and %d characters", MinCommentLength, MaxCommentLength)
	}

	comment, err := e.store.CreateComment(ctx, &domain.Comment{
		PostID:    postID,
		AuthorID:  actorID,
		Content:   content,
		CreatedAt: e.clock.NowUtc(),
	})
	if err != nil {
		logFailure(e.log, "creating comment failed", err, zap.String("post", postID))
		return nil, err
	}

	e.notifier.Publish(realtime.PostTopic(postID), realtime.Event{Type: realtime.EventCommentAdded, Comment: comment})
	return comment, nil
}

// DeletePost удаляет пост вместе с лайками и комментариями. Удалить может только автор.
func (e *Engagement) DeletePost(ctx context.Context, postID, actorID string) error {
	post, err := e.store.GetPostByID(ctx, postID)
	if err != nil {
		logFailure(e.log, "loading post failed", err, zap.String("post", postID))
		return err
	}
	if post.AuthorID != actorID {
		return domain.Forbidden("not authorized to delete this post")
	}
	if err := e.store.DeletePost(ctx, postID); err != nil {
		logFailure(e.log, "deleting post failed", err, zap.String("post", postID))
		return err
	}
	e.log.Debug("post deleted", zap.String("post", postID), zap.String("actor", actorID))
	return nil
}
