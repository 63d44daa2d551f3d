package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/UkralStul/socialgraph/internal/clock"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/UkralStul/socialgraph/internal/tagging"
	"go.uber.org/zap"
)

const (
	MinPostLength = 1
	MaxPostLength = 280
)

type NewPost struct {
	Content string
	// Image - ссылка на уже загруженный файл, хранится как есть.
	Image string
}

// Posts создает и отдает посты.
type Posts struct {
	store    storage.Storage
	clock    clock.Clock
	notifier Notifier
	log      *zap.Logger
}

func NewPosts(store storage.Storage, cfg Config) *Posts {
	cfg = cfg.withDefaults()
	return &Posts{store: store, clock: cfg.Clock, notifier: cfg.Notifier, log: cfg.Logger}
}

// Create разбирает хэштеги и упоминания, сохраняет пост и рассылает его в живые ленты
// автора и подписчиков. Упоминания несуществующих пользователей отбрасываются.
func (p *Posts) Create(ctx context.Context, actorID string, input NewPost) (*domain.Post, error) {
	content := tagging.Normalize(input.Content)
	if n := utf8.RuneCountInString(content); n < MinPostLength || n > MaxPostLength {
		return nil, domain.InvalidInput("post content must be between %d and %d characters", MinPostLength, MaxPostLength)
	}

	if _, err := p.store.GetAccountByID(ctx, actorID); err != nil {
		logFailure(p.log, "loading author failed", err, zap.String("author", actorID))
		return nil, err
	}

	tags := tagging.Extract(content)
	mentioned, err := p.store.GetAccountsByUsernames(ctx, tagging.UniqueMentions(tags.Mentions))
	if err != nil {
		logFailure(p.log, "resolving mentions failed", err)
		return nil, err
	}
	mentions := make([]string, 0, len(mentioned))
	for _, acc := range mentioned {
		mentions = append(mentions, acc.ID)
	}

	post, err := p.store.CreatePost(ctx, &domain.Post{
		AuthorID:  actorID,
		Content:   content,
		Image:     strings.TrimSpace(input.Image),
		Hashtags:  tags.Hashtags,
		Mentions:  mentions,
		CreatedAt: p.clock.NowUtc(),
	})
	if err != nil {
		logFailure(p.log, "creating post failed", err, zap.String("author", actorID))
		return nil, err
	}

	p.fanOut(ctx, post)
	return post, nil
}

func (p *Posts) Get(ctx context.Context, postID string) (*domain.Post, error) {
	return p.store.GetPostByID(ctx, postID)
}

// fanOut публикует пост в ленты автора и подписчиков. Ошибка чтения подписчиков
// не отменяет уже созданный пост.
func (p *Posts) fanOut(ctx context.Context, post *domain.Post) {
	ev := realtime.Event{Type: realtime.EventPostCreated, Post: post}
	p.notifier.Publish(realtime.FeedTopic(post.AuthorID), ev)

	followers, err := p.store.GetFollowerIDs(ctx, post.AuthorID)
	if err != nil {
		p.log.Warn("skipping live fan-out", zap.String("post", post.ID), zap.Error(err))
		return
	}
	for _, id := range followers {
		p.notifier.Publish(realtime.FeedTopic(id), ev)
	}
}
