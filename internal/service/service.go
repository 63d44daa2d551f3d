// Package service содержит бизнес-логику: граф подписок, сборку лент,
// лайки и комментарии, создание постов и работу с аккаунтами.
// Идентификатор вызывающего всегда передается явным параметром.
package service

import (
	"github.com/UkralStul/socialgraph/internal/clock"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/UkralStul/socialgraph/internal/storage"
	"go.uber.org/zap"
)

// Notifier получает события для живых подписок. Доставка best-effort.
type Notifier interface {
	Publish(topic string, ev realtime.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, realtime.Event) {}

// Limits - размеры страниц по умолчанию и верхняя граница.
type Limits struct {
	FeedLimit       int
	AccountLimit    int
	SuggestionLimit int
	MaxLimit        int
}

func DefaultLimits() Limits {
	return Limits{FeedLimit: 10, AccountLimit: 20, SuggestionLimit: 5, MaxLimit: 100}
}

// normalize подставляет значения по умолчанию вместо неположительных.
func (l Limits) normalize(req domain.PageRequest, def int) domain.PageRequest {
	if req.Limit <= 0 {
		req.Limit = def
	}
	if l.MaxLimit > 0 && req.Limit > l.MaxLimit {
		req.Limit = l.MaxLimit
	}
	if req.Page < 1 {
		req.Page = 1
	}
	return req
}

func (l Limits) suggestionLimit(limit int) int {
	if limit <= 0 {
		limit = l.SuggestionLimit
	}
	if l.MaxLimit > 0 && limit > l.MaxLimit {
		limit = l.MaxLimit
	}
	return limit
}

// Config - общие зависимости сервисов. Нулевые поля заменяются безопасными значениями.
type Config struct {
	Clock    clock.Clock
	Notifier Notifier
	Logger   *zap.Logger
	Limits   Limits
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = clock.NewRealClock()
	}
	if c.Notifier == nil {
		c.Notifier = nopNotifier{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	def := DefaultLimits()
	if c.Limits.FeedLimit <= 0 {
		c.Limits.FeedLimit = def.FeedLimit
	}
	if c.Limits.AccountLimit <= 0 {
		c.Limits.AccountLimit = def.AccountLimit
	}
	if c.Limits.SuggestionLimit <= 0 {
		c.Limits.SuggestionLimit = def.SuggestionLimit
	}
	if c.Limits.MaxLimit <= 0 {
		c.Limits.MaxLimit = def.MaxLimit
	}
	return c
}

// Services собирает все сервисы поверх одного хранилища.
type Services struct {
	Graph      *SocialGraph
	Feeds      *FeedAssembler
	Engagement *Engagement
	Posts      *Posts
	Accounts   *Accounts
}

func New(store storage.Storage, cfg Config) *Services {
	cfg = cfg.withDefaults()
	graph := NewSocialGraph(store, cfg)
	return &Services{
		Graph:      graph,
		Feeds:      NewFeedAssembler(store, graph, cfg),
		Engagement: NewEngagement(store, cfg),
		Posts:      NewPosts(store, cfg),
		Accounts:   NewAccounts(store, cfg),
	}
}

// logFailure пишет в лог только внутренние отказы; нарушения бизнес-правил - ответ клиенту.
func logFailure(log *zap.Logger, msg string, err error, fields ...zap.Field) {
	if domain.KindOf(err) != domain.KindInternal {
		return
	}
	log.Error(msg, append(fields, zap.Error(err))...)
}
