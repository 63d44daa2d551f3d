package service

import (
	"context"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"go.uber.org/zap"
)

// SocialGraph управляет ребрами подписок.
type SocialGraph struct {
	store storage.IdentityStore
	log   *zap.Logger
}

func NewSocialGraph(store storage.IdentityStore, cfg Config) *SocialGraph {
	cfg = cfg.withDefaults()
	return &SocialGraph{store: store, log: cfg.Logger}
}

// Follow - переключатель: подписывает, если подписки нет, и отписывает, если есть.
// Повтор запроса инвертирует результат; для безопасных повторов есть SetFollowing.
func (g *SocialGraph) Follow(ctx context.Context, actorID, targetID string) (domain.FollowResult, error) {
	if actorID == targetID {
		return domain.FollowResult{}, domain.InvalidOperation("you cannot follow yourself")
	}
	current, err := g.store.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		logFailure(g.log, "reading follow edge failed", err, zap.String("actor", actorID), zap.String("target", targetID))
		return domain.FollowResult{}, err
	}
	return g.SetFollowing(ctx, actorID, targetID, !current)
}

// SetFollowing приводит ребро actor -> target к нужному состоянию. Идемпотентен.
func (g *SocialGraph) SetFollowing(ctx context.Context, actorID, targetID string, desired bool) (domain.FollowResult, error) {
	if actorID == targetID {
		return domain.FollowResult{}, domain.InvalidOperation("you cannot follow yourself")
	}
	res, err := g.store.SetFollowing(ctx, actorID, targetID, desired)
	if err != nil {
		logFailure(g.log, "updating follow edge failed", err, zap.String("actor", actorID), zap.String("target", targetID))
		return domain.FollowResult{}, err
	}
	g.log.Debug("follow edge updated",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.Bool("following", res.Following),
		zap.Int64("followers", res.FollowerCount),
	)
	return res, nil
}

func (g *SocialGraph) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	return g.store.IsFollowing(ctx, actorID, targetID)
}

// ResolveFollowees возвращает текущее множество подписок аккаунта.
func (g *SocialGraph) ResolveFollowees(ctx context.Context, accountID string) ([]string, error) {
	return g.store.GetFollowingIDs(ctx, accountID)
}
