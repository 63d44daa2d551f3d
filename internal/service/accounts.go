package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/UkralStul/socialgraph/internal/clock"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var usernameRe = regexp.MustCompile(`^\w{3,20}$`)

type Registration struct {
	Username       string
	FirstName      string
	LastName       string
	Bio            string
	ProfilePicture string
}

// Accounts - регистрация, профили и списки аккаунтов.
type Accounts struct {
	store  storage.Storage
	clock  clock.Clock
	limits Limits
	log    *zap.Logger
}

func NewAccounts(store storage.Storage, cfg Config) *Accounts {
	cfg = cfg.withDefaults()
	return &Accounts{store: store, clock: cfg.Clock, limits: cfg.Limits, log: cfg.Logger}
}

func (a *Accounts) Register(ctx context.Context, reg Registration) (*domain.Account, error) {
	if !usernameRe.MatchString(reg.Username) {
		return nil, domain.InvalidInput("username must be 3 to 20 letters, digits or underscores")
	}
	account, err := a.store.CreateAccount(ctx, &domain.Account{
		Username:       reg.Username,
		FirstName:      strings.TrimSpace(reg.FirstName),
		LastName:       strings.TrimSpace(reg.LastName),
		Bio:            strings.TrimSpace(reg.Bio),
		ProfilePicture: strings.TrimSpace(reg.ProfilePicture),
		CreatedAt:      a.clock.NowUtc(),
	})
	if err != nil {
		logFailure(a.log, "creating account failed", err, zap.String("username", reg.Username))
		return nil, err
	}
	a.log.Info("account registered", zap.String("id", account.ID), zap.String("username", account.Username))
	return account, nil
}

// Profile собирает аккаунт и счетчики. Счетчики считаются по живым данным на момент чтения.
func (a *Accounts) Profile(ctx context.Context, accountID string) (*domain.Profile, error) {
	account, err := a.store.GetAccountByID(ctx, accountID)
	if err != nil {
		logFailure(a.log, "loading account failed", err, zap.String("account", accountID))
		return nil, err
	}

	profile := &domain.Profile{Account: *account}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.store.CountPostsByAuthor(gctx, accountID)
		profile.PostCount = n
		return err
	})
	g.Go(func() error {
		n, err := a.store.CountFollowers(gctx, accountID)
		profile.FollowerCount = n
		return err
	})
	g.Go(func() error {
		n, err := a.store.CountFollowing(gctx, accountID)
		profile.FollowingCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		logFailure(a.log, "counting profile stats failed", err, zap.String("account", accountID))
		return nil, err
	}
	return profile, nil
}

// List - аккаунты по имени пользователя; search ищет подстроку в username и имени.
func (a *Accounts) List(ctx context.Context, search string, req domain.PageRequest) (*domain.AccountPage, error) {
	req = a.accountPage(req)
	items, total, err := a.store.ListAccounts(ctx, search, req.Limit, req.Offset())
	if err != nil {
		logFailure(a.log, "listing accounts failed", err)
		return nil, err
	}
	return &domain.AccountPage{Items: items, Pagination: domain.NewPagination(req, len(items), total)}, nil
}

func (a *Accounts) Followers(ctx context.Context, accountID string, req domain.PageRequest) (*domain.AccountPage, error) {
	req = a.accountPage(req)
	items, total, err := a.store.ListFollowers(ctx, accountID, req.Limit, req.Offset())
	if err != nil {
		logFailure(a.log, "listing followers failed", err, zap.String("account", accountID))
		return nil, err
	}
	return &domain.AccountPage{Items: items, Pagination: domain.NewPagination(req, len(items), total)}, nil
}

func (a *Accounts) Following(ctx context.Context, accountID string, req domain.PageRequest) (*domain.AccountPage, error) {
	req = a.accountPage(req)
	items, total, err := a.store.ListFollowing(ctx, accountID, req.Limit, req.Offset())
	if err != nil {
		logFailure(a.log, "listing following failed", err, zap.String("account", accountID))
		return nil, err
	}
	return &domain.AccountPage{Items: items, Pagination: domain.NewPagination(req, len(items), total)}, nil
}

// Suggestions - новые аккаунты, на которые actor еще не подписан.
func (a *Accounts) Suggestions(ctx context.Context, actorID string, limit int) ([]*domain.Account, error) {
	items, err := a.store.ListSuggestions(ctx, actorID, a.limits.suggestionLimit(limit))
	if err != nil {
		logFailure(a.log, "listing suggestions failed", err, zap.String("account", actorID))
		return nil, err
	}
	return items, nil
}

// accountPage - списки аккаунтов поддерживают только offset-пагинацию.
func (a *Accounts) accountPage(req domain.PageRequest) domain.PageRequest {
	req.Cursor = nil
	return a.limits.normalize(req, a.limits.AccountLimit)
}
