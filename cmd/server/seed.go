package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/UkralStul/socialgraph/internal/config"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type seedOptions struct {
	Accounts        int
	PostsPerAccount int
	Seed            uint64
}

func newSeedCommand(rootOpts *rootOptions) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill storage with demo data",
		Long: `Register demo accounts, connect them into a follow graph and
publish posts with hashtags, mentions, likes and comments.

Example:
  socialgraph seed --storage sqlite --dsn ./socialgraph.db --accounts 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == config.DriverInMemory {
				return errors.New("in-memory storage does not outlive the seed command, use serve --seed")
			}
			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store, err := openStore(ctx, cfg.Storage, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := service.New(store, serviceConfig(cfg, nil, log.Named("service")))
			return fillWithMockData(ctx, svc, opts, log)
		},
	}

	cmd.Flags().IntVar(&opts.Accounts, "accounts", 10, "number of accounts to create")
	cmd.Flags().IntVar(&opts.PostsPerAccount, "posts", 3, "posts per account")
	cmd.Flags().Uint64Var(&opts.Seed, "random-seed", 0, "random seed, 0 picks a random one")

	return cmd
}

// fillWithMockData создает аккаунты, подписки, посты, лайки и комментарии через сервисы,
// так что демо-данные проходят ту же валидацию, что и запросы клиентов.
func fillWithMockData(ctx context.Context, svc *service.Services, opts seedOptions, log *zap.Logger) error {
	if opts.Accounts < 1 {
		return errors.New("seed: at least one account is required")
	}
	faker := gofakeit.New(opts.Seed)

	// 1. Регистрируем аккаунты
	accounts := make([]*domain.Account, 0, opts.Accounts)
	for i := 0; i < opts.Accounts; i++ {
		first, last := faker.FirstName(), faker.LastName()
		acc, err := svc.Accounts.Register(ctx, service.Registration{
			Username:  fmt.Sprintf("%s_%s%d", strings.ToLower(faker.LetterN(5)), strings.ToLower(faker.LetterN(3)), i),
			FirstName: first,
			LastName:  last,
			Bio:       faker.Sentence(6),
		})
		if err != nil {
			return errors.Wrapf(err, "seed: register account %d", i)
		}
		accounts = append(accounts, acc)
	}

	// 2. Каждый подписывается на следующих двоих по кругу
	for i, acc := range accounts {
		for step := 1; step <= 2 && step < len(accounts); step++ {
			target := accounts[(i+step)%len(accounts)]
			if _, err := svc.Graph.SetFollowing(ctx, acc.ID, target.ID, true); err != nil {
				return errors.Wrapf(err, "seed: follow %s -> %s", acc.Username, target.Username)
			}
		}
	}

	// 3. Посты с хэштегами и упоминаниями, затем лайки и комментарии от соседа
	var posts int
	for i, acc := range accounts {
		neighbour := accounts[(i+1)%len(accounts)]
		for j := 0; j < opts.PostsPerAccount; j++ {
			content := fmt.Sprintf("%s #%s @%s", faker.Sentence(8), strings.ToLower(faker.LetterN(6)), neighbour.Username)
			post, err := svc.Posts.Create(ctx, acc.ID, service.NewPost{Content: content})
			if err != nil {
				return errors.Wrapf(err, "seed: create post for %s", acc.Username)
			}
			posts++

			if neighbour.ID == acc.ID {
				continue
			}
			if _, err := svc.Engagement.SetLiked(ctx, post.ID, neighbour.ID, true); err != nil {
				return errors.Wrap(err, "seed: like post")
			}
			if _, err := svc.Engagement.AddComment(ctx, post.ID, neighbour.ID, faker.Sentence(5)); err != nil {
				return errors.Wrap(err, "seed: comment post")
			}
		}
	}

	log.Info("mock data created", zap.Int("accounts", len(accounts)), zap.Int("posts", posts))
	return nil
}
