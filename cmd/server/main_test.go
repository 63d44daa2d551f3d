package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/UkralStul/socialgraph/internal/config"
	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/UkralStul/socialgraph/internal/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "storage", "dsn", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("addr"))
	assert.Equal(t, "true", serve.Flags().Lookup("seed").DefValue)

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "10", seed.Flags().Lookup("accounts").DefValue)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("STORAGE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))

	cfg, err := loadConfig(&rootOptions{ConfigPath: path, Storage: config.DriverSQLite, DSN: "demo.db", LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "demo.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = loadConfig(&rootOptions{Storage: "mongodb"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestMigrate_RejectsInMemory(t *testing.T) {
	err := runMigrate(context.Background(), &rootOptions{Storage: config.DriverInMemory})
	assert.Error(t, err)
}

func TestFillWithMockData(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	svc := service.New(store, service.Config{})

	require.NoError(t, fillWithMockData(ctx, svc, seedOptions{Accounts: 4, PostsPerAccount: 2, Seed: 42}, zap.NewNop()))

	page, err := svc.Feeds.Global(ctx, domain.PageRequest{Limit: 100})
	require.NoError(t, err)
	require.Len(t, page.Items, 8)
	for _, post := range page.Items {
		assert.Len(t, post.Hashtags, 1)
		assert.Len(t, post.Mentions, 1)
		assert.Len(t, post.Likes, 1)
		assert.Len(t, post.Comments, 1)
	}

	accounts, err := svc.Accounts.List(ctx, "", domain.PageRequest{Limit: 100})
	require.NoError(t, err)
	require.Len(t, accounts.Items, 4)

	profile, err := svc.Accounts.Profile(ctx, accounts.Items[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, profile.FollowingCount)
	assert.EqualValues(t, 2, profile.FollowerCount)
	assert.EqualValues(t, 2, profile.PostCount)

	assert.Error(t, fillWithMockData(ctx, svc, seedOptions{}, zap.NewNop()))
}
