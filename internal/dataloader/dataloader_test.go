package dataloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/UkralStul/socialgraph/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore считает обращения к батч-методу.
type countingStore struct {
	storage.IdentityStore
	calls atomic.Int32
}

func (c *countingStore) GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*domain.Account, error) {
	c.calls.Add(1)
	return c.IdentityStore.GetAccountsByIDs(ctx, ids)
}

func TestLoaders_BatchesAccounts(t *testing.T) {
	mem := inmemory.New()
	ctx := context.Background()
	alice, err := mem.CreateAccount(ctx, &domain.Account{Username: "alice"})
	require.NoError(t, err)
	bob, err := mem.CreateAccount(ctx, &domain.Account{Username: "bob"})
	require.NoError(t, err)

	store := &countingStore{IdentityStore: mem}
	loaders := NewLoaders(store)

	accounts, err := loaders.Accounts(ctx, []string{alice.ID, bob.ID, alice.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[alice.ID].Username)
	assert.Equal(t, "bob", accounts[bob.ID].Username)
	assert.EqualValues(t, 1, store.calls.Load())

	// Повторная загрузка берется из кэша запроса
	_, err = loaders.Accounts(ctx, []string{bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, store.calls.Load())
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	var got *Loaders
	handler := Middleware(inmemory.New(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotNil(t, got)
	assert.Nil(t, For(context.Background()))
}
