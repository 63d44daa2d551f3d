// internal/storage/inmemory/store_test.go

package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// newTestStore создает хранилище и двух пользователей для тестов
func newTestStore(t *testing.T) (*Store, *domain.Account, *domain.Account) {
	store := New()
	ctx := context.Background()
	alice, err := store.CreateAccount(ctx, &domain.Account{Username: "alice", CreatedAt: base})
	require.NoError(t, err)
	bob, err := store.CreateAccount(ctx, &domain.Account{Username: "bob", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	return store, alice, bob
}

func createPost(t *testing.T, s *Store, authorID, content string, at time.Time, tags ...string) *domain.Post {
	p, err := s.CreatePost(context.Background(), &domain.Post{AuthorID: authorID, Content: content, Hashtags: tags, CreatedAt: at})
	require.NoError(t, err)
	return p
}

func TestStore_CreateAccount_UsernameTaken(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.CreateAccount(context.Background(), &domain.Account{Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	// Имена чувствительны к регистру
	_, err = store.CreateAccount(context.Background(), &domain.Account{Username: "Alice"})
	assert.NoError(t, err)
}

func TestStore_SetFollowing_BothSides(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()

	res, err := store.SetFollowing(ctx, alice.ID, bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowResult{Following: true, FollowerCount: 1}, res)

	following, err := store.GetFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, following)

	followers, total, err := store.ListFollowers(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, alice.ID, followers[0].ID)

	// Повторная установка того же состояния ничего не меняет
	res, err = store.SetFollowing(ctx, alice.ID, bob.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.FollowerCount)

	res, err = store.SetFollowing(ctx, alice.ID, bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowResult{Following: false, FollowerCount: 0}, res)

	count, err := store.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_SetFollowing_Errors(t *testing.T) {
	store, alice, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.SetFollowing(ctx, alice.ID, alice.ID, true)
	assert.Equal(t, domain.KindInvalidOperation, domain.KindOf(err))

	_, err = store.SetFollowing(ctx, alice.ID, "non-existent-id", true)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestStore_ListPosts_FanOutOrder(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()
	carol, err := store.CreateAccount(ctx, &domain.Account{Username: "carol"})
	require.NoError(t, err)

	a1 := createPost(t, store, alice.ID, "a1", base.Add(1*time.Second))
	b1 := createPost(t, store, bob.ID, "b1", base.Add(2*time.Second))
	createPost(t, store, carol.ID, "c1", base.Add(3*time.Second))
	a2 := createPost(t, store, alice.ID, "a2", base.Add(4*time.Second))
	// Одинаковое время: порядок определяет id
	b2 := createPost(t, store, bob.ID, "b2", base.Add(4*time.Second))

	posts, total, err := store.ListPosts(ctx, storage.PostFilter{AuthorIDs: []string{alice.ID, bob.ID}}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, posts, 4)
	assert.Equal(t, []string{b2.ID, a2.ID, b1.ID, a1.ID}, ids(posts))

	all, total, err := store.ListPosts(ctx, storage.PostFilter{}, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []string{a2.ID, "c1"}, []string{all[0].ID, all[1].Content})

	none, total, err := store.ListPosts(ctx, storage.PostFilter{AuthorIDs: []string{}}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestStore_ListPosts_SearchAndCursor(t *testing.T) {
	store, alice, _ := newTestStore(t)
	ctx := context.Background()

	p1 := createPost(t, store, alice.ID, "Learning Go today", base.Add(time.Second))
	p2 := createPost(t, store, alice.ID, "tagged only", base.Add(2*time.Second), "golang")
	createPost(t, store, alice.ID, "unrelated", base.Add(3*time.Second))

	found, total, err := store.ListPosts(ctx, storage.PostFilter{Query: "GO"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p1.ID, found[0].ID)

	found, _, err = store.ListPosts(ctx, storage.PostFilter{Query: "GoLang"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p2.ID, found[0].ID)

	cursor := domain.CursorOf(p2)
	after, total, err := store.ListPosts(ctx, storage.PostFilter{After: &cursor}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p1.ID, after[0].ID)
}

func TestStore_DeletePost(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()

	p := createPost(t, store, alice.ID, "bye", base)
	_, err := store.CreateComment(ctx, &domain.Comment{PostID: p.ID, AuthorID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, store.DeletePost(ctx, p.ID))

	_, err = store.GetPostByID(ctx, p.ID)
	assert.True(t, domain.IsNotFound(err))
	posts, total, err := store.ListPosts(ctx, storage.PostFilter{AuthorIDs: []string{alice.ID}}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	_, err = store.CreateComment(ctx, &domain.Comment{PostID: p.ID, AuthorID: bob.ID, Content: "late"})
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(store.DeletePost(ctx, p.ID)))
}

func TestStore_SetLiked(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()
	p := createPost(t, store, alice.ID, "like me", base)

	res, err := store.SetLiked(ctx, p.ID, bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeResult{Liked: true, LikeCount: 1}, res)

	res, err = store.SetLiked(ctx, p.ID, bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LikeCount)

	res, err = store.SetLiked(ctx, p.ID, bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeResult{Liked: false, LikeCount: 0}, res)

	_, err = store.SetLiked(ctx, "missing", bob.ID, true)
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_EngagementRequiresAccount(t *testing.T) {
	store, alice, _ := newTestStore(t)
	ctx := context.Background()
	p := createPost(t, store, alice.ID, "ghosts welcome?", base)

	_, err := store.SetLiked(ctx, p.ID, "ghost", true)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = store.CreateComment(ctx, &domain.Comment{PostID: p.ID, AuthorID: "ghost", Content: "boo"})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	got, err := store.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
}

func TestStore_IsLiked(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()
	p := createPost(t, store, alice.ID, "like me", base)

	liked, err := store.IsLiked(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = store.SetLiked(ctx, p.ID, bob.ID, true)
	require.NoError(t, err)
	liked, err = store.IsLiked(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = store.IsLiked(ctx, "missing", bob.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, alice, _ := newTestStore(t)
	p := createPost(t, store, alice.ID, "immutable", base, "tag")

	p.Hashtags[0] = "changed"
	got, err := store.GetPostByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tag"}, got.Hashtags)
}

func TestStore_Suggestions(t *testing.T) {
	store, alice, bob := newTestStore(t)
	ctx := context.Background()
	carol, err := store.CreateAccount(ctx, &domain.Account{Username: "carol", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.SetFollowing(ctx, alice.ID, bob.ID, true)
	require.NoError(t, err)

	suggestions, err := store.ListSuggestions(ctx, alice.ID, 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, carol.ID, suggestions[0].ID)
}

func TestStore_ConcurrentFollowKeepsSymmetry(t *testing.T) {
	store := New()
	ctx := context.Background()

	accounts := make([]*domain.Account, 8)
	for i := range accounts {
		acc, err := store.CreateAccount(ctx, &domain.Account{Username: fmt.Sprintf("user%d", i)})
		require.NoError(t, err)
		accounts[i] = acc
	}

	var wg sync.WaitGroup
	for i := range accounts {
		for j := range accounts {
			if i == j {
				continue
			}
			wg.Add(1)
			go func(a, b *domain.Account, desired bool) {
				defer wg.Done()
				_, err := store.SetFollowing(ctx, a.ID, b.ID, desired)
				assert.NoError(t, err)
			}(accounts[i], accounts[j], (i+j)%2 == 0)
		}
	}
	wg.Wait()

	for _, a := range accounts {
		following, err := store.GetFollowingIDs(ctx, a.ID)
		require.NoError(t, err)
		for _, id := range following {
			followers, _, err := store.ListFollowers(ctx, id, 100, 0)
			require.NoError(t, err)
			assert.Contains(t, accountIDs(followers), a.ID)
		}
		count, err := store.CountFollowing(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, len(following), count)
	}
}

func ids(posts []*domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func accountIDs(accounts []*domain.Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.ID
	}
	return out
}
