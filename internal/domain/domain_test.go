package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("post %s not found", "p1")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("nope")))
	assert.Equal(t, KindInvalidInput, KindOf(InvalidInput("bad")))
	assert.Equal(t, KindInvalidOperation, KindOf(InvalidOperation("self")))
	assert.Equal(t, KindInternal, KindOf(errors.New("connection refused")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	wrapped := errors.Wrap(NotFound("account missing"), "loading feed")
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "account missing", MessageOf(wrapped))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 1, Limit: 10}, 10, 25)
	assert.Equal(t, Pagination{Current: 1, Total: 3, HasNext: true, HasPrev: false}, p)

	p = NewPagination(PageRequest{Page: 3, Limit: 10}, 5, 25)
	assert.Equal(t, Pagination{Current: 3, Total: 3, HasNext: false, HasPrev: true}, p)

	p = NewPagination(PageRequest{Page: 1, Limit: 10}, 0, 0)
	assert.Equal(t, Pagination{Current: 1, Total: 0, HasNext: false, HasPrev: false}, p)
}

func TestCursorRoundTripAndOrder(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)
	c := Cursor{CreatedAt: ts, ID: "0190-b"}

	decoded, err := DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(ts))
	assert.Equal(t, "0190-b", decoded.ID)

	assert.True(t, c.Before(&Post{ID: "0190-a", CreatedAt: ts}))
	assert.False(t, c.Before(&Post{ID: "0190-c", CreatedAt: ts}))
	assert.True(t, c.Before(&Post{ID: "zzz", CreatedAt: ts.Add(-time.Second)}))

	_, err = DecodeCursor("!!!")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestPostClone(t *testing.T) {
	p := &Post{ID: "p", Likes: []string{"a"}, Comments: []*Comment{{ID: "c", Content: "x"}}}
	cp := p.Clone()
	cp.Likes[0] = "b"
	cp.Comments[0].Content = "y"
	assert.Equal(t, "a", p.Likes[0])
	assert.Equal(t, "x", p.Comments[0].Content)
	assert.True(t, p.LikedBy("a"))
	assert.Equal(t, 1, p.LikeCount())
}
