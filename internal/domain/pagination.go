package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// PageRequest - параметры страницы. Если задан Cursor, номер страницы игнорируется.
type PageRequest struct {
	Page   int
	Limit  int
	Cursor *Cursor
}

// Offset - сколько элементов пропустить при offset-пагинации.
func (p PageRequest) Offset() int {
	if p.Cursor != nil || p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination - метаданные страницы в формате HTTP-ответа.
type Pagination struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// NewPagination считает метаданные по числу совпавших элементов.
// total = ceil(totalMatching / limit), hasNext = skip + returned < totalMatching.
func NewPagination(req PageRequest, returned int, totalMatching int64) Pagination {
	total := 0
	if req.Limit > 0 {
		total = int((totalMatching + int64(req.Limit) - 1) / int64(req.Limit))
	}
	current := req.Page
	if current < 1 {
		current = 1
	}
	return Pagination{
		Current: current,
		Total:   total,
		HasNext: int64(req.Offset()+returned) < totalMatching,
		HasPrev: req.Cursor == nil && current > 1,
	}
}

// PostPage - страница постов.
type PostPage struct {
	Items      []*Post
	Pagination Pagination
	// NextCursor пуст, если страниц больше нет.
	NextCursor string
}

// AccountPage - страница учетных записей.
type AccountPage struct {
	Items      []*Account
	Pagination Pagination
}

// Cursor указывает на последний просмотренный пост: (createdAt, id).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func CursorOf(p *Post) Cursor {
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// Before сообщает, идет ли пост строго после курсора в порядке (createdAt DESC, id DESC).
func (c Cursor) Before(p *Post) bool {
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID < c.ID
	}
	return p.CreatedAt.Before(c.CreatedAt)
}

func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(s string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, InvalidInput("malformed cursor")
	}
	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, InvalidInput("malformed cursor")
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, InvalidInput("malformed cursor")
	}
	return &Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// Newer сравнивает посты в порядке выдачи: сначала новые, при равном времени - больший id.
func Newer(a, b *Post) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
