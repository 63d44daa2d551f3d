package domain

import "time"

// Account представляет учетную запись пользователя.
// Множества подписок и подписчиков хранятся в IdentityStore, а не в структуре.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AccountSummary - урезанное представление автора для выдачи в ленте.
type AccountSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:             a.ID,
		Username:       a.Username,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		ProfilePicture: a.ProfilePicture,
	}
}

// Profile - учетная запись со счетчиками, посчитанными по живым коллекциям.
type Profile struct {
	Account        Account `json:"account"`
	PostCount      int64   `json:"postCount"`
	FollowerCount  int64   `json:"followerCount"`
	FollowingCount int64   `json:"followingCount"`
}

// Post представляет пост в системе.
type Post struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"authorId"`
	Content   string     `json:"content"`
	Image     string     `json:"image"`
	Hashtags  []string   `json:"hashtags"`
	Mentions  []string   `json:"mentions"`
	Likes     []string   `json:"likes"`
	Comments  []*Comment `json:"comments"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (p *Post) LikeCount() int { return len(p.Likes) }

func (p *Post) LikedBy(accountID string) bool {
	for _, id := range p.Likes {
		if id == accountID {
			return true
		}
	}
	return false
}

// Clone возвращает глубокую копию поста, чтобы хранилище не отдавало наружу свое состояние.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Hashtags = append([]string{}, p.Hashtags...)
	cp.Mentions = append([]string{}, p.Mentions...)
	cp.Likes = append([]string{}, p.Likes...)
	cp.Comments = make([]*Comment, len(p.Comments))
	for i, c := range p.Comments {
		cc := *c
		cp.Comments[i] = &cc
	}
	return &cp
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FollowResult - новое состояние ребра и число подписчиков цели после операции.
type FollowResult struct {
	Following     bool  `json:"isFollowing"`
	FollowerCount int64 `json:"followerCount"`
}

// LikeResult - новое состояние лайка и число лайков поста после операции.
type LikeResult struct {
	Liked     bool `json:"isLiked"`
	LikeCount int  `json:"likesCount"`
}
