package httpapi

import (
	"net/http"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/go-chi/chi/v5"
)

type createPostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type setLikedRequest struct {
	Liked bool `json:"liked"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	post, err := s.svc.Posts.Create(r.Context(), actorID, service.NewPost{Content: req.Content, Image: req.Image})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePost(w, r, http.StatusCreated, post)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.svc.Posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePost(w, r, http.StatusOK, post)
}

func (s *Server) writePost(w http.ResponseWriter, r *http.Request, status int, post *domain.Post) {
	views, err := s.postViews(r.Context(), []*domain.Post{post})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, views[0])
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.svc.Engagement.DeletePost(r.Context(), chi.URLParam(r, "id"), actorID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Feeds ===

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	s.postPage(w, r, func(req domain.PageRequest) (*domain.PostPage, error) {
		return s.svc.Feeds.Feed(r.Context(), actorID, chi.URLParam(r, "id"), req)
	})
}

func (s *Server) globalFeed(w http.ResponseWriter, r *http.Request) {
	s.postPage(w, r, func(req domain.PageRequest) (*domain.PostPage, error) {
		return s.svc.Feeds.Global(r.Context(), req)
	})
}

func (s *Server) userPosts(w http.ResponseWriter, r *http.Request) {
	s.postPage(w, r, func(req domain.PageRequest) (*domain.PostPage, error) {
		return s.svc.Feeds.UserPosts(r.Context(), chi.URLParam(r, "userId"), req)
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.postPage(w, r, func(req domain.PageRequest) (*domain.PostPage, error) {
		return s.svc.Feeds.Search(r.Context(), chi.URLParam(r, "query"), req)
	})
}

func (s *Server) postPage(w http.ResponseWriter, r *http.Request, load func(domain.PageRequest) (*domain.PostPage, error)) {
	req, err := pageRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := load(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.postList(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// === Engagement ===

// toggleLike - POST: ставит лайк или снимает уже поставленный.
func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Engagement.ToggleLike(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) setLiked(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req setLikedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Engagement.SetLiked(r.Context(), chi.URLParam(r, "id"), actorID, req.Liked)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	comment, err := s.svc.Engagement.AddComment(r.Context(), chi.URLParam(r, "id"), actorID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	authors, err := s.authors(r.Context(), []string{comment.AuthorID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentViewOf(authors, comment))
}
