package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type setFollowingRequest struct {
	Following bool `json:"following"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.svc.Accounts.Register(r.Context(), service.Registration{
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.Accounts.List(r.Context(), r.URL.Query().Get("search"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountListResponse{Items: page.Items, Pagination: page.Pagination})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Accounts.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// toggleFollow - POST: подписка, если ее нет, иначе отписка.
func (s *Server) toggleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Graph.Follow(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// setFollowing - PUT: явное состояние, безопасно повторять.
func (s *Server) setFollowing(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req setFollowingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Graph.SetFollowing(r.Context(), actorID, chi.URLParam(r, "id"), req.Following)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request) {
	s.edgeList(w, r, s.svc.Accounts.Followers)
}

func (s *Server) following(w http.ResponseWriter, r *http.Request) {
	s.edgeList(w, r, s.svc.Accounts.Following)
}

func (s *Server) edgeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, id string, req domain.PageRequest) (*domain.AccountPage, error)) {
	req, err := pageRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := list(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountListResponse{Items: page.Items, Pagination: page.Pagination})
}

// suggestions доступны только для своего аккаунта.
func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != actorID {
		s.writeError(w, r, domain.Forbidden("suggestions are only available to the account owner"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.svc.Accounts.Suggestions(r.Context(), actorID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
