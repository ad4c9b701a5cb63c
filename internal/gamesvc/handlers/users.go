package handlers

import (
	"net/http"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/service"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registered struct {
	models.UserProjection
	Access string `json:"access"`
}

type loginResponse struct {
	Access string                `json:"access"`
	User   models.UserProjection `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered{UserProjection: user.Projection(), Access: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Access: token, User: user.Projection()})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Projection())
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.users.Me(identity(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

func (h *Handler) GameStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "user_id")
	if !ok {
		return
	}

	stats, err := h.games.Stats(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
