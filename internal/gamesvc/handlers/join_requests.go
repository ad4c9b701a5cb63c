package handlers

import (
	"errors"
	"net/http"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
)

type joinStatusResponse struct {
	Status models.JoinRequestStatus `json:"status"`
	Label  string                   `json:"label"`
}

type joinCreatedResponse struct {
	Detail string                   `json:"detail"`
	Status models.JoinRequestStatus `json:"status"`
	ID     int64                    `json:"id"`
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (h *Handler) CheckJoinStatus(w http.ResponseWriter, r *http.Request) {
	gameID, ok := idParam(w, r, "game_id")
	if !ok {
		return
	}

	status, err := h.joinRequests.CheckStatus(r.Context(), identity(r), gameID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinStatusResponse{Status: status, Label: status.Label()})
}

func (h *Handler) CreateJoinRequest(w http.ResponseWriter, r *http.Request) {
	gameID, ok := idParam(w, r, "game_id")
	if !ok {
		return
	}

	jr, err := h.joinRequests.CreateRequest(r.Context(), identity(r), gameID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinCreatedResponse{
		Detail: "Join request created.",
		Status: jr.Status,
		ID:     jr.ID,
	})
}

func (h *Handler) ListGameJoinRequests(w http.ResponseWriter, r *http.Request) {
	gameID, ok := idParam(w, r, "game_id")
	if !ok {
		return
	}

	requests, err := h.joinRequests.ListForGame(r.Context(), identity(r), gameID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// UpdateJoinRequestStatus accepts or rejects a pending request. An empty body
// is treated as a missing status.
func (h *Handler) UpdateJoinRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "join_request_id")
	if !ok {
		return
	}

	var body statusUpdate
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		writeDecodeError(w, err)
		return
	}

	jr, err := h.joinRequests.UpdateStatus(r.Context(), identity(r), id, body.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "Join request "+string(jr.Status)+".")
}

func (h *Handler) ListUserJoinRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.joinRequests.ListForUser(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
