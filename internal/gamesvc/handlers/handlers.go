package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/service"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration

	users        *service.UserService
	games        *service.GameService
	joinRequests *service.JoinRequestService
}

func NewHandler(users *service.UserService, games *service.GameService, joinRequests *service.JoinRequestService) *Handler {
	return &Handler{
		users:        users,
		games:        games,
		joinRequests: joinRequests,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	writeJSON(w, rsp.Code, rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "game service is running",
		Code:    http.StatusOK,
		Data:    nil,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("unable to encode response: %s", err)
	}
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]interface{}{"detail": detail})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.NotFound:
		return http.StatusNotFound
	case service.Forbidden:
		return http.StatusForbidden
	case service.Conflict, service.Invalid:
		return http.StatusBadRequest
	case service.Unauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError renders service errors with their detail; anything else is
// logged and hidden behind a 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *service.Error
	if errors.As(err, &e) {
		body := map[string]interface{}{"detail": e.Detail}
		if e.Status != "" {
			body["status"] = e.Status
		}
		if len(e.Fields) > 0 {
			body["errors"] = e.Fields
		}
		writeJSON(w, statusFor(e.Kind), body)
		return
	}

	log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	}).WithError(err).Error("request failed")
	writeDetail(w, http.StatusInternalServerError, "Internal server error.")
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// writeDecodeError answers a body that could not be parsed.
func writeDecodeError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"detail": "Malformed JSON payload."}

	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		body["errors"] = map[string]string{typeErr.Field: fmt.Sprintf("Expected a value of type %s.", typeErr.Type)}
	case errors.As(err, &timeErr):
		body["errors"] = map[string]string{"date_time": "Datetime has wrong format. Use RFC 3339."}
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// idParam reads a numeric path parameter. Anything else answers 404, the
// same way an unknown path would.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
