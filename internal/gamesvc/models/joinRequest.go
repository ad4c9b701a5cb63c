package models

import "time"

type JoinRequestStatus string

const (
	StatusRequested JoinRequestStatus = "requested"
	StatusAccepted  JoinRequestStatus = "accepted"
	StatusRejected  JoinRequestStatus = "rejected"
	// StatusNotRequested is reported when no request exists. It is never stored.
	StatusNotRequested JoinRequestStatus = "not_requested"
)

// Label is the display form of a status.
func (s JoinRequestStatus) Label() string {
	switch s {
	case StatusRequested:
		return "Requested"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusNotRequested:
		return "Not requested"
	}
	return string(s)
}

// IsResolution reports whether a host may move a request into s.
func (s JoinRequestStatus) IsResolution() bool {
	return s == StatusAccepted || s == StatusRejected
}

type JoinRequest struct {
	ID        int64             `json:"id"`
	GameID    int64             `json:"game"`
	UserID    int64             `json:"user"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// JoinRequestDetail is a join request as the game host sees it.
type JoinRequestDetail struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user"`
	UserName  string            `json:"user_name"`
	UserEmail string            `json:"user_email"`
	Status    JoinRequestStatus `json:"status"`
}

// UserJoinRequest is a join request as its author sees it, with the game
// snapshot taken at query time.
type UserJoinRequest struct {
	ID        int64             `json:"id"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Game      GameWithHost      `json:"game"`
}
