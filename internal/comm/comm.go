package comm

import (
	"encoding/json"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/google/uuid"
)

// subjects published by the game service
const (
	SubjectGameCreated        = "gamemate.games.created"
	SubjectGameUpdated        = "gamemate.games.updated"
	SubjectGameDeleted        = "gamemate.games.deleted"
	SubjectJoinRequestCreated = "gamemate.join_requests.created"
	SubjectJoinRequestUpdated = "gamemate.join_requests.updated"

	// SubjectAll matches every subject above.
	SubjectAll = "gamemate.>"
)

// Event is the envelope of every message on the gamemate.* subjects.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // the subject it was published on
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEvent(subject string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       subject,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

type GameDeleted struct {
	GameID int64 `json:"game_id"`
	HostID int64 `json:"host_id"`
}

type JoinRequestChange struct {
	JoinRequest models.JoinRequest `json:"join_request"`
	Game        *models.Game       `json:"game,omitempty"`
}
