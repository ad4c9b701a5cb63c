package comm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent(SubjectGameDeleted, GameDeleted{GameID: 4, HostID: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, SubjectGameDeleted, evt.Type)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.JSONEq(t, `{"game_id":4,"host_id":2}`, string(evt.Data))

	other, err := NewEvent(SubjectGameDeleted, GameDeleted{GameID: 4, HostID: 2})
	require.NoError(t, err)
	assert.NotEqual(t, evt.ID, other.ID)
}

func TestNewEventRejectsUnencodable(t *testing.T) {
	_, err := NewEvent(SubjectGameCreated, make(chan int))
	var typeErr *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}
