package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmitPlayer(t *testing.T) {
	tests := []struct {
		name                  string
		current, needed       int
		wantCurrent, wantNeed int
	}{
		{"counts move", 3, 1, 4, 0},
		{"needed floors at zero", 4, 0, 5, 0},
		{"fresh game", 1, 5, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Game{CurrentPlayersCount: tt.current, NeededPlayersCount: tt.needed}
			g.AdmitPlayer()
			assert.Equal(t, tt.wantCurrent, g.CurrentPlayersCount)
			assert.Equal(t, tt.wantNeed, g.NeededPlayersCount)
		})
	}
}

func TestGameWithHost(t *testing.T) {
	desc := "bring water"
	g := &Game{ID: 7, Title: "Sunday kickabout", HostID: 3, Visibility: VisibilityPublic, Description: &desc}
	host := UserProjection{ID: 3, Username: "alice"}

	got := g.WithHost(host)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Sunday kickabout", got.Title)
	assert.Equal(t, host, got.Host)
	assert.Equal(t, &desc, got.Description)
	assert.True(t, g.IsPublic())
	assert.True(t, g.HostedBy(3))
	assert.False(t, g.HostedBy(4))
}

func TestJoinRequestStatus(t *testing.T) {
	assert.Equal(t, "Requested", StatusRequested.Label())
	assert.Equal(t, "Accepted", StatusAccepted.Label())
	assert.Equal(t, "Rejected", StatusRejected.Label())
	assert.Equal(t, "Not requested", StatusNotRequested.Label())

	assert.True(t, StatusAccepted.IsResolution())
	assert.True(t, StatusRejected.IsResolution())
	assert.False(t, StatusRequested.IsResolution())
	assert.False(t, JoinRequestStatus("pending").IsResolution())
}
