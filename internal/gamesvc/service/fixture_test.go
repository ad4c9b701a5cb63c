package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recorder collects published subjects.
type recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recorder) Emit(subject string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
}

func (r *recorder) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.subjects...)
}

type fixture struct {
	ctx    context.Context
	mem    *store.Memory
	events *recorder
	users  *UserService
	games  *GameService
	joins  *JoinRequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	events := &recorder{}
	return &fixture{
		ctx:    context.Background(),
		mem:    mem,
		events: events,
		users:  NewUserService(mem).WithHashCost(bcrypt.MinCost),
		games:  NewGameService(mem, mem, mem, events),
		joins:  NewJoinRequestService(mem, mem, events),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.users.Register(f.ctx, RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func intPtr(v int) *int { return &v }

func gameInput(visibility models.Visibility, current, needed int) GameInput {
	when := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	return GameInput{
		Sport:               models.SportFootball,
		Title:               "Evening five-a-side",
		Location:            "Riverside pitch",
		DateTime:            &when,
		CurrentPlayersCount: intPtr(current),
		NeededPlayersCount:  intPtr(needed),
		SkillLevel:          models.SkillIntermediate,
		Visibility:          visibility,
	}
}

func (f *fixture) game(t *testing.T, host *models.User, visibility models.Visibility, current, needed int) *models.Game {
	t.Helper()
	g, err := f.games.Create(f.ctx, host, gameInput(visibility, current, needed))
	require.NoError(t, err)
	return g
}

func (f *fixture) request(t *testing.T, user *models.User, game *models.Game) *models.JoinRequest {
	t.Helper()
	jr, err := f.joins.CreateRequest(f.ctx, user, game.ID)
	require.NoError(t, err)
	return jr
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
	e, _ := err.(*Error)
	return e
}
