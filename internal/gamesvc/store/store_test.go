package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/db"
	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tables is what the service layer needs from a store.
type tables interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	CreateGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
	ListPublicGames(ctx context.Context, excludeHostID int64) ([]*models.Game, error)
	ListGamesByHost(ctx context.Context, hostID int64) ([]*models.Game, error)
	UpdateGame(ctx context.Context, gameID int64, apply func(*models.Game)) (*models.Game, error)
	DeleteGame(ctx context.Context, gameID int64) error
	CountGamesByHost(ctx context.Context, hostID int64) (int64, error)

	GetJoinRequest(ctx context.Context, gameID, userID int64) (*models.JoinRequest, error)
	CreateJoinRequest(ctx context.Context, jr *models.JoinRequest) error
	ListJoinRequestsByGame(ctx context.Context, gameID int64) ([]*models.JoinRequestDetail, error)
	ListJoinRequestsByUser(ctx context.Context, userID int64) ([]*models.UserJoinRequest, error)
	GetJoinRequestForHost(ctx context.Context, id, hostID int64) (*models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, id, hostID int64, status models.JoinRequestStatus) (*models.JoinRequest, *models.Game, error)
	CountJoinRequestsByStatus(ctx context.Context, userID int64, status models.JoinRequestStatus) (int64, error)
}

// postgresTables combines the three PostgreSQL stores.
type postgresTables struct {
	*UserStore
	*GameStore
	*JoinRequestStore
}

func TestMemory(t *testing.T) {
	runTableTests(t, func(t *testing.T) tables { return NewMemory() })
}

// TestPostgres runs the same checks against a live database. It needs
// TEST_POSTGRES_URL and wipes the tables it uses.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	pool, err := db.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(db.ClosePool)
	require.NoError(t, db.Migrate(context.Background(), pool))

	runTableTests(t, func(t *testing.T) tables {
		_, err := pool.Exec(context.Background(), `TRUNCATE join_requests, games, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return postgresTables{NewUserStore(pool), NewGameStore(pool), NewJoinRequestStore(pool)}
	})
}

func runTableTests(t *testing.T, fresh func(t *testing.T) tables) {
	t.Run("users", func(t *testing.T) { testUsers(t, fresh(t)) })
	t.Run("games", func(t *testing.T) { testGames(t, fresh(t)) })
	t.Run("join requests", func(t *testing.T) { testJoinRequests(t, fresh(t)) })
	t.Run("resolve", func(t *testing.T) { testResolve(t, fresh(t)) })
	t.Run("concurrent accepts", func(t *testing.T) { testConcurrentAccepts(t, fresh(t)) })
	t.Run("edits during accepts", func(t *testing.T) { testEditsDuringAccepts(t, fresh(t)) })
}

func addUser(t *testing.T, s tables, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func addGame(t *testing.T, s tables, host *models.User, visibility models.Visibility, current, needed int) *models.Game {
	t.Helper()
	g := &models.Game{
		Sport:               models.SportCricket,
		Title:               "Nets session",
		Location:            "Oval",
		DateTime:            time.Date(2026, 12, 5, 9, 0, 0, 0, time.UTC),
		CurrentPlayersCount: current,
		NeededPlayersCount:  needed,
		SkillLevel:          models.SkillAdvanced,
		Visibility:          visibility,
		HostID:              host.ID,
	}
	require.NoError(t, s.CreateGame(context.Background(), g))
	return g
}

func addRequest(t *testing.T, s tables, user *models.User, g *models.Game) *models.JoinRequest {
	t.Helper()
	jr := &models.JoinRequest{GameID: g.ID, UserID: user.ID, Status: models.StatusRequested}
	require.NoError(t, s.CreateJoinRequest(context.Background(), jr))
	return jr
}

func testUsers(t *testing.T, s tables) {
	ctx := context.Background()
	alice := addUser(t, s, "alice")
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.DateJoined.IsZero())

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "x"}), ErrDuplicate)

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.GetUserByID(ctx, alice.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	addUser(t, s, "bob")
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
}

func testGames(t *testing.T, s tables) {
	ctx := context.Background()
	alice := addUser(t, s, "alice")
	bob := addUser(t, s, "bob")

	open := addGame(t, s, alice, models.VisibilityPublic, 1, 4)
	addGame(t, s, alice, models.VisibilityPrivate, 1, 4)
	bobs := addGame(t, s, bob, models.VisibilityPublic, 1, 4)

	games, err := s.ListPublicGames(ctx, 0)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, open.ID, games[0].ID)

	games, err = s.ListPublicGames(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, bobs.ID, games[0].ID)

	hosted, err := s.CountGamesByHost(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hosted)

	updated, err := s.UpdateGame(ctx, open.ID, func(g *models.Game) {
		g.Title = "Indoor nets"
		g.HostID = bob.ID
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, updated.HostID)
	got, err := s.GetGameByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, "Indoor nets", got.Title)
	assert.Equal(t, alice.ID, got.HostID)

	_, err = s.UpdateGame(ctx, 999, func(*models.Game) {})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CreateGame(ctx, &models.Game{HostID: 999, Sport: models.SportFutsal, SkillLevel: models.SkillBeginner, Visibility: models.VisibilityPublic})
	assert.ErrorIs(t, err, ErrNotFound)

	addRequest(t, s, bob, open)
	require.NoError(t, s.DeleteGame(ctx, open.ID))
	assert.ErrorIs(t, s.DeleteGame(ctx, open.ID), ErrNotFound)
	_, err = s.GetJoinRequest(ctx, open.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func testJoinRequests(t *testing.T, s tables) {
	ctx := context.Background()
	host := addUser(t, s, "host")
	player := addUser(t, s, "player")
	first := addGame(t, s, host, models.VisibilityPublic, 1, 4)
	second := addGame(t, s, host, models.VisibilityPrivate, 1, 4)

	_, err := s.GetJoinRequest(ctx, first.ID, player.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	older := addRequest(t, s, player, first)
	assert.NotZero(t, older.ID)
	assert.ErrorIs(t, s.CreateJoinRequest(ctx, &models.JoinRequest{GameID: first.ID, UserID: player.ID, Status: models.StatusRequested}), ErrDuplicate)
	assert.ErrorIs(t, s.CreateJoinRequest(ctx, &models.JoinRequest{GameID: 999, UserID: player.ID, Status: models.StatusRequested}), ErrNotFound)

	newer := addRequest(t, s, player, second)

	details, err := s.ListJoinRequestsByGame(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "player", details[0].UserName)

	mine, err := s.ListJoinRequestsByUser(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)
	assert.Equal(t, "host", mine[0].Game.Host.Username)

	_, err = s.GetJoinRequestForHost(ctx, older.ID, player.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.GetJoinRequestForHost(ctx, older.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, got.Status)
}

func testResolve(t *testing.T, s tables) {
	ctx := context.Background()
	host := addUser(t, s, "host")
	p1 := addUser(t, s, "p1")
	p2 := addUser(t, s, "p2")
	g := addGame(t, s, host, models.VisibilityPublic, 1, 3)

	accepted := addRequest(t, s, p1, g)
	rejected := addRequest(t, s, p2, g)

	_, _, err := s.ResolveJoinRequest(ctx, accepted.ID, p1.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, ErrNotFound)

	jr, game, err := s.ResolveJoinRequest(ctx, accepted.ID, host.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, jr.Status)
	assert.Equal(t, 2, game.CurrentPlayersCount)
	assert.Equal(t, 2, game.NeededPlayersCount)

	jr, _, err = s.ResolveJoinRequest(ctx, accepted.ID, host.ID, models.StatusRejected)
	assert.ErrorIs(t, err, ErrNotPending)
	require.NotNil(t, jr)
	assert.Equal(t, models.StatusAccepted, jr.Status)

	_, game, err = s.ResolveJoinRequest(ctx, rejected.ID, host.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 2, game.CurrentPlayersCount)

	count, err := s.CountJoinRequestsByStatus(ctx, p1.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testConcurrentAccepts(t *testing.T, s tables) {
	ctx := context.Background()
	host := addUser(t, s, "host")
	g := addGame(t, s, host, models.VisibilityPublic, 1, 5)

	const players = 8
	requests := make([]*models.JoinRequest, 0, players)
	for i := 0; i < players; i++ {
		requests = append(requests, addRequest(t, s, addUser(t, s, fmt.Sprintf("p%d", i)), g))
	}

	var wg sync.WaitGroup
	for _, jr := range requests {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _, err := s.ResolveJoinRequest(ctx, id, host.ID, models.StatusAccepted)
			assert.NoError(t, err)
		}(jr.ID)
	}
	wg.Wait()

	got, err := s.GetGameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+players, got.CurrentPlayersCount)
	assert.Equal(t, 0, got.NeededPlayersCount)
}

func testEditsDuringAccepts(t *testing.T, s tables) {
	ctx := context.Background()
	host := addUser(t, s, "host")
	g := addGame(t, s, host, models.VisibilityPublic, 1, 10)

	const players = 6
	requests := make([]*models.JoinRequest, 0, players)
	for i := 0; i < players; i++ {
		requests = append(requests, addRequest(t, s, addUser(t, s, fmt.Sprintf("p%d", i)), g))
	}

	var wg sync.WaitGroup
	for i, jr := range requests {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			_, _, err := s.ResolveJoinRequest(ctx, id, host.ID, models.StatusAccepted)
			assert.NoError(t, err)
		}(jr.ID)
		go func(n int) {
			defer wg.Done()
			_, err := s.UpdateGame(ctx, g.ID, func(g *models.Game) { g.Title = fmt.Sprintf("Nets %d", n) })
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetGameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+players, got.CurrentPlayersCount)
	assert.Equal(t, 10-players, got.NeededPlayersCount)
}
