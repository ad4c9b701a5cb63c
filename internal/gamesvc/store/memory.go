package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
)

// Memory keeps users, games and join requests in process. It serves local
// runs without PostgreSQL and the service tests. One mutex guards all three
// tables, so every method is atomic the way a single transaction would be.
type Memory struct {
	mu       sync.Mutex
	users    map[int64]models.User
	games    map[int64]models.Game
	requests map[int64]models.JoinRequest
	lastID   struct{ user, game, request int64 }
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:    map[int64]models.User{},
		games:    map[int64]models.Game{},
		requests: map[int64]models.JoinRequest{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}

	m.lastID.user++
	user.ID = m.lastID.user
	user.DateJoined = m.now()
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*models.User, 0, len(m.users))
	for _, id := range sortedKeys(m.users) {
		u := m.users[id]
		users = append(users, &u)
	}
	return users, nil
}

func (m *Memory) CreateGame(_ context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[game.HostID]; !ok {
		return ErrNotFound
	}

	m.lastID.game++
	game.ID = m.lastID.game
	game.CreatedAt = m.now()
	game.UpdatedAt = game.CreatedAt
	m.games[game.ID] = *game
	return nil
}

func (m *Memory) GetGameByID(_ context.Context, gameID int64) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (m *Memory) ListPublicGames(_ context.Context, excludeHostID int64) ([]*models.Game, error) {
	return m.filterGames(func(g *models.Game) bool {
		return g.IsPublic() && (excludeHostID == 0 || !g.HostedBy(excludeHostID))
	}), nil
}

func (m *Memory) ListGamesByHost(_ context.Context, hostID int64) ([]*models.Game, error) {
	return m.filterGames(func(g *models.Game) bool { return g.HostedBy(hostID) }), nil
}

func (m *Memory) filterGames(keep func(*models.Game) bool) []*models.Game {
	m.mu.Lock()
	defer m.mu.Unlock()

	games := []*models.Game{}
	for _, id := range sortedKeys(m.games) {
		g := m.games[id]
		if keep(&g) {
			games = append(games, &g)
		}
	}
	return games
}

func (m *Memory) UpdateGame(_ context.Context, gameID int64, apply func(*models.Game)) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	game, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}

	apply(&game)
	stored := m.games[gameID]
	game.ID = stored.ID
	game.HostID = stored.HostID
	game.CreatedAt = stored.CreatedAt
	game.UpdatedAt = m.now()
	m.games[gameID] = game
	return &game, nil
}

func (m *Memory) DeleteGame(_ context.Context, gameID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; !ok {
		return ErrNotFound
	}
	delete(m.games, gameID)
	for id, jr := range m.requests {
		if jr.GameID == gameID {
			delete(m.requests, id)
		}
	}
	return nil
}

func (m *Memory) CountGamesByHost(_ context.Context, hostID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, g := range m.games {
		if g.HostID == hostID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) GetJoinRequest(_ context.Context, gameID, userID int64) (*models.JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jr, ok := m.findRequest(gameID, userID)
	if !ok {
		return nil, ErrNotFound
	}
	return &jr, nil
}

func (m *Memory) findRequest(gameID, userID int64) (models.JoinRequest, bool) {
	for _, id := range sortedKeys(m.requests) {
		jr := m.requests[id]
		if jr.GameID == gameID && jr.UserID == userID {
			return jr, true
		}
	}
	return models.JoinRequest{}, false
}

func (m *Memory) CreateJoinRequest(_ context.Context, jr *models.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[jr.GameID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.findRequest(jr.GameID, jr.UserID); ok {
		return ErrDuplicate
	}
	if _, ok := m.users[jr.UserID]; !ok {
		return ErrNotFound
	}

	m.lastID.request++
	jr.ID = m.lastID.request
	jr.CreatedAt = m.now()
	jr.UpdatedAt = jr.CreatedAt
	m.requests[jr.ID] = *jr
	return nil
}

func (m *Memory) ListJoinRequestsByGame(_ context.Context, gameID int64) ([]*models.JoinRequestDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := []*models.JoinRequestDetail{}
	for _, id := range sortedKeys(m.requests) {
		jr := m.requests[id]
		if jr.GameID != gameID {
			continue
		}
		u := m.users[jr.UserID]
		requests = append(requests, &models.JoinRequestDetail{
			ID:        jr.ID,
			UserID:    jr.UserID,
			UserName:  u.Username,
			UserEmail: u.Email,
			Status:    jr.Status,
		})
	}
	return requests, nil
}

func (m *Memory) ListJoinRequestsByUser(_ context.Context, userID int64) ([]*models.UserJoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := sortedKeys(m.requests)
	requests := []*models.UserJoinRequest{}
	for i := len(ids) - 1; i >= 0; i-- {
		jr := m.requests[ids[i]]
		if jr.UserID != userID {
			continue
		}
		g := m.games[jr.GameID]
		host := m.users[g.HostID]
		requests = append(requests, &models.UserJoinRequest{
			ID:        jr.ID,
			Status:    jr.Status,
			CreatedAt: jr.CreatedAt,
			Game:      g.WithHost(host.Projection()),
		})
	}
	return requests, nil
}

func (m *Memory) GetJoinRequestForHost(_ context.Context, id, hostID int64) (*models.JoinRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jr, ok := m.requestForHost(id, hostID)
	if !ok {
		return nil, ErrNotFound
	}
	return &jr, nil
}

func (m *Memory) requestForHost(id, hostID int64) (models.JoinRequest, bool) {
	jr, ok := m.requests[id]
	if !ok || m.games[jr.GameID].HostID != hostID {
		return models.JoinRequest{}, false
	}
	return jr, true
}

func (m *Memory) ResolveJoinRequest(_ context.Context, id, hostID int64, status models.JoinRequestStatus) (*models.JoinRequest, *models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jr, ok := m.requestForHost(id, hostID)
	if !ok {
		return nil, nil, ErrNotFound
	}
	if jr.Status != models.StatusRequested {
		return &jr, nil, ErrNotPending
	}

	now := m.now()
	jr.Status = status
	jr.UpdatedAt = now
	m.requests[jr.ID] = jr

	game := m.games[jr.GameID]
	if status == models.StatusAccepted {
		game.AdmitPlayer()
		game.UpdatedAt = now
		m.games[game.ID] = game
	}

	return &jr, &game, nil
}

func (m *Memory) CountJoinRequestsByStatus(_ context.Context, userID int64, status models.JoinRequestStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, jr := range m.requests {
		if jr.UserID == userID && jr.Status == status {
			count++
		}
	}
	return count, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
