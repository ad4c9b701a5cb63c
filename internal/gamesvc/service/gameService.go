package service

import (
	"context"
	"errors"

	"github.com/avvvet/gamemate-services/internal/comm"
	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

type GameService struct {
	gameStore        GameStore
	userStore        UserStore
	joinRequestStore JoinRequestStore
	events           EventPublisher
}

func NewGameService(gameStore GameStore, userStore UserStore, joinRequestStore JoinRequestStore, events EventPublisher) *GameService {
	return &GameService{
		gameStore:        gameStore,
		userStore:        userStore,
		joinRequestStore: joinRequestStore,
		events:           publisherOrNoop(events),
	}
}

// ListPublic returns the public games. A signed in viewer does not see the
// games they host.
func (s *GameService) ListPublic(ctx context.Context, viewer *models.User) ([]*models.Game, error) {
	var exclude int64
	if viewer != nil {
		exclude = viewer.ID
	}
	return s.gameStore.ListPublicGames(ctx, exclude)
}

// Retrieve returns a public game. Private games are reported as missing.
func (s *GameService) Retrieve(ctx context.Context, gameID int64) (*models.Game, error) {
	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Not found.")
		}
		return nil, err
	}
	if !game.IsPublic() {
		return nil, notFound("Not found.")
	}
	return game, nil
}

func (s *GameService) Create(ctx context.Context, host *models.User, in GameInput) (*models.Game, error) {
	if host == nil {
		return nil, errNoIdentity
	}
	if err := validateInput("Invalid game payload.", in); err != nil {
		return nil, err
	}

	game := &models.Game{HostID: host.ID, CurrentPlayersCount: models.DefaultCurrentPlayers}
	applyInput(game, in)

	if err := s.gameStore.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"game_id": game.ID, "host_id": host.ID, "visibility": game.Visibility}).Info("game created")
	s.events.Emit(comm.SubjectGameCreated, game)
	return game, nil
}

// applyInput copies a validated full payload onto game. Omitted optional
// fields keep the value game already has.
func applyInput(game *models.Game, in GameInput) {
	game.Sport = in.Sport
	game.Title = in.Title
	game.Location = in.Location
	game.DateTime = *in.DateTime
	if in.CurrentPlayersCount != nil {
		game.CurrentPlayersCount = *in.CurrentPlayersCount
	}
	game.NeededPlayersCount = *in.NeededPlayersCount
	game.SkillLevel = in.SkillLevel
	game.Visibility = in.Visibility
	if in.Description != nil {
		game.Description = in.Description
	}
}

func applyPatch(game *models.Game, p GamePatch) {
	if p.Sport != nil {
		game.Sport = *p.Sport
	}
	if p.Title != nil {
		game.Title = *p.Title
	}
	if p.Location != nil {
		game.Location = *p.Location
	}
	if p.DateTime != nil {
		game.DateTime = *p.DateTime
	}
	if p.CurrentPlayersCount != nil {
		game.CurrentPlayersCount = *p.CurrentPlayersCount
	}
	if p.NeededPlayersCount != nil {
		game.NeededPlayersCount = *p.NeededPlayersCount
	}
	if p.SkillLevel != nil {
		game.SkillLevel = *p.SkillLevel
	}
	if p.Visibility != nil {
		game.Visibility = *p.Visibility
	}
	if p.Description != nil {
		game.Description = p.Description
	}
}

// ListHosted returns every game the caller hosts, private ones included.
func (s *GameService) ListHosted(ctx context.Context, host *models.User) ([]*models.Game, error) {
	if host == nil {
		return nil, errNoIdentity
	}
	return s.gameStore.ListGamesByHost(ctx, host.ID)
}

// ownedGame loads a game the caller is allowed to modify.
func (s *GameService) ownedGame(ctx context.Context, host *models.User, gameID int64) (*models.Game, error) {
	if host == nil {
		return nil, errNoIdentity
	}
	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Game not found.")
		}
		return nil, err
	}
	if !game.HostedBy(host.ID) {
		return nil, forbidden("Only the host can modify this game.")
	}
	return game, nil
}

// Update replaces every writable field of a hosted game.
func (s *GameService) Update(ctx context.Context, host *models.User, gameID int64, in GameInput) (*models.Game, error) {
	if _, err := s.ownedGame(ctx, host, gameID); err != nil {
		return nil, err
	}
	if err := validateInput("Invalid game payload.", in); err != nil {
		return nil, err
	}

	return s.save(ctx, gameID, func(g *models.Game) { applyInput(g, in) })
}

// Patch changes only the fields present in p.
func (s *GameService) Patch(ctx context.Context, host *models.User, gameID int64, p GamePatch) (*models.Game, error) {
	if _, err := s.ownedGame(ctx, host, gameID); err != nil {
		return nil, err
	}
	if err := validateInput("Invalid game payload.", p); err != nil {
		return nil, err
	}

	return s.save(ctx, gameID, func(g *models.Game) { applyPatch(g, p) })
}

// save applies the change to the current stored row, so players admitted
// since ownedGame read the game are kept.
func (s *GameService) save(ctx context.Context, gameID int64, apply func(*models.Game)) (*models.Game, error) {
	game, err := s.gameStore.UpdateGame(ctx, gameID, apply)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Game not found.")
		}
		return nil, err
	}

	log.WithField("game_id", game.ID).Info("game updated")
	s.events.Emit(comm.SubjectGameUpdated, game)
	return game, nil
}

// Delete removes a hosted game together with its join requests.
func (s *GameService) Delete(ctx context.Context, host *models.User, gameID int64) error {
	game, err := s.ownedGame(ctx, host, gameID)
	if err != nil {
		return err
	}

	if err := s.gameStore.DeleteGame(ctx, game.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Game not found.")
		}
		return err
	}

	log.WithFields(log.Fields{"game_id": game.ID, "host_id": game.HostID}).Info("game deleted")
	s.events.Emit(comm.SubjectGameDeleted, comm.GameDeleted{GameID: game.ID, HostID: game.HostID})
	return nil
}

// Stats counts the games a user hosts and the join requests of theirs that
// were accepted.
func (s *GameService) Stats(ctx context.Context, userID int64) (*models.GameStats, error) {
	if _, err := s.userStore.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, err
	}

	hosted, err := s.gameStore.CountGamesByHost(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.joinRequestStore.CountJoinRequestsByStatus(ctx, userID, models.StatusAccepted)
	if err != nil {
		return nil, err
	}

	return &models.GameStats{GamesHosted: hosted, GamesJoined: joined}, nil
}
