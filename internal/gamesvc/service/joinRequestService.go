package service

import (
	"context"
	"errors"

	"github.com/avvvet/gamemate-services/internal/comm"
	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// JoinRequestService drives the join request lifecycle:
// requested -> accepted | rejected, each resolution final.
type JoinRequestService struct {
	gameStore        GameStore
	joinRequestStore JoinRequestStore
	events           EventPublisher
}

func NewJoinRequestService(gameStore GameStore, joinRequestStore JoinRequestStore, events EventPublisher) *JoinRequestService {
	return &JoinRequestService{
		gameStore:        gameStore,
		joinRequestStore: joinRequestStore,
		events:           publisherOrNoop(events),
	}
}

func (s *JoinRequestService) game(ctx context.Context, gameID int64) (*models.Game, error) {
	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Game not found.")
		}
		return nil, err
	}
	return game, nil
}

// CheckStatus reports the caller's request status for a game, or
// not_requested when there is none.
func (s *JoinRequestService) CheckStatus(ctx context.Context, user *models.User, gameID int64) (models.JoinRequestStatus, error) {
	if user == nil {
		return "", errNoIdentity
	}
	if _, err := s.game(ctx, gameID); err != nil {
		return "", err
	}

	jr, err := s.joinRequestStore.GetJoinRequest(ctx, gameID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.StatusNotRequested, nil
		}
		return "", err
	}
	return jr.Status, nil
}

// CreateRequest files a new request. A second request for the same game is
// refused with the status of the first one.
func (s *JoinRequestService) CreateRequest(ctx context.Context, user *models.User, gameID int64) (*models.JoinRequest, error) {
	if user == nil {
		return nil, errNoIdentity
	}
	game, err := s.game(ctx, gameID)
	if err != nil {
		return nil, err
	}

	existing, err := s.joinRequestStore.GetJoinRequest(ctx, gameID, user.ID)
	if err == nil {
		return nil, conflict("Join request already exists.", existing.Status)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if game.HostedBy(user.ID) {
		// allowed, hosts may request their own game
		log.WithFields(log.Fields{"game_id": gameID, "user_id": user.ID}).Warn("host requested to join own game")
	}

	jr := &models.JoinRequest{
		GameID: gameID,
		UserID: user.ID,
		Status: models.StatusRequested,
	}
	if err := s.joinRequestStore.CreateJoinRequest(ctx, jr); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			// lost a race against a concurrent request from the same user
			if existing, getErr := s.joinRequestStore.GetJoinRequest(ctx, gameID, user.ID); getErr == nil {
				return nil, conflict("Join request already exists.", existing.Status)
			}
			return nil, conflict("Join request already exists.", models.StatusRequested)
		case errors.Is(err, store.ErrNotFound):
			return nil, notFound("Game not found.")
		}
		return nil, err
	}

	log.WithFields(log.Fields{"join_request_id": jr.ID, "game_id": gameID, "user_id": user.ID}).Info("join request created")
	s.events.Emit(comm.SubjectJoinRequestCreated, comm.JoinRequestChange{JoinRequest: *jr})
	return jr, nil
}

// ListForGame returns every request of a game to its host.
func (s *JoinRequestService) ListForGame(ctx context.Context, host *models.User, gameID int64) ([]*models.JoinRequestDetail, error) {
	if host == nil {
		return nil, errNoIdentity
	}
	game, err := s.game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.HostedBy(host.ID) {
		return nil, forbidden("Only the host can view join requests for this game.")
	}
	return s.joinRequestStore.ListJoinRequestsByGame(ctx, gameID)
}

// UpdateStatus lets a host accept or reject a pending request. The lookup is
// scoped to the caller's games, so a request on someone else's game is
// reported as missing. Accepting admits the player into the game.
func (s *JoinRequestService) UpdateStatus(ctx context.Context, host *models.User, joinRequestID int64, status string) (*models.JoinRequest, error) {
	if host == nil {
		return nil, errNoIdentity
	}

	if _, err := s.joinRequestStore.GetJoinRequestForHost(ctx, joinRequestID, host.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Join request not found.")
		}
		return nil, err
	}

	newStatus := models.JoinRequestStatus(status)
	if !newStatus.IsResolution() {
		e := invalid("Invalid status. Must be 'accepted' or 'rejected'.")
		e.Fields = map[string]string{"status": e.Detail}
		return nil, e
	}

	jr, game, err := s.joinRequestStore.ResolveJoinRequest(ctx, joinRequestID, host.ID, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, notFound("Join request not found.")
		case errors.Is(err, store.ErrNotPending):
			return nil, conflict("Join request already "+string(jr.Status)+".", jr.Status)
		}
		return nil, err
	}

	fields := log.Fields{"join_request_id": jr.ID, "game_id": jr.GameID, "status": jr.Status}
	if newStatus == models.StatusAccepted {
		fields["current_players_count"] = game.CurrentPlayersCount
		fields["needed_players_count"] = game.NeededPlayersCount
	}
	log.WithFields(fields).Info("join request resolved")

	s.events.Emit(comm.SubjectJoinRequestUpdated, comm.JoinRequestChange{JoinRequest: *jr, Game: game})
	return jr, nil
}

// ListForUser returns the caller's requests, newest first.
func (s *JoinRequestService) ListForUser(ctx context.Context, user *models.User) ([]*models.UserJoinRequest, error) {
	if user == nil {
		return nil, errNoIdentity
	}
	return s.joinRequestStore.ListJoinRequestsByUser(ctx, user.ID)
}
