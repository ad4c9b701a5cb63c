package service

import (
	"context"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
)

// UserStore is implemented by store.UserStore and store.Memory.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// GameStore is implemented by store.GameStore and store.Memory.
type GameStore interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
	ListPublicGames(ctx context.Context, excludeHostID int64) ([]*models.Game, error)
	ListGamesByHost(ctx context.Context, hostID int64) ([]*models.Game, error)
	UpdateGame(ctx context.Context, gameID int64, apply func(*models.Game)) (*models.Game, error)
	DeleteGame(ctx context.Context, gameID int64) error
	CountGamesByHost(ctx context.Context, hostID int64) (int64, error)
}

// JoinRequestStore is implemented by store.JoinRequestStore and store.Memory.
type JoinRequestStore interface {
	GetJoinRequest(ctx context.Context, gameID, userID int64) (*models.JoinRequest, error)
	CreateJoinRequest(ctx context.Context, jr *models.JoinRequest) error
	ListJoinRequestsByGame(ctx context.Context, gameID int64) ([]*models.JoinRequestDetail, error)
	ListJoinRequestsByUser(ctx context.Context, userID int64) ([]*models.UserJoinRequest, error)
	GetJoinRequestForHost(ctx context.Context, id, hostID int64) (*models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, id, hostID int64, status models.JoinRequestStatus) (*models.JoinRequest, *models.Game, error)
	CountJoinRequestsByStatus(ctx context.Context, userID int64, status models.JoinRequestStatus) (int64, error)
}

// EventPublisher is implemented by broker.Broker.
type EventPublisher interface {
	Emit(subject string, data any)
}

type noopPublisher struct{}

func (noopPublisher) Emit(string, any) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
