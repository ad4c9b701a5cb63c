package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JoinRequestStore struct {
	db *pgxpool.Pool
}

func NewJoinRequestStore(db *pgxpool.Pool) *JoinRequestStore {
	return &JoinRequestStore{db: db}
}

const joinRequestColumns = `id, game_id, user_id, status, created_at, updated_at`

func scanJoinRequest(row pgx.Row) (*models.JoinRequest, error) {
	jr := &models.JoinRequest{}
	err := row.Scan(
		&jr.ID,
		&jr.GameID,
		&jr.UserID,
		&jr.Status,
		&jr.CreatedAt,
		&jr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return jr, nil
}

// GetJoinRequest returns the first request of userID for gameID.
func (s *JoinRequestStore) GetJoinRequest(ctx context.Context, gameID, userID int64) (*models.JoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `
		FROM join_requests
		WHERE game_id = $1 AND user_id = $2
		ORDER BY id
		LIMIT 1`

	jr, err := scanJoinRequest(s.db.QueryRow(ctx, query, gameID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return jr, nil
}

// CreateJoinRequest inserts jr unless the same user already has a request
// for the game, in which case it fails with ErrDuplicate. There is no unique
// index behind this; the game row is locked while checking so concurrent
// requests for one game are serialized.
func (s *JoinRequestStore) CreateJoinRequest(ctx context.Context, jr *models.JoinRequest) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var gameID int64
		err := tx.QueryRow(ctx, `SELECT id FROM games WHERE id = $1 FOR NO KEY UPDATE`, jr.GameID).Scan(&gameID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM join_requests WHERE game_id = $1 AND user_id = $2)`,
			jr.GameID, jr.UserID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}

		return tx.QueryRow(ctx, `
			INSERT INTO join_requests (game_id, user_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`,
			jr.GameID, jr.UserID, jr.Status,
		).Scan(&jr.ID, &jr.CreatedAt, &jr.UpdatedAt)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
			return err
		case pgCode(err) == foreignKeyViolation:
			// user vanished in between
			return ErrNotFound
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

func (s *JoinRequestStore) ListJoinRequestsByGame(ctx context.Context, gameID int64) ([]*models.JoinRequestDetail, error) {
	query := `
		SELECT jr.id, jr.user_id, u.username, u.email, jr.status
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.game_id = $1
		ORDER BY jr.id`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests for game: %w", err)
	}
	defer rows.Close()

	requests := []*models.JoinRequestDetail{}
	for rows.Next() {
		var d models.JoinRequestDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.UserName, &d.UserEmail, &d.Status); err != nil {
			return nil, err
		}
		requests = append(requests, &d)
	}
	return requests, rows.Err()
}

// ListJoinRequestsByUser returns the user's requests newest first, each with
// the current state of its game and host.
func (s *JoinRequestStore) ListJoinRequestsByUser(ctx context.Context, userID int64) ([]*models.UserJoinRequest, error) {
	query := `
		SELECT jr.id, jr.status, jr.created_at,
			g.id, g.sport, g.title, g.location, g.date_time, g.current_players_count,
			g.needed_players_count, g.skill_level, g.visibility, g.description,
			g.created_at, g.updated_at,
			h.id, h.username, h.email, h.first_name, h.last_name
		FROM join_requests jr
		JOIN games g ON g.id = jr.game_id
		JOIN users h ON h.id = g.host_id
		WHERE jr.user_id = $1
		ORDER BY jr.id DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests for user: %w", err)
	}
	defer rows.Close()

	requests := []*models.UserJoinRequest{}
	for rows.Next() {
		var r models.UserJoinRequest
		g := &r.Game
		err := rows.Scan(
			&r.ID, &r.Status, &r.CreatedAt,
			&g.ID, &g.Sport, &g.Title, &g.Location, &g.DateTime, &g.CurrentPlayersCount,
			&g.NeededPlayersCount, &g.SkillLevel, &g.Visibility, &g.Description,
			&g.CreatedAt, &g.UpdatedAt,
			&g.Host.ID, &g.Host.Username, &g.Host.Email, &g.Host.FirstName, &g.Host.LastName,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}

// GetJoinRequestForHost looks a request up by id, matching only when its game
// is hosted by hostID.
func (s *JoinRequestStore) GetJoinRequestForHost(ctx context.Context, id, hostID int64) (*models.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.game_id, jr.user_id, jr.status, jr.created_at, jr.updated_at
		FROM join_requests jr
		JOIN games g ON g.id = jr.game_id
		WHERE jr.id = $1 AND g.host_id = $2`

	jr, err := scanJoinRequest(s.db.QueryRow(ctx, query, id, hostID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return jr, nil
}

// ResolveJoinRequest moves a pending request into status and, for an
// acceptance, admits the player into the game. The request and game rows are
// locked for the whole transaction so concurrent resolutions on one game run
// one after another. A request that is no longer pending is returned with
// ErrNotPending and nothing is written.
func (s *JoinRequestStore) ResolveJoinRequest(ctx context.Context, id, hostID int64, status models.JoinRequestStatus) (*models.JoinRequest, *models.Game, error) {
	var (
		jr   *models.JoinRequest
		game *models.Game
	)

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		jr, err = scanJoinRequest(tx.QueryRow(ctx, `
			SELECT jr.id, jr.game_id, jr.user_id, jr.status, jr.created_at, jr.updated_at
			FROM join_requests jr
			JOIN games g ON g.id = jr.game_id
			WHERE jr.id = $1 AND g.host_id = $2
			FOR UPDATE OF jr, g`, id, hostID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if jr.Status != models.StatusRequested {
			return ErrNotPending
		}

		jr.Status = status
		err = tx.QueryRow(ctx,
			`UPDATE join_requests SET status = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
			jr.ID, jr.Status,
		).Scan(&jr.UpdatedAt)
		if err != nil {
			return err
		}

		game, err = scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, jr.GameID))
		if err != nil {
			return err
		}

		if status != models.StatusAccepted {
			return nil
		}

		game.AdmitPlayer()
		return tx.QueryRow(ctx, `
			UPDATE games
			SET current_players_count = $2, needed_players_count = $3, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			game.ID, game.CurrentPlayersCount, game.NeededPlayersCount,
		).Scan(&game.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		if errors.Is(err, ErrNotPending) {
			return jr, nil, ErrNotPending
		}
		return nil, nil, fmt.Errorf("failed to resolve join request: %w", err)
	}

	return jr, game, nil
}

func (s *JoinRequestStore) CountJoinRequestsByStatus(ctx context.Context, userID int64, status models.JoinRequestStatus) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM join_requests WHERE user_id = $1 AND status = $2`,
		userID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count join requests: %w", err)
	}
	return count, nil
}
