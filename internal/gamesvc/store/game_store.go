package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

const gameColumns = `
	id, sport, title, location, date_time, current_players_count, needed_players_count,
	skill_level, visibility, host_id, description, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID,
		&game.Sport,
		&game.Title,
		&game.Location,
		&game.DateTime,
		&game.CurrentPlayersCount,
		&game.NeededPlayersCount,
		&game.SkillLevel,
		&game.Visibility,
		&game.HostID,
		&game.Description,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func collectGames(rows pgx.Rows) ([]*models.Game, error) {
	defer rows.Close()

	games := []*models.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *GameStore) CreateGame(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (sport, title, location, date_time, current_players_count,
			needed_players_count, skill_level, visibility, host_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		game.Sport,
		game.Title,
		game.Location,
		game.DateTime,
		game.CurrentPlayersCount,
		game.NeededPlayersCount,
		game.SkillLevel,
		game.Visibility,
		game.HostID,
		game.Description,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return game, nil
}

// ListPublicGames returns public games, leaving out the ones hosted by
// excludeHostID when it is non-zero.
func (s *GameStore) ListPublicGames(ctx context.Context, excludeHostID int64) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE visibility = 'public' AND ($1::bigint = 0 OR host_id <> $1)
		ORDER BY id`

	rows, err := s.db.Query(ctx, query, excludeHostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public games: %w", err)
	}
	return collectGames(rows)
}

func (s *GameStore) ListGamesByHost(ctx context.Context, hostID int64) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE host_id = $1 ORDER BY id`

	rows, err := s.db.Query(ctx, query, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosted games: %w", err)
	}
	return collectGames(rows)
}

// UpdateGame locks the game row, lets apply change the loaded game and writes
// every editable column back in the same transaction. The host never changes.
// Counter updates from ResolveJoinRequest wait on the same row lock, so an
// edit cannot overwrite an accept that happened after it read the game.
func (s *GameStore) UpdateGame(ctx context.Context, gameID int64, apply func(*models.Game)) (*models.Game, error) {
	var game *models.Game

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		game, err = scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, gameID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		hostID := game.HostID
		apply(game)
		game.HostID = hostID

		return tx.QueryRow(ctx, `
			UPDATE games
			SET sport = $2, title = $3, location = $4, date_time = $5,
				current_players_count = $6, needed_players_count = $7,
				skill_level = $8, visibility = $9, description = $10, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			game.ID,
			game.Sport,
			game.Title,
			game.Location,
			game.DateTime,
			game.CurrentPlayersCount,
			game.NeededPlayersCount,
			game.SkillLevel,
			game.Visibility,
			game.Description,
		).Scan(&game.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return game, nil
}

// DeleteGame removes the game; its join requests go with it (ON DELETE CASCADE).
func (s *GameStore) DeleteGame(ctx context.Context, gameID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GameStore) CountGamesByHost(ctx context.Context, hostID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE host_id = $1`, hostID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count hosted games: %w", err)
	}
	return count, nil
}
