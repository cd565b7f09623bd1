package repository

import (
	"context"
	"encoding/json"
	"time"

	"othello_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FinishedGameRepository struct {
	db *pgxpool.Pool
}

func NewFinishedGameRepository(db *pgxpool.Pool) *FinishedGameRepository {
	return &FinishedGameRepository{db: db}
}

// Create stores a finished game and fills in its ID and CreatedAt.
func (r *FinishedGameRepository) Create(ctx context.Context, g *domain.FinishedGame) error {
	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO finished_games
			(game_id, white_socket, white_username, black_socket, black_username,
			 white_discs, black_discs, who_won, board, last_move_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		g.GameID,
		g.WhiteSocket,
		g.WhiteUsername,
		g.BlackSocket,
		g.BlackUsername,
		g.WhiteDiscs,
		g.BlackDiscs,
		g.WhoWon,
		boardJSON,
		g.LastMoveAt,
	).Scan(&g.ID, &g.CreatedAt)
}

// ListRecent returns the most recently finished games, newest first.
func (r *FinishedGameRepository) ListRecent(ctx context.Context, limit int) ([]*domain.FinishedGame, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, game_id, white_socket, white_username, black_socket, black_username,
				white_discs, black_discs, who_won, board, last_move_at, created_at
		 FROM finished_games
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.FinishedGame
	for rows.Next() {
		var (
			g          domain.FinishedGame
			boardBytes []byte
			lastMoveAt time.Time
		)
		if err := rows.Scan(
			&g.ID, &g.GameID,
			&g.WhiteSocket, &g.WhiteUsername,
			&g.BlackSocket, &g.BlackUsername,
			&g.WhiteDiscs, &g.BlackDiscs, &g.WhoWon,
			&boardBytes, &lastMoveAt, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(boardBytes, &g.Board)
		g.LastMoveAt = lastMoveAt
		res = append(res, &g)
	}

	return res, rows.Err()
}
