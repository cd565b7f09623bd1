package domain

import "time"

// FinishedGame is the archived record of a game whose board filled up.
type FinishedGame struct {
	ID            int64        `db:"id" json:"id"`
	GameID        string       `db:"game_id" json:"game_id"`
	WhiteSocket   string       `db:"white_socket" json:"white_socket"`
	WhiteUsername string       `db:"white_username" json:"white_username"`
	BlackSocket   string       `db:"black_socket" json:"black_socket"`
	BlackUsername string       `db:"black_username" json:"black_username"`
	WhiteDiscs    int          `db:"white_discs" json:"white_discs"`
	BlackDiscs    int          `db:"black_discs" json:"black_discs"`
	WhoWon        string       `db:"who_won" json:"who_won"`
	Board         [8][8]string `db:"board" json:"board"`
	LastMoveAt    time.Time    `db:"last_move_at" json:"last_move_at"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}
