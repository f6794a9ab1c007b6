package postgres

import (
	"database/sql"
	"time"
)

type lotteryTableModel struct {
	ID        string         `db:"id"`
	Type      string         `db:"type"`
	Status    string         `db:"status"`
	StartDate time.Time      `db:"start_date"`
	WinnerID  sql.NullString `db:"winner_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type lotteryInsertModel struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	StartDate time.Time `db:"start_date"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type lotteryMemberTableModel struct {
	LotteryID string `db:"lottery_id"`
	ClientID  string `db:"client_id"`
}

var lotteryColumns = []string{
	"l.id",
	"l.type",
	"l.status",
	"l.start_date",
	"l.winner_id",
	"l.created_at",
	"l.updated_at",
}

var lotterySortColumns = map[string]string{
	"startDate": "l.start_date",
	"type":      "l.type",
	"status":    "l.status",
	"createdAt": "l.created_at",
}
