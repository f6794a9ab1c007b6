package postgres

import (
	"database/sql"
	"time"
)

type clientTableModel struct {
	ID               string         `db:"id"`
	TelegramID       int64          `db:"telegram_id"`
	FirstName        sql.NullString `db:"first_name"`
	LastName         sql.NullString `db:"last_name"`
	TelegramUserName sql.NullString `db:"telegram_user_name"`
	IsBot            bool           `db:"is_bot"`
	IsPremium        bool           `db:"is_premium"`
	Image            sql.NullString `db:"image"`
	AuthenticatedAt  sql.NullTime   `db:"authenticated_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type clientUpsertModel struct {
	ID               string     `db:"id"`
	TelegramID       int64      `db:"telegram_id"`
	FirstName        *string    `db:"first_name"`
	LastName         *string    `db:"last_name"`
	TelegramUserName *string    `db:"telegram_user_name"`
	IsBot            bool       `db:"is_bot"`
	IsPremium        bool       `db:"is_premium"`
	Image            *string    `db:"image"`
	AuthenticatedAt  *time.Time `db:"authenticated_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

var clientColumns = []string{
	"c.id",
	"c.telegram_id",
	"c.first_name",
	"c.last_name",
	"c.telegram_user_name",
	"c.is_bot",
	"c.is_premium",
	"c.image",
	"c.authenticated_at",
	"c.created_at",
	"c.updated_at",
}

var clientSortColumns = map[string]string{
	"isPremium":        "c.is_premium",
	"telegramUserName": "c.telegram_user_name",
	"firstName":        "c.first_name",
}
