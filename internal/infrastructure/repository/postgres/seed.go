package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tonttery/internal/infrastructure/repository/memory"
)

// BootstrapSeed inserts the demo clients into an empty client table.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM `+clientTable); err != nil {
		return fmt.Errorf("count clients for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range memory.SeedClients() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO `+clientTable+` (id, telegram_id, first_name, last_name, telegram_user_name, is_bot, is_premium, image)
VALUES (:id, :telegram_id, :first_name, :last_name, :telegram_user_name, :is_bot, :is_premium, :image)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":                 c.ID,
			"telegram_id":        c.TelegramID,
			"first_name":         c.FirstName,
			"last_name":          c.LastName,
			"telegram_user_name": c.TelegramUserName,
			"is_bot":             c.IsBot,
			"is_premium":         c.IsPremium,
			"image":              c.Image,
		})
		if err != nil {
			return fmt.Errorf("bind seed client %s query: %w", c.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
