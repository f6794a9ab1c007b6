package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	qb "github.com/riskibarqy/tonttery/internal/platform/querybuilder"
)

type ClientRepository struct {
	db    *sqlx.DB
	guard *Guard
}

func NewClientRepository(db *sqlx.DB, guard *Guard) *ClientRepository {
	return &ClientRepository{db: db, guard: guard}
}

func (r *ClientRepository) GetByID(ctx context.Context, clientID string) (client.Client, bool, error) {
	query, args, err := qb.Select(clientColumns...).From(clientTable + " c").
		Where(qb.Eq("c.id", clientID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return client.Client{}, false, fmt.Errorf("build select client query: %w", err)
	}

	var (
		row   clientTableModel
		found bool
	)
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("select client id=%s: %w", clientID, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return client.Client{}, false, err
	}
	return clientFromRow(row), true, nil
}

func (r *ClientRepository) ListByLottery(ctx context.Context, lotteryID string, page pagination.Request) (pagination.Page[client.Client], error) {
	page = page.WithDefaults(client.DefaultMemberSort...)
	scope := func(b *qb.SelectBuilder) *qb.SelectBuilder {
		return b.Join("JOIN " + clientLotteryTable + " cl ON cl.client_id = c.id").
			Where(qb.Eq("cl.lottery_id", lotteryID))
	}

	countQuery, countArgs, err := scope(qb.Select("COUNT(*)").From(clientTable + " c")).ToSQL()
	if err != nil {
		return pagination.Page[client.Client]{}, fmt.Errorf("build count lottery members query: %w", err)
	}
	query, args, err := scope(qb.Select(clientColumns...).From(clientTable+" c")).
		OrderBy(orderClauses(page.Sort, clientSortColumns, "c.id ASC")...).
		Limit(page.Size).
		Offset(page.Offset()).
		ToSQL()
	if err != nil {
		return pagination.Page[client.Client]{}, fmt.Errorf("build select lottery members query: %w", err)
	}

	var out pagination.Page[client.Client]
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		var total int
		if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
			return fmt.Errorf("count lottery members lottery_id=%s: %w", lotteryID, err)
		}
		var rows []clientTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return fmt.Errorf("select lottery members lottery_id=%s: %w", lotteryID, err)
		}
		items := make([]client.Client, 0, len(rows))
		for _, row := range rows {
			items = append(items, clientFromRow(row))
		}
		out = pagination.NewPage(items, page, total)
		return nil
	})
	return out, err
}

func (r *ClientRepository) Upsert(ctx context.Context, c client.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate client: %w", err)
	}

	now := time.Now().UTC()
	createdAt := c.CreatedAt.UTC()
	if c.CreatedAt.IsZero() {
		createdAt = now
	}
	var authenticatedAt *time.Time
	if !c.AuthenticatedAt.IsZero() {
		at := c.AuthenticatedAt.UTC()
		authenticatedAt = &at
	}

	query, args, err := qb.InsertModel(clientTable, clientUpsertModel{
		ID:               c.ID,
		TelegramID:       c.TelegramID,
		FirstName:        nullableString(c.FirstName),
		LastName:         nullableString(c.LastName),
		TelegramUserName: nullableString(c.TelegramUserName),
		IsBot:            c.IsBot,
		IsPremium:        c.IsPremium,
		Image:            nullableString(c.Image),
		AuthenticatedAt:  authenticatedAt,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}, `ON CONFLICT (id) DO UPDATE SET
    telegram_id = EXCLUDED.telegram_id,
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    telegram_user_name = EXCLUDED.telegram_user_name,
    is_bot = EXCLUDED.is_bot,
    is_premium = EXCLUDED.is_premium,
    image = EXCLUDED.image,
    authenticated_at = COALESCE(EXCLUDED.authenticated_at, client.authenticated_at),
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert client query: %w", err)
	}

	return r.guard.Do(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert client id=%s: %w", c.ID, err)
		}
		return nil
	})
}

func clientFromRow(row clientTableModel) client.Client {
	return client.Client{
		ID:               row.ID,
		TelegramID:       row.TelegramID,
		FirstName:        strings.TrimSpace(row.FirstName.String),
		LastName:         strings.TrimSpace(row.LastName.String),
		TelegramUserName: strings.TrimSpace(row.TelegramUserName.String),
		IsBot:            row.IsBot,
		IsPremium:        row.IsPremium,
		Image:            strings.TrimSpace(row.Image.String),
		AuthenticatedAt:  row.AuthenticatedAt.Time,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
