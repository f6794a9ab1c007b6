package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	qb "github.com/riskibarqy/tonttery/internal/platform/querybuilder"
)

type LotteryRepository struct {
	db    *sqlx.DB
	guard *Guard
	now   func() time.Time
}

func NewLotteryRepository(db *sqlx.DB, guard *Guard) *LotteryRepository {
	return &LotteryRepository{db: db, guard: guard, now: time.Now}
}

func (r *LotteryRepository) Create(ctx context.Context, l lottery.Lottery) error {
	query, args, err := qb.InsertModel(lotteryTable, lotteryInsertModel{
		ID:        l.ID,
		Type:      string(l.Type),
		Status:    string(l.Status),
		StartDate: lottery.Date(l.StartDate),
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert lottery query: %w", err)
	}

	return r.guard.Do(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert lottery type=%s start_date=%s: %w: %w", l.Type, l.StartDate.Format(lottery.DateLayout), lottery.ErrAlreadyScheduled, err)
			}
			return fmt.Errorf("insert lottery id=%s: %w", l.ID, err)
		}
		return nil
	})
}

func (r *LotteryRepository) GetByID(ctx context.Context, lotteryID string) (lottery.Lottery, bool, error) {
	return r.getOne(ctx, "get lottery by id", qb.Eq("l.id", lotteryID))
}

func (r *LotteryRepository) GetByIDAndStatus(ctx context.Context, lotteryID string, status lottery.Status) (lottery.Lottery, bool, error) {
	return r.getOne(ctx, "get lottery by id and status",
		qb.Eq("l.id", lotteryID),
		qb.Eq("l.status", string(status)),
	)
}

func (r *LotteryRepository) GetByTypeStatusStartDate(ctx context.Context, t lottery.Type, status lottery.Status, startDate time.Time) (lottery.Lottery, bool, error) {
	return r.getOne(ctx, "get lottery by type, status and start date",
		qb.Eq("l.type", string(t)),
		qb.Eq("l.status", string(status)),
		qb.Eq("l.start_date", lottery.Date(startDate)),
	)
}

func (r *LotteryRepository) List(ctx context.Context, page pagination.Request) (pagination.Page[lottery.Lottery], error) {
	return r.listPage(ctx, "list lotteries", page.WithDefaults(lottery.DefaultListSort...), nil)
}

func (r *LotteryRepository) ListByClient(ctx context.Context, clientID string, page pagination.Request) (pagination.Page[lottery.Lottery], error) {
	return r.listPage(ctx, "list client lotteries", page.WithDefaults(lottery.DefaultClientListSort...), func(b *qb.SelectBuilder) *qb.SelectBuilder {
		return b.Join("JOIN " + clientLotteryTable + " cl ON cl.lottery_id = l.id").
			Where(qb.Eq("cl.client_id", clientID))
	})
}

func (r *LotteryRepository) ListStartingFrom(ctx context.Context, since time.Time) ([]lottery.Lottery, error) {
	query, args, err := qb.Select(lotteryColumns...).From(lotteryTable+" l").
		Where(qb.Gte("l.start_date", lottery.Date(since))).
		OrderBy("l.start_date ASC", "l.type ASC", "l.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select lotteries from date query: %w", err)
	}

	var out []lottery.Lottery
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		var rows []lotteryTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return fmt.Errorf("select lotteries from date: %w", err)
		}
		items, err := r.withParticipants(ctx, rows)
		if err != nil {
			return err
		}
		out = items
		return nil
	})
	return out, err
}

// AddParticipant inserts the membership only while the lottery is CREATED. The
// FOR SHARE subquery waits on a concurrent Complete and re-reads its status.
func (r *LotteryRepository) AddParticipant(ctx context.Context, lotteryID, clientID string) (bool, error) {
	query := `INSERT INTO ` + clientLotteryTable + ` (lottery_id, client_id, joined_at)
SELECT $1, $2, $3
WHERE EXISTS (SELECT 1 FROM ` + lotteryTable + ` WHERE id = $1 AND status = $4 FOR SHARE)
ON CONFLICT (lottery_id, client_id) DO NOTHING`

	return r.execAffected(ctx, "add participant", query, lotteryID, clientID, r.now().UTC(), string(lottery.StatusCreated))
}

func (r *LotteryRepository) RemoveParticipant(ctx context.Context, lotteryID, clientID string) (bool, error) {
	query := `DELETE FROM ` + clientLotteryTable + `
WHERE lottery_id = $1 AND client_id = $2
AND EXISTS (SELECT 1 FROM ` + lotteryTable + ` WHERE id = $1 AND status = $3 FOR SHARE)`

	return r.execAffected(ctx, "remove participant", query, lotteryID, clientID, string(lottery.StatusCreated))
}

// Complete locks the lottery row, re-checks that it is CREATED and that a
// non-empty winnerID is still a member, then flips it to COMPLETED. Membership
// writes hold FOR SHARE on the same row, so none commits between the check and
// the update.
func (r *LotteryRepository) Complete(ctx context.Context, lotteryID, winnerID string) (bool, error) {
	update, updateArgs, err := qb.Update(lotteryTable).
		Set("status", string(lottery.StatusCompleted)).
		Set("winner_id", nullableString(winnerID)).
		Set("updated_at", r.now().UTC()).
		Where(
			qb.Eq("id", lotteryID),
			qb.Eq("status", string(lottery.StatusCreated)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build complete lottery query: %w", err)
	}

	var completed bool
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin complete lottery tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		var status string
		lockQuery := `SELECT status FROM ` + lotteryTable + ` WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &status, lockQuery, lotteryID); err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("lock lottery id=%s: %w", lotteryID, err)
		}
		if status != string(lottery.StatusCreated) {
			return nil
		}

		if winnerID != "" {
			var member bool
			memberQuery := `SELECT EXISTS (SELECT 1 FROM ` + clientLotteryTable + ` WHERE lottery_id = $1 AND client_id = $2)`
			if err := tx.GetContext(ctx, &member, memberQuery, lotteryID, winnerID); err != nil {
				return fmt.Errorf("check winner membership lottery=%s: %w", lotteryID, err)
			}
			if !member {
				return nil
			}
		}

		res, err := tx.ExecContext(ctx, update, updateArgs...)
		if err != nil {
			return fmt.Errorf("complete lottery: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete lottery rows affected: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit complete lottery tx: %w", err)
		}
		completed = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return completed, nil
}

func (r *LotteryRepository) execAffected(ctx context.Context, op, query string, args ...any) (bool, error) {
	var affected int64
	err := r.guard.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s rows affected: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LotteryRepository) getOne(ctx context.Context, op string, conditions ...qb.Condition) (lottery.Lottery, bool, error) {
	query, args, err := qb.Select(lotteryColumns...).From(lotteryTable + " l").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return lottery.Lottery{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var (
		out   lottery.Lottery
		found bool
	)
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		var row lotteryTableModel
		if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		items, err := r.withParticipants(ctx, []lotteryTableModel{row})
		if err != nil {
			return err
		}
		out, found = items[0], true
		return nil
	})
	return out, found, err
}

func (r *LotteryRepository) listPage(
	ctx context.Context,
	op string,
	page pagination.Request,
	scope func(*qb.SelectBuilder) *qb.SelectBuilder,
) (pagination.Page[lottery.Lottery], error) {
	if scope == nil {
		scope = func(b *qb.SelectBuilder) *qb.SelectBuilder { return b }
	}

	countQuery, countArgs, err := scope(qb.Select("COUNT(*)").From(lotteryTable + " l")).ToSQL()
	if err != nil {
		return pagination.Page[lottery.Lottery]{}, fmt.Errorf("build count %s query: %w", op, err)
	}
	query, args, err := scope(qb.Select(lotteryColumns...).From(lotteryTable+" l")).
		OrderBy(orderClauses(page.Sort, lotterySortColumns, "l.id ASC")...).
		Limit(page.Size).
		Offset(page.Offset()).
		ToSQL()
	if err != nil {
		return pagination.Page[lottery.Lottery]{}, fmt.Errorf("build %s query: %w", op, err)
	}

	var out pagination.Page[lottery.Lottery]
	err = r.guard.Do(ctx, func(ctx context.Context) error {
		var total int
		if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
			return fmt.Errorf("count %s: %w", op, err)
		}
		var rows []lotteryTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		items, err := r.withParticipants(ctx, rows)
		if err != nil {
			return err
		}
		out = pagination.NewPage(items, page, total)
		return nil
	})
	return out, err
}

// withParticipants loads memberships for all rows in a single query.
func (r *LotteryRepository) withParticipants(ctx context.Context, rows []lotteryTableModel) ([]lottery.Lottery, error) {
	out := make([]lottery.Lottery, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := qb.Select("lottery_id", "client_id").From(clientLotteryTable).
		Where(qb.In("lottery_id", stringSliceToAny(ids))).
		OrderBy("client_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select participants query: %w", err)
	}

	var members []lotteryMemberTableModel
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	byLottery := make(map[string][]string, len(rows))
	for _, m := range members {
		byLottery[m.LotteryID] = append(byLottery[m.LotteryID], m.ClientID)
	}

	for _, row := range rows {
		out = append(out, lotteryFromRow(row, byLottery[row.ID]))
	}
	return out, nil
}

func lotteryFromRow(row lotteryTableModel, participants []string) lottery.Lottery {
	return lottery.Lottery{
		ID:           row.ID,
		Type:         lottery.Type(strings.ToUpper(strings.TrimSpace(row.Type))),
		Status:       lottery.Status(strings.ToUpper(strings.TrimSpace(row.Status))),
		StartDate:    lottery.Date(row.StartDate),
		WinnerID:     strings.TrimSpace(row.WinnerID.String),
		Participants: participants,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
