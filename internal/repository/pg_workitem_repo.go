package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/devlog-poster/internal/domain"
)

const pgSelectColumns = `
	SELECT id, sequence, phase, topic, previous_day, today_task, challenges,
	       status, posted_at, created_at, updated_at
	FROM work_items`

type pgWorkItemRepository struct {
	pool *pgxpool.Pool
}

// NewPgWorkItemRepository returns a WorkItemRepository backed by PostgreSQL.
func NewPgWorkItemRepository(pool *pgxpool.Pool) WorkItemRepository {
	return &pgWorkItemRepository{pool: pool}
}

func (r *pgWorkItemRepository) FindBySequenceAndStatus(ctx context.Context, sequence int, status domain.Status) (*domain.WorkItem, error) {
	row := r.pool.QueryRow(ctx, pgSelectColumns+`
		WHERE sequence = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT 1`, sequence, status)

	w, err := scanWorkItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find by sequence", err)
	}
	return w, nil
}

func (r *pgWorkItemRepository) FindNextPending(ctx context.Context) (*domain.WorkItem, error) {
	row := r.pool.QueryRow(ctx, pgSelectColumns+`
		WHERE status = 'pending'
		ORDER BY sequence ASC, created_at ASC
		LIMIT 1`)

	w, err := scanWorkItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find next pending", err)
	}
	return w, nil
}

func (r *pgWorkItemRepository) InsertMany(ctx context.Context, items []*domain.WorkItem) error {
	if err := checkUniqueSequences(items); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, w := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO work_items
				(id, sequence, phase, topic, previous_day, today_task, challenges,
				 status, posted_at, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			w.ID, w.Sequence, w.Phase, w.Topic, w.PreviousDaySummary, w.TodayTask, w.Challenges,
			w.Status, w.PostedAt, w.CreatedAt, w.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrDuplicateSequence
			}
			return storeErr("insert work item", fmt.Errorf("sequence %d: %w", w.Sequence, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit insert", err)
	}
	return nil
}

func (r *pgWorkItemRepository) Save(ctx context.Context, w *domain.WorkItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE work_items
		SET sequence = $1, phase = $2, topic = $3, previous_day = $4, today_task = $5,
		    challenges = $6, status = $7, posted_at = $8, updated_at = $9
		WHERE id = $10`,
		w.Sequence, w.Phase, w.Topic, w.PreviousDaySummary, w.TodayTask,
		w.Challenges, w.Status, w.PostedAt, w.UpdatedAt, w.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateSequence
		}
		return storeErr("save work item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgWorkItemRepository) MarkPosted(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE work_items
		SET status = 'posted', posted_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`, at, id)
	if err != nil {
		return storeErr("mark posted", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyPosted
	}
	return nil
}

func (r *pgWorkItemRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.WorkItem, error) {
	query := pgSelectColumns
	var args []any
	if f.Status != nil {
		args = append(args, *f.Status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY sequence ASC, created_at ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list work items", err)
	}
	defer rows.Close()

	var items []*domain.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, storeErr("scan work item", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list work items", err)
	}
	return items, nil
}

func (r *pgWorkItemRepository) Counts(ctx context.Context) (pending, posted int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'posted')
		FROM work_items`).Scan(&pending, &posted)
	if err != nil {
		return 0, 0, storeErr("count work items", err)
	}
	return pending, posted, nil
}

// scanWorkItem reads a single work item row from any pgx row type.
func scanWorkItem(row pgx.Row) (*domain.WorkItem, error) {
	var w domain.WorkItem
	err := row.Scan(
		&w.ID, &w.Sequence, &w.Phase, &w.Topic, &w.PreviousDaySummary,
		&w.TodayTask, &w.Challenges, &w.Status, &w.PostedAt,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
