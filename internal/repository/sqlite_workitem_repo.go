package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ricirt/devlog-poster/internal/domain"
)

const sqliteSelectColumns = `
	SELECT id, sequence, phase, topic, previous_day, today_task, challenges,
	       status, posted_at, created_at, updated_at
	FROM work_items`

// sqliteTimeLayout is fixed width and always written in UTC, so TEXT
// comparison of created_at orders rows chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteWorkItemRepository struct {
	db *sql.DB
}

// NewSQLiteWorkItemRepository returns a WorkItemRepository backed by a SQLite
// database opened with db.OpenSQLite. Intended for single-host use.
func NewSQLiteWorkItemRepository(db *sql.DB) WorkItemRepository {
	return &sqliteWorkItemRepository{db: db}
}

func (r *sqliteWorkItemRepository) FindBySequenceAndStatus(ctx context.Context, sequence int, status domain.Status) (*domain.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectColumns+`
		WHERE sequence = ? AND status = ?
		ORDER BY created_at ASC
		LIMIT 1`, sequence, string(status))

	w, err := scanSQLiteWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find by sequence", err)
	}
	return w, nil
}

func (r *sqliteWorkItemRepository) FindNextPending(ctx context.Context) (*domain.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectColumns+`
		WHERE status = 'pending'
		ORDER BY sequence ASC, created_at ASC
		LIMIT 1`)

	w, err := scanSQLiteWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find next pending", err)
	}
	return w, nil
}

func (r *sqliteWorkItemRepository) InsertMany(ctx context.Context, items []*domain.WorkItem) error {
	if err := checkUniqueSequences(items); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, w := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO work_items
				(id, sequence, phase, topic, previous_day, today_task, challenges,
				 status, posted_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, w.Sequence, w.Phase, w.Topic, w.PreviousDaySummary, w.TodayTask, w.Challenges,
			string(w.Status), formatNullTime(w.PostedAt),
			w.CreatedAt.UTC().Format(sqliteTimeLayout), w.UpdatedAt.UTC().Format(sqliteTimeLayout),
		)
		if err != nil {
			if isSQLiteUniqueViolation(err) {
				return domain.ErrDuplicateSequence
			}
			return storeErr("insert work item", fmt.Errorf("sequence %d: %w", w.Sequence, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit insert", err)
	}
	return nil
}

func (r *sqliteWorkItemRepository) Save(ctx context.Context, w *domain.WorkItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE work_items
		SET sequence = ?, phase = ?, topic = ?, previous_day = ?, today_task = ?,
		    challenges = ?, status = ?, posted_at = ?, updated_at = ?
		WHERE id = ?`,
		w.Sequence, w.Phase, w.Topic, w.PreviousDaySummary, w.TodayTask,
		w.Challenges, string(w.Status), formatNullTime(w.PostedAt),
		w.UpdatedAt.UTC().Format(sqliteTimeLayout), w.ID,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return domain.ErrDuplicateSequence
		}
		return storeErr("save work item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("save work item", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sqliteWorkItemRepository) MarkPosted(ctx context.Context, id string, at time.Time) error {
	ts := at.UTC().Format(sqliteTimeLayout)
	res, err := r.db.ExecContext(ctx, `
		UPDATE work_items
		SET status = 'posted', posted_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`, ts, ts, id)
	if err != nil {
		return storeErr("mark posted", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("mark posted", err)
	}
	if n == 0 {
		return domain.ErrAlreadyPosted
	}
	return nil
}

func (r *sqliteWorkItemRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.WorkItem, error) {
	query := sqliteSelectColumns
	var args []any
	if f.Status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*f.Status))
	}
	query += " ORDER BY sequence ASC, created_at ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list work items", err)
	}
	defer rows.Close()

	var items []*domain.WorkItem
	for rows.Next() {
		w, err := scanSQLiteWorkItem(rows)
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

func (r *sqliteWorkItemRepository) Counts(ctx context.Context) (pending, posted int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'posted' THEN 1 ELSE 0 END), 0)
		FROM work_items`).Scan(&pending, &posted)
	if err != nil {
		return 0, 0, storeErr("count work items", err)
	}
	return pending, posted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var (
		w                  domain.WorkItem
		status             string
		postedAt           sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&w.ID, &w.Sequence, &w.Phase, &w.Topic, &w.PreviousDaySummary,
		&w.TodayTask, &w.Challenges, &status, &postedAt, &createdAt, &updated,
	)
	if err != nil {
		return nil, err
	}
	w.Status = domain.Status(status)

	if w.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if w.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if postedAt.Valid && postedAt.String != "" {
		t, err := time.Parse(sqliteTimeLayout, postedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse posted_at: %w", err)
		}
		w.PostedAt = &t
	}
	return &w, nil
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func isSQLiteUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
