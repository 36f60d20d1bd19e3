package repo

import (
	"context"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type pgHistoryRepo struct {
	db DB
}

func (r *pgHistoryRepo) Append(ctx context.Context, h dom.TaskHistory) (dom.TaskHistory, error) {
	query := `
		INSERT INTO task_history (task_id, user_id, action, changes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, task_id, user_id, action, changes, created_at`
	var out dom.TaskHistory
	err := r.db.QueryRow(ctx, query, h.TaskID, h.UserID, h.Action, h.Changes).Scan(
		&out.ID, &out.TaskID, &out.UserID, &out.Action, &out.Changes, &out.CreatedAt,
	)
	if err != nil {
		return dom.TaskHistory{}, classifyPG(err)
	}
	return out, nil
}

func (r *pgHistoryRepo) ListByTask(ctx context.Context, taskID int64) ([]dom.TaskHistory, error) {
	query := `
		SELECT id, task_id, user_id, action, changes, created_at
		FROM task_history WHERE task_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.TaskHistory
	for rows.Next() {
		var h dom.TaskHistory
		if err := rows.Scan(&h.ID, &h.TaskID, &h.UserID, &h.Action, &h.Changes, &h.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (r *pgHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
