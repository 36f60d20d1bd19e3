package repo

import (
	"context"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, title, description, status, priority, project_id, assignee_id, parent_id,
	due_date, estimated_hours, actual_hours, archived_at, created_by, updated_by, created_at, updated_at`

type pgTaskRepo struct {
	db DB
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.ProjectID, &t.AssigneeID, &t.ParentID,
		&t.DueDate, &t.EstimatedHours, &t.ActualHours, &t.ArchivedAt, &t.CreatedBy, &t.UpdatedBy,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *pgTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, project_id, assignee_id, parent_id,
			due_date, estimated_hours, actual_hours, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, t.ProjectID, t.AssigneeID, t.ParentID,
		t.DueDate, t.EstimatedHours, t.ActualHours, t.CreatedBy,
	))
	if err != nil {
		return dom.Task{}, classifyPG(err)
	}
	return out, nil
}

func (r *pgTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return dom.Task{}, notFoundIfNoRows(err)
	}
	t.TagIDs, err = r.TagIDs(ctx, t.ID)
	if err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

func (r *pgTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, project_id = $6,
			assignee_id = $7, parent_id = $8, due_date = $9, estimated_hours = $10, actual_hours = $11,
			archived_at = $12, updated_by = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.ProjectID,
		t.AssigneeID, t.ParentID, t.DueDate, t.EstimatedHours, t.ActualHours,
		t.ArchivedAt, t.UpdatedBy,
	))
	if err != nil {
		return dom.Task{}, classifyPG(notFoundIfNoRows(err))
	}
	return out, nil
}

func (r *pgTaskRepo) Delete(ctx context.Context, id int64) error {
	// task_tags rows go with the task (ON DELETE CASCADE); history stays.
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return classifyPG(err)
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *pgTaskRepo) List(ctx context.Context, f dom.TaskFilter, p dom.Pagination, ord dom.SortOrder) ([]dom.Task, int64, error) {
	p = p.Normalize()
	selectSQL, countSQL, args := buildTaskListQuery(f, p, ord)

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	tags, err := r.TagIDsForTasks(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].TagIDs = tags[list[i].ID]
	}
	return list, total, nil
}

func (r *pgTaskRepo) TagIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tag_id FROM task_tags WHERE task_id = $1 ORDER BY tag_id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgTaskRepo) TagIDsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT task_id, tag_id FROM task_tags WHERE task_id = ANY($1) ORDER BY task_id, tag_id`, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var taskID, tagID int64
		if err := rows.Scan(&taskID, &tagID); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], tagID)
	}
	return out, rows.Err()
}

func (r *pgTaskRepo) Stats(ctx context.Context, userID int64, projectID *int64) (dom.TaskStats, error) {
	query := `
		SELECT status, priority, COUNT(*)
		FROM tasks
		WHERE archived_at IS NULL
		  AND (created_by = $1 OR assignee_id = $1)
		  AND ($2::bigint IS NULL OR project_id = $2)
		GROUP BY status, priority`
	rows, err := r.db.Query(ctx, query, userID, projectID)
	if err != nil {
		return dom.TaskStats{}, err
	}
	defer rows.Close()
	stats := dom.TaskStats{
		ByStatus:   make(map[dom.TaskStatus]int64),
		ByPriority: make(map[dom.TaskPriority]int64),
	}
	for rows.Next() {
		var st dom.TaskStatus
		var pr dom.TaskPriority
		var n int64
		if err := rows.Scan(&st, &pr, &n); err != nil {
			return dom.TaskStats{}, err
		}
		stats.Total += n
		stats.ByStatus[st] += n
		stats.ByPriority[pr] += n
	}
	return stats, rows.Err()
}
