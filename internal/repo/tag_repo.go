package repo

import (
	"context"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type pgTagRepo struct {
	db DB
}

func (r *pgTagRepo) Create(ctx context.Context, name, color string) (dom.Tag, error) {
	query := `
		INSERT INTO tags (name, color)
		VALUES ($1, $2)
		RETURNING id, name, color, usage_count, created_at`
	var t dom.Tag
	err := r.db.QueryRow(ctx, query, name, color).Scan(
		&t.ID, &t.Name, &t.Color, &t.UsageCount, &t.CreatedAt,
	)
	if err != nil {
		return dom.Tag{}, classifyPG(err)
	}
	return t, nil
}

func (r *pgTagRepo) GetByID(ctx context.Context, id int64) (dom.Tag, error) {
	var t dom.Tag
	err := r.db.QueryRow(ctx,
		`SELECT id, name, color, usage_count, created_at FROM tags WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.UsageCount, &t.CreatedAt)
	if err != nil {
		return dom.Tag{}, notFoundIfNoRows(err)
	}
	return t, nil
}

// List returns all tags, most used first.
func (r *pgTagRepo) List(ctx context.Context) ([]dom.Tag, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, color, usage_count, created_at FROM tags ORDER BY usage_count DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Tag
	for rows.Next() {
		var t dom.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.UsageCount, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *pgTagRepo) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM tags WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *pgTagRepo) Attach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_tags (task_id, tag_id) SELECT $1, unnest($2::bigint[])`, taskID, tagIDs)
	if err != nil {
		return classifyPG(err)
	}
	if countUsage {
		return r.AdjustUsage(ctx, tagIDs, 1)
	}
	return nil
}

func (r *pgTagRepo) Detach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`DELETE FROM task_tags WHERE task_id = $1 AND tag_id = ANY($2)`, taskID, tagIDs)
	if err != nil {
		return classifyPG(err)
	}
	if countUsage {
		return r.AdjustUsage(ctx, tagIDs, -1)
	}
	return nil
}

func (r *pgTagRepo) AdjustUsage(ctx context.Context, tagIDs []int64, delta int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE tags SET usage_count = usage_count + $2 WHERE id = ANY($1)`, tagIDs, delta)
	return classifyPG(err)
}
