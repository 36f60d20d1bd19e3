package repo

import (
	"context"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type pgProjectRepo struct {
	db DB
}

func (r *pgProjectRepo) Create(ctx context.Context, p dom.Project) (dom.Project, error) {
	query := `
		INSERT INTO projects (name, color, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, color, owner_id, created_at`
	var out dom.Project
	err := r.db.QueryRow(ctx, query, p.Name, p.Color, p.OwnerID).Scan(
		&out.ID, &out.Name, &out.Color, &out.OwnerID, &out.CreatedAt,
	)
	if err != nil {
		return dom.Project{}, classifyPG(err)
	}
	return out, nil
}

func (r *pgProjectRepo) List(ctx context.Context) ([]dom.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, color, owner_id, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Project
	for rows.Next() {
		var p dom.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
