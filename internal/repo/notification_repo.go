package repo

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

	"github.com/jackc/pgx/v5"
)

const notifColumns = `id, user_id, type, priority, title, message, read, action_url, metadata, created_at, updated_at`

type pgNotificationRepo struct {
	db DB
}

func scanNotification(row pgx.Row) (dom.Notification, error) {
	var n dom.Notification
	var meta []byte
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message,
		&n.Read, &n.ActionURL, &meta, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return dom.Notification{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &n.Metadata); err != nil {
			return dom.Notification{}, err
		}
	}
	return n, nil
}

func (r *pgNotificationRepo) Create(ctx context.Context, n dom.Notification) (dom.Notification, error) {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return dom.Notification{}, err
	}
	query := `
		INSERT INTO notifications (user_id, type, priority, title, message, action_url, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + notifColumns
	out, err := scanNotification(r.db.QueryRow(ctx, query,
		n.UserID, n.Type, n.Priority, n.Title, n.Message, n.ActionURL, meta))
	if err != nil {
		return dom.Notification{}, classifyPG(err)
	}
	return out, nil
}

func (r *pgNotificationRepo) CreateBulk(ctx context.Context, ns []dom.Notification) ([]dom.Notification, error) {
	out := make([]dom.Notification, 0, len(ns))
	for _, n := range ns {
		created, err := r.Create(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *pgNotificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, p dom.Pagination) ([]dom.Notification, int64, error) {
	p = p.Normalize()
	cond := ""
	if unreadOnly {
		cond = " AND read = FALSE"
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`+cond, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notifColumns + ` FROM notifications WHERE user_id = $1` + cond +
		` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []dom.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, n)
	}
	return list, total, rows.Err()
}

func (r *pgNotificationRepo) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE, updated_at = NOW()
		 WHERE user_id = $1 AND id = ANY($2) AND read = FALSE`, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgNotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE, updated_at = NOW()
		 WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgNotificationRepo) Delete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgNotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgNotificationRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID,
	).Scan(&n)
	return n, err
}
