package repo

import (
	"fmt"
	"strings"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

// sortExprs whitelists sortable columns. Priority sorts by enum weight,
// not alphabetically.
var sortExprs = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"due_date":   "due_date",
	"title":      "title",
	"status":     "status",
	"priority": `CASE priority
		WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3
		WHEN 'URGENT' THEN 4 WHEN 'CRITICAL' THEN 5 END`,
}

// buildTaskListQuery assembles the filtered SELECT and its matching COUNT.
// Both share one args slice; the SELECT additionally takes LIMIT/OFFSET
// appended last.
func buildTaskListQuery(f dom.TaskFilter, p dom.Pagination, ord dom.SortOrder) (selectSQL, countSQL string, args []any) {
	conds := []string{}
	if !f.IncludeArchived {
		conds = append(conds, "archived_at IS NULL")
	}
	if len(f.Statuses) > 0 {
		vals := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		args = append(args, vals)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(f.Priorities) > 0 {
		vals := make([]string, len(f.Priorities))
		for i, pr := range f.Priorities {
			vals[i] = string(pr)
		}
		args = append(args, vals)
		conds = append(conds, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if f.AssigneeID != nil {
		args = append(args, *f.AssigneeID)
		conds = append(conds, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if f.DueFrom != nil {
		args = append(args, *f.DueFrom)
		conds = append(conds, fmt.Sprintf("due_date >= $%d", len(args)))
	}
	if f.DueTo != nil {
		args = append(args, *f.DueTo)
		conds = append(conds, fmt.Sprintf("due_date <= $%d", len(args)))
	}
	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = tasks.id AND tt.tag_id = ANY($%d))", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countSQL = "SELECT COUNT(*) FROM tasks" + where

	expr, ok := sortExprs[ord.Field]
	if !ok {
		expr = "created_at"
		ord.Desc = true
	}
	dir := "ASC"
	if ord.Desc {
		dir = "DESC"
	}
	selectSQL = fmt.Sprintf(
		"SELECT %s FROM tasks%s ORDER BY %s %s, id %s LIMIT %d OFFSET %d",
		taskColumns, where, expr, dir, dir, p.PageSize, p.Offset(),
	)
	return selectSQL, countSQL, args
}
