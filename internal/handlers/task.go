package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/k-iizuka000/ai-todo-sub007/internal/auth"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/dto"
	"github.com/k-iizuka000/ai-todo-sub007/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), service.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         dom.TaskStatus(req.Status),
		Priority:       dom.TaskPriority(req.Priority),
		ProjectID:      req.ProjectID,
		AssigneeID:     req.AssigneeID,
		ParentID:       req.ParentID,
		DueDate:        req.DueDate.Ptr(),
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		TagIDs:         req.TagIDs,
	}, auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// List godoc
// @Summary      List tasks with filters and pagination
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        status            query  string  false  "Comma-separated statuses"
// @Param        priority          query  string  false  "Comma-separated priorities"
// @Param        project_id        query  int     false  "Project ID"
// @Param        assignee_id       query  int     false  "Assignee user ID"
// @Param        tags              query  string  false  "Comma-separated tag IDs (membership in any)"
// @Param        q                 query  string  false  "Search in title/description"
// @Param        due_from          query  string  false  "Due date lower bound (RFC3339 or YYYY-MM-DD)"
// @Param        due_to            query  string  false  "Due date upper bound"
// @Param        include_archived  query  bool    false  "Include archived tasks"
// @Param        page              query  int     false  "Page (1-indexed)"
// @Param        page_size         query  int     false  "Page size (max 100)"
// @Param        sort              query  string  false  "Sort field"
// @Param        order             query  string  false  "asc or desc"
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      400  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	filter, page, sort, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, meta, err := h.svc.List(c.Request.Context(), filter, page, sort)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(items), Meta: meta})
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Update godoc
// @Summary      Update a task (partial; tag_ids replaces the whole set)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		ProjectID:      req.ProjectID,
		AssigneeID:     req.AssigneeID,
		ParentID:       req.ParentID,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.TagIDs,
	}
	if req.Status != nil {
		st := dom.TaskStatus(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		pr := dom.TaskPriority(*req.Priority)
		in.Priority = &pr
	}
	if req.DueDate != nil {
		in.DueDate = req.DueDate.Ptr()
	}
	t, err := h.svc.Update(c.Request.Context(), id, in, auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// UpdateStatus godoc
// @Summary      Change only the task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.UpdateTaskStatusRequest  true  "New status"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.UpdateStatus(c.Request.Context(), id, dom.TaskStatus(req.Status), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Archive godoc
// @Summary      Archive a task (soft delete)
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/archive [post]
func (h *TaskHandler) Archive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Archive(c.Request.Context(), id, auth.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary      Permanently delete a task
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, auth.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Duplicate godoc
// @Summary      Duplicate a task (fresh history, tags copied)
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      201  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/duplicate [post]
func (h *TaskHandler) Duplicate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Duplicate(c.Request.Context(), id, auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// History godoc
// @Summary      Audit history for a task, newest first
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.ListTaskHistoryResponse
// @Router       /tasks/{id}/history [get]
func (h *TaskHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TaskHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.TaskHistoryResponse{
			ID: e.ID, TaskID: e.TaskID, UserID: e.UserID,
			Action: string(e.Action), Changes: e.Changes, CreatedAt: e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, dto.ListTaskHistoryResponse{Items: out})
}

// Stats godoc
// @Summary      Task counts by status and priority for the current user
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        project_id  query  int  false  "Restrict to one project"
// @Success      200  {object}  domain.TaskStats
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	var projectID *int64
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		projectID = &id
	}
	stats, err := h.svc.Stats(c.Request.Context(), auth.UserIDFromContext(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CleanupHistory godoc
// @Summary      Delete audit entries older than max_age_days (default 90)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]int64
// @Router       /tasks/history/cleanup [post]
func (h *TaskHandler) CleanupHistory(c *gin.Context) {
	var req dto.CleanupHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.CleanupHistory(c.Request.Context(), time.Duration(req.MaxAgeDays)*24*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func parseListQuery(c *gin.Context) (dom.TaskFilter, dom.Pagination, dom.SortOrder, error) {
	var f dom.TaskFilter
	for _, raw := range splitCSV(c.Query("status")) {
		s := dom.TaskStatus(strings.ToUpper(raw))
		if !s.Valid() {
			return f, dom.Pagination{}, dom.SortOrder{}, errBadQuery("status", raw)
		}
		f.Statuses = append(f.Statuses, s)
	}
	for _, raw := range splitCSV(c.Query("priority")) {
		p := dom.TaskPriority(strings.ToUpper(raw))
		if !p.Valid() {
			return f, dom.Pagination{}, dom.SortOrder{}, errBadQuery("priority", raw)
		}
		f.Priorities = append(f.Priorities, p)
	}
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, dom.Pagination{}, dom.SortOrder{}, errBadQuery("project_id", raw)
		}
		f.ProjectID = &id
	}
	if raw := c.Query("assignee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, dom.Pagination{}, dom.SortOrder{}, errBadQuery("assignee_id", raw)
		}
		f.AssigneeID = &id
	}
	for _, raw := range splitCSV(c.Query("tags")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, dom.Pagination{}, dom.SortOrder{}, errBadQuery("tags", raw)
		}
		f.TagIDs = append(f.TagIDs, id)
	}
	var err error
	if f.DueFrom, err = parseQueryTime(c.Query("due_from")); err != nil {
		return f, dom.Pagination{}, dom.SortOrder{}, err
	}
	if f.DueTo, err = parseQueryTime(c.Query("due_to")); err != nil {
		return f, dom.Pagination{}, dom.SortOrder{}, err
	}
	f.Search = c.Query("q")
	f.IncludeArchived = c.Query("include_archived") == "true"

	page := dom.Pagination{}
	page.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	page.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	sort := dom.SortOrder{Field: c.Query("sort"), Desc: c.DefaultQuery("order", "desc") != "asc"}
	return f, page, sort, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseQueryTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errBadQuery("date", raw)
}

type queryError struct{ param, value string }

func (e queryError) Error() string { return "invalid " + e.param + ": " + e.value }

func errBadQuery(param, value string) error { return queryError{param, value} }

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		ProjectID:      t.ProjectID,
		AssigneeID:     t.AssigneeID,
		ParentID:       t.ParentID,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		ArchivedAt:     t.ArchivedAt,
		TagIDs:         t.TagIDs,
		CreatedBy:      t.CreatedBy,
		UpdatedBy:      t.UpdatedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
