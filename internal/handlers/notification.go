package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/k-iizuka000/ai-todo-sub007/internal/auth"
	"github.com/k-iizuka000/ai-todo-sub007/internal/bus"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/dto"
	"github.com/k-iizuka000/ai-todo-sub007/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
	bus *bus.Bus
}

func NewNotificationHandler(svc *service.NotificationService, b *bus.Bus) *NotificationHandler {
	return &NotificationHandler{svc: svc, bus: b}
}

// List godoc
// @Summary      List notifications for the current user, newest first
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Param        unread     query  bool  false  "Only unread"
// @Param        page       query  int   false  "Page (1-indexed)"
// @Param        page_size  query  int   false  "Page size (max 100)"
// @Success      200  {object}  dto.ListNotificationsResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	page := dom.Pagination{}
	page.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	page.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, meta, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c),
		c.Query("unread") == "true", page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Items: items, Meta: meta})
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// MarkRead godoc
// @Summary      Mark notifications as read
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.NotificationIDsRequest  true  "Notification IDs"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /notifications/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req dto.NotificationIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.MarkRead(c.Request.Context(), auth.UserIDFromContext(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// MarkAllRead godoc
// @Summary      Mark every unread notification as read
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// Delete godoc
// @Summary      Delete notifications
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.NotificationIDsRequest  true  "Notification IDs"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /notifications [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	var req dto.NotificationIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Broadcast godoc
// @Summary      Send a notification to many users (all when user_ids empty)
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.BroadcastNotificationRequest  true  "Broadcast body"
// @Success      201   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.Broadcast(c.Request.Context(), req.UserIDs, service.CreateInput{
		Type:      dom.NotificationType(req.Type),
		Priority:  dom.NotificationPriority(req.Priority),
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": int64(len(created))})
}

// Cleanup godoc
// @Summary      Delete read notifications older than max_age_days (default 30, cap 365)
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/cleanup [post]
func (h *NotificationHandler) Cleanup(c *gin.Context) {
	var req dto.CleanupNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.Cleanup(c.Request.Context(), time.Duration(req.MaxAgeDays)*24*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Stream godoc
// @Summary      Server-sent events stream of new notifications
// @Tags         notifications
// @Produce      text/event-stream
// @Security     CookieAuth
// @Router       /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	sub := h.bus.Subscribe(auth.UserIDFromContext(c))
	defer sub.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
