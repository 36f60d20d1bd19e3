package app

import (
	"log/slog"
	"time"

	"github.com/k-iizuka000/ai-todo-sub007/internal/auth"
	"github.com/k-iizuka000/ai-todo-sub007/internal/bus"
	"github.com/k-iizuka000/ai-todo-sub007/internal/cache"
	"github.com/k-iizuka000/ai-todo-sub007/internal/config"
	"github.com/k-iizuka000/ai-todo-sub007/internal/handlers"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
	"github.com/k-iizuka000/ai-todo-sub007/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, log *slog.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	store := repo.NewPGStore(db, cfg.PG.TxTimeout.Duration())
	taskCache := cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	eventBus := bus.New()

	sessionStore := auth.NewStore(rdb, 24*time.Hour)
	userSvc := service.NewUserService(store)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	notifSvc := service.NewNotificationService(store, eventBus, log)
	taskSvc := service.NewTaskService(store, taskCache, notifSvc, log)
	tagSvc := service.NewTagService(store, taskCache)
	projectSvc := service.NewProjectService(store)

	protected := api.Group("", auth.RequireSession(sessionStore))
	registerTaskRoutes(protected, handlers.NewTaskHandler(taskSvc))
	registerTagRoutes(protected, handlers.NewTagHandler(tagSvc, projectSvc))
	registerNotificationRoutes(protected, handlers.NewNotificationHandler(notifSvc, eventBus))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Task Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/stats", h.Stats)
	api.POST("/tasks/history/cleanup", h.CleanupHistory)
	api.GET("/tasks/:id", h.GetByID)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.PATCH("/tasks/:id/status", h.UpdateStatus)
	api.POST("/tasks/:id/archive", h.Archive)
	api.POST("/tasks/:id/duplicate", h.Duplicate)
	api.GET("/tasks/:id/history", h.History)
}

func registerTagRoutes(api *gin.RouterGroup, h *handlers.TagHandler) {
	api.POST("/tags", h.CreateTag)
	api.GET("/tags", h.ListTags)
	api.POST("/projects", h.CreateProject)
	api.GET("/projects", h.ListProjects)
}

func registerNotificationRoutes(api *gin.RouterGroup, h *handlers.NotificationHandler) {
	api.GET("/notifications", h.List)
	api.DELETE("/notifications", h.Delete)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/read", h.MarkRead)
	api.POST("/notifications/read-all", h.MarkAllRead)
	api.POST("/notifications/broadcast", h.Broadcast)
	api.POST("/notifications/cleanup", h.Cleanup)
	api.GET("/notifications/stream", h.Stream)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}
