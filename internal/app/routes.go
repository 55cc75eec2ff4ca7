package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"vidtube/internal/auth"
	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/handlers"
	"vidtube/internal/repo"
	"vidtube/internal/service"
)

// Deps are the live connections the routes are built on.
type Deps struct {
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Assets service.AssetStore
	Log    *zap.Logger
}

// Handlers groups the API handlers mounted by RegisterAPI.
type Handlers struct {
	Users         *handlers.UserHandler
	Videos        *handlers.VideoHandler
	Subscriptions *handlers.SubscriptionHandler
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, d Deps) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, d.DB, d.Redis))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	userRepo := repo.NewPGUserRepo(d.DB)
	tokens := auth.NewTokenService(userRepo, auth.TokenConfig{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL.Duration(),
		RefreshTTL:    cfg.Auth.RefreshTTL.Duration(),
	})
	channelCache := cache.NewChannelCache(d.Redis, cfg.Redis.DefaultTTL.Duration())
	videoCache := cache.NewVideoCache(d.Redis, cfg.Redis.DefaultTTL.Duration())

	userSvc := service.NewUserService(userRepo, tokens, d.Assets, channelCache, d.Log)
	videoSvc := service.NewVideoService(repo.NewPGVideoRepo(d.DB), userRepo, d.Assets, videoCache, d.Log)
	subSvc := service.NewSubscriptionService(repo.NewPGSubscriptionRepo(d.DB), userRepo, channelCache, d.Log)

	uploads := handlers.NewUploads(cfg.HTTP.UploadDir, cfg.HTTP.MaxUploadBytes, d.Log)
	RegisterAPI(r.Group("/api/v1"), auth.RequireUser(tokens, userRepo), Handlers{
		Users: handlers.NewUserHandler(userSvc, uploads, handlers.CookieConfig{
			Secure:     cfg.Auth.CookieSecure,
			AccessTTL:  cfg.Auth.AccessTTL.Duration(),
			RefreshTTL: cfg.Auth.RefreshTTL.Duration(),
		}),
		Videos:        handlers.NewVideoHandler(videoSvc, uploads),
		Subscriptions: handlers.NewSubscriptionHandler(subSvc),
	})
}

// RegisterAPI mounts the /users, /videos and /subscriptions routes.
// requireUser guards every route that needs a logged-in caller.
func RegisterAPI(api *gin.RouterGroup, requireUser gin.HandlerFunc, h Handlers) {
	registerUserRoutes(api.Group("/users"), requireUser, h.Users)
	registerVideoRoutes(api.Group("/videos", requireUser), h.Videos)
	registerSubscriptionRoutes(api.Group("/subscriptions", requireUser), h.Subscriptions)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "VidTube API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

// healthHandler pings Postgres and Redis.
func healthHandler(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"postgres": "ok", "redis": "ok"}
		ok := true
		if err := db.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			ok = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			ok = false
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ok": ok, "env": cfg.App.Env, "checks": checks})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerUserRoutes(users *gin.RouterGroup, requireUser gin.HandlerFunc, h *handlers.UserHandler) {
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.RefreshToken)

	secured := users.Group("", requireUser)
	secured.POST("/logout", h.Logout)
	secured.POST("/change-password", h.ChangePassword)
	secured.GET("/current-user", h.CurrentUser)
	secured.PATCH("/update-account", h.UpdateAccount)
	secured.PATCH("/avatar", h.UpdateAvatar)
	secured.PATCH("/cover-image", h.UpdateCoverImage)
	secured.GET("/c/:username", h.ChannelProfile)
	secured.GET("/history", h.WatchHistory)
}

func registerVideoRoutes(videos *gin.RouterGroup, h *handlers.VideoHandler) {
	videos.GET("", h.List)
	videos.POST("", h.Publish)
	videos.GET("/:videoId", h.GetByID)
	videos.PATCH("/:videoId", h.Update)
	videos.DELETE("/:videoId", h.Delete)
	videos.PATCH("/toggle/publish/:videoId", h.TogglePublish)
}

func registerSubscriptionRoutes(subs *gin.RouterGroup, h *handlers.SubscriptionHandler) {
	subs.POST("/c/:channelId", h.Toggle)
}
