package router

import (
	"net/http"
	"path/filepath"
	"strings"

	"mvp-tweet/internal/config"
	"mvp-tweet/internal/database"
	"mvp-tweet/internal/handler"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/presence"
	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin engine, static pages and the JSON API.
// The presence tracker is owned by the caller and shared by all requests.
func SetupRouter(cfg *config.Config, store *database.Store, tracker *presence.Tracker) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), gin.Recovery())

	// static files: login page at "/", feed at "/dashboard"
	publicDir := cfg.Server.PublicDir
	if publicDir == "" {
		publicDir = "./public"
	}
	r.StaticFile("/", filepath.Join(publicDir, "index.html"))
	r.StaticFile("/dashboard", filepath.Join(publicDir, "dashboard.html"))
	r.Static("/static", filepath.Join(publicDir, "static"))

	r.GET("/health", handler.Health)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found")
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(store, tracker, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	postHandler := handler.NewPostHandler(store)
	api.GET("/posts", postHandler.ListPosts)

	userHandler := handler.NewUserHandler(store, tracker)
	api.GET("/users", userHandler.ListUsers)
	api.GET("/active-users", userHandler.ListActiveUsers)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))

	protected.POST("/posts", postHandler.CreatePost)
	protected.GET("/me", handler.GetMe)

	exportHandler := handler.NewExportHandler(store)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
