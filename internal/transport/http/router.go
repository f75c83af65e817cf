package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/nbatyrov/contactbook/internal/repository"
	"github.com/nbatyrov/contactbook/internal/token"
	"github.com/nbatyrov/contactbook/internal/transport/http/handler"
	"github.com/nbatyrov/contactbook/internal/transport/http/middleware"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AuthHandler    *handler.AuthHandler
	ContactHandler *handler.ContactHandler
	TokenIssuer    *token.Issuer
	UserRepo       repository.UserRepository

	// AvatarDir, when non-empty, is served under /avatars (disk avatar
	// store). Empty when avatars live in S3.
	AvatarDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(cfg.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(cfg.TokenIssuer, cfg.UserRepo)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", cfg.AuthHandler.Register)
	users.POST("/verify", cfg.AuthHandler.ResendVerification)
	users.GET("/verify/:token", cfg.AuthHandler.ConfirmVerification)
	users.POST("/login", cfg.AuthHandler.Login)
	users.GET("/logout", authMW, cfg.AuthHandler.Logout)
	users.GET("/current", authMW, cfg.AuthHandler.Current)
	users.PATCH("/avatars", authMW, cfg.AuthHandler.UpdateAvatar)

	contacts := api.Group("/contacts", authMW)
	contacts.GET("", cfg.ContactHandler.List)
	contacts.POST("", cfg.ContactHandler.Create)
	contacts.GET("/:id", cfg.ContactHandler.GetByID)
	contacts.PUT("/:id", cfg.ContactHandler.Update)
	contacts.PATCH("/:id/favorite", cfg.ContactHandler.UpdateFavorite)
	contacts.DELETE("/:id", cfg.ContactHandler.Delete)

	if cfg.AvatarDir != "" {
		r.Static("/avatars", cfg.AvatarDir)
	}

	return r
}
