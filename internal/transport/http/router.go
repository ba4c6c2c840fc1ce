package httptransport

import (
	"log/slog"

	"github.com/avsoftware/notes-backend/internal/transport/http/handler"
	"github.com/avsoftware/notes-backend/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, noteHandler *handler.NoteHandler, authenticator middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// Protected note routes
	notes := r.Group("/notes", middleware.Auth(authenticator))
	notes.POST("", noteHandler.Create)
	notes.GET("", noteHandler.List)
	notes.DELETE("/:id", noteHandler.Delete)

	return r
}
