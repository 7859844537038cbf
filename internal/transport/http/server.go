package http

import (
	"github.com/gin-gonic/gin"

	"resume-screener/internal/bootstrap"
	"resume-screener/internal/transport/http/handler"
	"resume-screener/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.AuthService, app.ScreenService)
	screeningHandler := handler.NewScreeningHandler(app.ScreenService, app.Config.Screening.MaxUploadBytes)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	protected := v1.Group("")
	protected.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/usage", authHandler.Usage)
	protected.POST("/session", screeningHandler.CreateSession)
	protected.POST("/session/:id/screen", screeningHandler.Screen)
	protected.GET("/session/:id/dashboard", screeningHandler.Dashboard)
	protected.GET("/session/:id/download-all", screeningHandler.DownloadAll)
	protected.DELETE("/session/:id", screeningHandler.ClearSession)

	return router
}
