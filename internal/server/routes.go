package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(NewEchoLogger(s.logger))
	e.Use(otelecho.Middleware("immocanvas-api"))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-User-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)
	e.GET("/api/presets", s.ListPresets)

	var designGroup = e.Group("/api/designs", s.AuthMiddleware)
	designGroup.GET("", s.ListDesigns)
	designGroup.POST("", s.SaveDesign)
	designGroup.GET("/:id", s.GetDesignByID)
	designGroup.DELETE("/:id", s.DeleteDesign)

	var estateGroup = e.Group("/api/estates", s.AuthMiddleware)
	estateGroup.GET("", s.ListEstates)
	estateGroup.GET("/images", s.ListEstateImagesBatch)
	estateGroup.GET("/:id/images", s.ListEstateImages)
	estateGroup.GET("/:id/palette", s.GetEstatePalette)

	e.GET("/api/addresses", s.ListAddresses, s.AuthMiddleware)
	e.POST("/api/onoffice/test", s.TestConnection, s.AuthMiddleware)

	return e
}
