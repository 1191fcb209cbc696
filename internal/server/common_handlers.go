package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/immocanvas/immocanvas/internal/canvas"
)

func (s *Server) healthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.server.Health())
}

func (s *Server) ListPresets(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, Res{Success: true, Data: canvas.Presets()})
}
