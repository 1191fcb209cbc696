package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/immocanvas/immocanvas/internal/canvas"
	"github.com/immocanvas/immocanvas/internal/usecase"
)

type Design struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	CanvasData json.RawMessage `json:"canvas_data,omitempty"`
	CanvasSize *canvas.Preset  `json:"canvas_size,omitempty"`
	Layers     []canvas.Layer  `json:"layers,omitempty"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func convertDesign(d usecase.Design) Design {
	return Design{
		ID:         d.ID.String(),
		UserID:     d.UserID.String(),
		Name:       d.Name,
		CanvasData: d.CanvasData,
		CanvasSize: d.CanvasSize,
		Layers:     d.Layers,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) ListDesigns(ctx echo.Context) error {
	userID, ok := userIDFromContext(ctx.Request().Context())
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Success: false, Message: "Missing user identity"})
	}

	designs, total, err := s.server.ListDesigns(ctx.Request().Context(), userID)
	if err != nil {
		s.logger.Error("failed to list designs", slog.String("err", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, Res{Success: false, Message: "Failed to fetch designs"})
	}

	data := make([]Design, 0, len(designs))
	for _, d := range designs {
		// canvas_data is omitted from list responses to keep them light
		d.CanvasData = nil
		data = append(data, convertDesign(d))
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: data, Meta: &Meta{Total: total}})
}

type GetDesignByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetDesignByID(ctx echo.Context) error {
	var req GetDesignByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	userID, ok := userIDFromContext(ctx.Request().Context())
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Success: false, Message: "Missing user identity"})
	}

	id, _ := uuid.Parse(req.ID)

	d, err := s.server.GetDesign(ctx.Request().Context(), userID, id)
	if err != nil {
		return s.designError(ctx, err, "Failed to fetch design by ID")
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: convertDesign(d)})
}

type SaveDesignRequest struct {
	DesignID   *string         `json:"designId" validate:"omitempty,uuid"`
	Name       *string         `json:"name"`
	CanvasData json.RawMessage `json:"canvasData"`
	CanvasSize *canvas.Preset  `json:"canvasSize"`
	Layers     *[]canvas.Layer `json:"layers"`
}

// SaveDesign upserts: a request carrying designId updates that design,
// one without creates a new one.
func (s *Server) SaveDesign(ctx echo.Context) error {
	var req SaveDesignRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	userID, ok := userIDFromContext(ctx.Request().Context())
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Success: false, Message: "Missing user identity"})
	}

	var designID *uuid.UUID
	if req.DesignID != nil {
		id, _ := uuid.Parse(*req.DesignID)
		designID = &id
	}

	d, err := s.server.SaveDesign(ctx.Request().Context(), userID, designID, usecase.SaveDesignInput{
		Name:       req.Name,
		CanvasData: req.CanvasData,
		CanvasSize: req.CanvasSize,
		Layers:     req.Layers,
	})
	if err != nil {
		return s.designError(ctx, err, "Failed to save design")
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: convertDesign(d)})
}

type DeleteDesignRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteDesign(ctx echo.Context) error {
	var req DeleteDesignRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	userID, ok := userIDFromContext(ctx.Request().Context())
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Success: false, Message: "Missing user identity"})
	}

	id, _ := uuid.Parse(req.ID)

	if err := s.server.DeleteDesign(ctx.Request().Context(), userID, id); err != nil {
		return s.designError(ctx, err, "Failed to delete design")
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Message: "Design deleted successfully"})
}

func (s *Server) designError(ctx echo.Context, err error, fallback string) error {
	var ve *usecase.ValidationError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return ctx.JSON(http.StatusNotFound, Res{
			Success: false,
			Message: "Design not found! or you don't have permission to view it.",
		})
	case errors.As(err, &ve):
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: ve.Error()})
	default:
		s.logger.Error(fallback, slog.String("err", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, Res{Success: false, Message: fallback})
	}
}
