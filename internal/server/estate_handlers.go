package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/immocanvas/immocanvas/internal/onoffice"
	"github.com/immocanvas/immocanvas/internal/usecase"
)

type Estate struct {
	ID       string         `json:"id"`
	Elements map[string]any `json:"elements"`
}

type EstateImage struct {
	ID               string `json:"id"`
	EstateID         string `json:"estate_id"`
	Category         string `json:"category,omitempty"`
	Title            string `json:"title,omitempty"`
	URL              string `json:"url"`
	OriginalFilename string `json:"original_filename,omitempty"`
	Position         int    `json:"position"`
}

func convertEstateImage(img usecase.EstateImage) EstateImage {
	return EstateImage{
		ID:               img.ID,
		EstateID:         img.EstateID,
		Category:         img.Category,
		Title:            img.Title,
		URL:              img.URL,
		OriginalFilename: img.OriginalFilename,
		Position:         img.Position,
	}
}

func (s *Server) TestConnection(ctx echo.Context) error {
	if err := s.server.TestConnection(ctx.Request().Context()); err != nil {
		return s.estateError(ctx, err, "Failed to connect to onOffice")
	}
	return ctx.JSON(http.StatusOK, Res{Success: true, Message: "onOffice connection is active"})
}

type ListEstatesRequest struct {
	Limit  int    `query:"limit"`
	Fields string `query:"fields"`
}

func (s *Server) ListEstates(ctx echo.Context) error {
	var req ListEstatesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}

	var fields []string
	if req.Fields != "" {
		fields = strings.Split(req.Fields, ",")
	}

	estates, err := s.server.ListEstates(ctx.Request().Context(), usecase.ListEstatesOption{
		Fields: fields,
		Limit:  req.Limit,
	})
	if err != nil {
		return s.estateError(ctx, err, "Failed to fetch estates")
	}

	data := make([]Estate, 0, len(estates))
	for _, e := range estates {
		data = append(data, Estate{ID: e.ID, Elements: e.Elements})
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: data, Meta: &Meta{Total: len(data)}})
}

type ListEstateImagesRequest struct {
	EstateID string `param:"id" validate:"required"`
}

func (s *Server) ListEstateImages(ctx echo.Context) error {
	var req ListEstateImagesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	images, err := s.server.ListEstateImages(ctx.Request().Context(), req.EstateID)
	if err != nil {
		return s.estateError(ctx, err, "Failed to fetch estate images")
	}

	data := make([]EstateImage, 0, len(images))
	for _, img := range images {
		data = append(data, convertEstateImage(img))
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: data, Meta: &Meta{Total: len(data)}})
}

type ListEstateImagesBatchRequest struct {
	IDs string `query:"ids" validate:"required"`
}

// ListEstateImagesBatch loads images for several estates at once, e.g.
// for the dashboard grid. Estates whose image fetch failed are absent
// from the result.
func (s *Server) ListEstateImagesBatch(ctx echo.Context) error {
	var req ListEstateImagesBatchRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	ids := strings.Split(req.IDs, ",")

	byEstate, err := s.server.ListEstateImagesBatch(ctx.Request().Context(), ids)
	if err != nil {
		return s.estateError(ctx, err, "Failed to fetch estate images")
	}

	data := make(map[string][]EstateImage, len(byEstate))
	for estateID, images := range byEstate {
		converted := make([]EstateImage, 0, len(images))
		for _, img := range images {
			converted = append(converted, convertEstateImage(img))
		}
		data[estateID] = converted
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: data})
}

type GetEstatePaletteRequest struct {
	EstateID string `param:"id" validate:"required"`
}

// GetEstatePalette suggests design colors from the estate's cover
// photo.
func (s *Server) GetEstatePalette(ctx echo.Context) error {
	var req GetEstatePaletteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Success: false, Message: err.Error()})
	}

	colors, err := s.server.EstatePalette(ctx.Request().Context(), req.EstateID)
	if err != nil {
		return s.estateError(ctx, err, "Failed to extract estate palette")
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: colors})
}

type ListAddressesRequest struct {
	Limit int `query:"limit"`
}

func (s *Server) ListAddresses(ctx echo.Context) error {
	var req ListAddressesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Res{Success: false, Message: err.Error()})
	}

	addresses, err := s.server.ListAddresses(ctx.Request().Context(), usecase.ListAddressesOption{
		Limit: req.Limit,
	})
	if err != nil {
		return s.estateError(ctx, err, "Failed to fetch addresses")
	}

	data := make([]Estate, 0, len(addresses))
	for _, a := range addresses {
		data = append(data, Estate{ID: a.ID, Elements: a.Elements})
	}

	return ctx.JSON(http.StatusOK, Res{Success: true, Data: data, Meta: &Meta{Total: len(data)}})
}

func (s *Server) estateError(ctx echo.Context, err error, fallback string) error {
	var (
		connErr     *onoffice.ConnectionError
		providerErr *onoffice.ProviderError
	)
	switch {
	case errors.As(err, &connErr):
		return ctx.JSON(http.StatusBadGateway, Res{Success: false, Message: "onOffice is not reachable"})
	case errors.As(err, &providerErr):
		return ctx.JSON(http.StatusBadGateway, Res{Success: false, Message: providerErr.Error()})
	default:
		s.logger.Error(fallback, slog.String("err", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, Res{Success: false, Message: fallback})
	}
}
