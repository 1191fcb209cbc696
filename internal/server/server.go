package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/immocanvas/immocanvas/internal/config"
	"github.com/immocanvas/immocanvas/internal/database"
	"github.com/immocanvas/immocanvas/internal/onoffice"
	"github.com/immocanvas/immocanvas/internal/telemetry"
	"github.com/immocanvas/immocanvas/internal/usecase"
)

// Service is what the HTTP layer needs from the domain layer.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	ListDesigns(context.Context, uuid.UUID) ([]usecase.Design, int, error)
	GetDesign(context.Context, uuid.UUID, uuid.UUID) (usecase.Design, error)
	SaveDesign(context.Context, uuid.UUID, *uuid.UUID, usecase.SaveDesignInput) (usecase.Design, error)
	DeleteDesign(context.Context, uuid.UUID, uuid.UUID) error

	TestConnection(context.Context) error
	ListEstates(context.Context, usecase.ListEstatesOption) ([]usecase.Estate, error)
	ListEstateImages(context.Context, string) ([]usecase.EstateImage, error)
	ListEstateImagesBatch(context.Context, []string) (map[string][]usecase.EstateImage, error)
	EstatePalette(context.Context, string) ([][4]uint8, error)
	ListAddresses(context.Context, usecase.ListAddressesOption) ([]usecase.Address, error)
}

type Server struct {
	server    Service
	validator *validator.Validate
	logger    *slog.Logger
}

// App bundles the HTTP server with the resources it owns.
type App struct {
	httpServer *http.Server
	service    Service
	logger     *slog.Logger

	shutdownTelemetry func(context.Context) error
}

func NewApp() (*App, error) {
	logger := newLogger()

	shutdownTelemetry, err := telemetry.Setup(context.Background(), "immocanvas-api")
	if err != nil {
		return nil, err
	}

	repo := database.New(logger)

	gateway := onoffice.New(
		os.Getenv(config.ENV_KEY_ONOFFICE_API_URL),
		os.Getenv(config.ENV_KEY_ONOFFICE_API_TOKEN),
		os.Getenv(config.ENV_KEY_ONOFFICE_API_SECRET),
		logger,
	)

	sv := usecase.New(repo, gateway, logger)

	s := &Server{
		server:    sv,
		validator: validator.New(),
		logger:    logger,
	}

	port, _ := strconv.Atoi(os.Getenv("PORT"))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &App{
		httpServer:        httpServer,
		service:           sv,
		logger:            logger,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

func (a *App) Addr() string {
	return a.httpServer.Addr
}

func (a *App) ListenAndServe() error {
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if err := a.service.Close(); err != nil {
		a.logger.Error("closing database", slog.String("err", err.Error()))
	}
	return a.shutdownTelemetry(ctx)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv(config.ENV_KEY_LOG_LEVEL) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(telemetry.NewTraceHandler(jsonHandler))
}
