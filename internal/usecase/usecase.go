package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Repository is the persistence layer contract, implemented by
// internal/database.
type Repository interface {
	Health() map[string]string
	Close() error

	ListDesigns(context.Context, uuid.UUID) ([]Design, int, error)
	GetDesignByID(context.Context, uuid.UUID, uuid.UUID) (Design, error)
	CreateDesign(context.Context, Design) (Design, error)
	UpdateDesign(context.Context, uuid.UUID, uuid.UUID, UpdateDesignRequest) (Design, error)
	DeleteDesign(context.Context, uuid.UUID, uuid.UUID) error
}

// EstateProvider is the CRM gateway contract, implemented by
// internal/onoffice.
type EstateProvider interface {
	TestConnection(context.Context) error
	ListEstates(context.Context, ListEstatesOption) ([]Estate, error)
	ListEstateImages(context.Context, string) ([]EstateImage, error)
	ListAddresses(context.Context, ListAddressesOption) ([]Address, error)
}

func New(repo Repository, estate EstateProvider, logger *slog.Logger) *Usecase {
	return &Usecase{
		repo:   repo,
		estate: estate,
		logger: logger,
	}
}

type Usecase struct {
	repo   Repository
	estate EstateProvider
	logger *slog.Logger

	// dedups concurrent image fetches for the same estate
	imageCalls singleflight.Group
}

func (u *Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u *Usecase) Close() error {
	return u.repo.Close()
}
