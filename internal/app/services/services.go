package services

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/auth"
)

// Services defined in this package:
// - AuthService: registration, credential checks and account activation
// - RatingService: records ratings
// - CatalogService: module and professor listings, per-module averages
// - ModuleService: module instance administration
// - ProfessorService: professor administration
type Services struct {
	Auth       AuthService
	Ratings    RatingService
	Catalog    CatalogService
	Modules    ModuleService
	Professors ProfessorService
}

// NewServices wires every service to the same store
func NewServices(store repositories.Store, hasher *auth.PasswordHasher, logger zerolog.Logger) *Services {
	return &Services{
		Auth:       NewAuthService(store, hasher, logger),
		Ratings:    NewRatingService(store, logger),
		Catalog:    NewCatalogService(store),
		Modules:    NewModuleService(store, logger),
		Professors: NewProfessorService(store, logger),
	}
}

// notFound replaces a repository miss with the caller's domain error
func notFound(err, domainErr error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return domainErr
	}
	return err
}
