package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/validation"
)

// RatingService records student ratings
type RatingService interface {
	Rate(ctx context.Context, identity auth.Identity, req *dto.RateRequest) error
}

type ratingServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewRatingService creates a new rating service instance
func NewRatingService(store repositories.Store, logger zerolog.Logger) RatingService {
	return &ratingServiceImpl{store: store, logger: logger}
}

// Rate stores the caller's rating of a professor in one module instance.
// Checks run in order: rating format, rating range, module instance,
// professor, teaching relation, existing rating.
func (s *ratingServiceImpl) Rate(ctx context.Context, identity auth.Identity, req *dto.RateRequest) error {
	if !identity.LoggedIn() {
		return apperrors.ErrLoginRequired
	}

	value, ok := validation.ParseDigits(req.Rating.String())
	if !ok {
		return apperrors.ErrRatingNotNumeric
	}
	if !validation.IsValidRating(value) {
		return apperrors.ErrRatingRange
	}

	year, ok := validation.ParseDigits(req.Year.String())
	if !ok {
		return apperrors.NewInvalidInputError("year must be a number")
	}
	semester, ok := validation.ParseDigits(req.Semester.String())
	if !ok {
		return apperrors.NewInvalidInputError("semester must be a number")
	}

	var professor *models.Professor
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		instance, err := findInstance(ctx, tx, req.ModuleCode, year, semester)
		if err != nil {
			return err
		}

		professor, err = tx.Professors.GetByExternalID(ctx, req.ProfessorID)
		if err != nil {
			return notFound(err, apperrors.ErrProfessorNotFound)
		}

		teaching, err := tx.Modules.IsTeaching(ctx, instance.ID, professor.ID)
		if err != nil {
			return fmt.Errorf("error checking teaching relation: %w", err)
		}
		if !teaching {
			return apperrors.ErrProfessorNotTeaching
		}

		exists, err := tx.Ratings.Exists(ctx, professor.ID, instance.ID, identity.Username)
		if err != nil {
			return fmt.Errorf("error checking existing rating: %w", err)
		}
		if exists {
			return apperrors.ErrDuplicateRating
		}

		return tx.Ratings.Create(ctx, &models.Rating{
			Value:            value,
			StudentID:        identity.Username,
			ModuleInstanceID: instance.ID,
			ProfessorID:      professor.ID,
		})
	})
	if err != nil {
		// a concurrent submission can pass the existence check; the unique index decides
		if errors.Is(err, repositories.ErrUniqueViolation) {
			err = apperrors.ErrDuplicateRating
		}
		if errors.Is(err, apperrors.ErrDuplicateRating) {
			s.logger.Debug().Str("student", identity.Username).Str("professor", req.ProfessorID).Msg("Duplicate rating rejected")
			return err
		}
		var domainErr *apperrors.CustomError
		if errors.As(err, &domainErr) {
			return err
		}
		return fmt.Errorf("error storing rating: %w", err)
	}

	s.logger.Info().
		Str("student", identity.Username).
		Str("professor", professor.ExternalID).
		Str("module", req.ModuleCode).
		Int("year", year).
		Int("semester", semester).
		Int("rating", value).
		Msg("Rating recorded")
	return nil
}

// findInstance looks up one module instance. Years and semesters outside the
// catalog's range cannot match any instance.
func findInstance(ctx context.Context, repos *repositories.Repositories, code string, year, semester int) (*models.ModuleInstance, error) {
	if year < validation.MinYear || year > validation.MaxYear ||
		semester < validation.MinSemester || semester > validation.MaxSemester {
		return nil, apperrors.ErrModuleNotFound
	}
	instance, err := repos.Modules.FindInstance(ctx, code, year, models.Semester(semester))
	if err != nil {
		return nil, notFound(err, apperrors.ErrModuleNotFound)
	}
	return instance, nil
}
