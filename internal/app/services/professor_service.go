package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/validation"
)

// ProfessorInput describes a new professor
type ProfessorInput struct {
	ID   string `json:"id" validate:"required,professor_id"`
	Name string `json:"name" validate:"required,professor_name"`
}

// ProfessorService administers professors
type ProfessorService interface {
	Create(ctx context.Context, in ProfessorInput) (*models.Professor, error)
}

type professorServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewProfessorService creates a new professor service instance
func NewProfessorService(store repositories.Store, logger zerolog.Logger) ProfessorService {
	return &professorServiceImpl{store: store, logger: logger}
}

func (s *professorServiceImpl) Create(ctx context.Context, in ProfessorInput) (*models.Professor, error) {
	if err := validation.Struct(in); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	professor := &models.Professor{ExternalID: in.ID, Name: in.Name}
	if err := s.store.Repositories().Professors.Create(ctx, professor); err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return nil, apperrors.ErrDuplicateProfessor
		}
		return nil, err
	}

	s.logger.Info().Str("professor", professor.ExternalID).Msg("Professor created")
	return professor, nil
}
