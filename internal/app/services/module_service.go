package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/validation"
)

// ModuleInstanceInput describes a module offering
type ModuleInstanceInput struct {
	Name     string `json:"name" validate:"required,module_name"`
	Code     string `json:"code" validate:"required,module_code"`
	Year     int    `json:"year" validate:"module_year"`
	Semester int    `json:"semester" validate:"semester"`
}

// ModuleService administers module instances and who teaches them
type ModuleService interface {
	CreateInstance(ctx context.Context, in ModuleInstanceInput, professorIDs []string) (*models.ModuleInstance, error)
	UpdateInstance(ctx context.Context, id int64, in ModuleInstanceInput) (*models.ModuleInstance, error)
	DeleteInstance(ctx context.Context, id int64) error
	AssignProfessor(ctx context.Context, instanceID int64, professorID string) error
	UnassignProfessor(ctx context.Context, instanceID int64, professorID string) error
	GetInstance(ctx context.Context, id int64) (*models.ModuleInstance, error)
	ListInstances(ctx context.Context) ([]*models.ModuleInstance, error)
}

type moduleServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewModuleService creates a new module service instance
func NewModuleService(store repositories.Store, logger zerolog.Logger) ModuleService {
	return &moduleServiceImpl{store: store, logger: logger}
}

func validateInstance(in ModuleInstanceInput) error {
	if err := validation.Struct(in); err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	return nil
}

// resolveDefinition returns the module definition for name and code. A new
// pairing is created only when neither half exists yet; reusing just one of
// them is rejected.
func resolveDefinition(ctx context.Context, repos *repositories.Repositories, name, code string) (*models.Module, error) {
	byName, err := repos.Modules.GetDefinitionByName(ctx, name)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("error looking up module name: %w", err)
	}
	byCode, err := repos.Modules.GetDefinitionByCode(ctx, code)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("error looking up module code: %w", err)
	}

	switch {
	case byName == nil && byCode == nil:
		module := &models.Module{Name: name, Code: code}
		if err := repos.Modules.CreateDefinition(ctx, module); err != nil {
			if errors.Is(err, repositories.ErrUniqueViolation) {
				return nil, apperrors.ErrDuplicateModuleDefinition
			}
			return nil, err
		}
		return module, nil
	case byName != nil && byCode != nil && byName.ID == byCode.ID:
		return byName, nil
	default:
		return nil, apperrors.ErrDuplicateModuleDefinition
	}
}

func (s *moduleServiceImpl) CreateInstance(ctx context.Context, in ModuleInstanceInput, professorIDs []string) (*models.ModuleInstance, error) {
	if err := validateInstance(in); err != nil {
		return nil, err
	}

	var created *models.ModuleInstance
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		module, err := resolveDefinition(ctx, tx, in.Name, in.Code)
		if err != nil {
			return err
		}

		instance := &models.ModuleInstance{ModuleID: module.ID, Year: in.Year, Semester: models.Semester(in.Semester)}
		if err := tx.Modules.CreateInstance(ctx, instance); err != nil {
			if errors.Is(err, repositories.ErrUniqueViolation) {
				return apperrors.ErrDuplicateModuleInstance
			}
			return err
		}

		for _, externalID := range professorIDs {
			professor, err := tx.Professors.GetByExternalID(ctx, externalID)
			if err != nil {
				return notFound(err, apperrors.ErrProfessorNotFound)
			}
			if err := tx.Modules.AddProfessor(ctx, instance.ID, professor.ID); err != nil {
				return err
			}
		}

		created, err = tx.Modules.GetInstanceByID(ctx, instance.ID)
		return err
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("code", in.Code).Msg("Module instance creation rejected")
		return nil, err
	}

	s.logger.Info().Int64("id", created.ID).Str("code", in.Code).Int("year", in.Year).Int("semester", in.Semester).Msg("Module instance created")
	return created, nil
}

// UpdateInstance changes the name, code, year and semester of an instance.
// The instance's own current pairing counts as existing, so renaming only
// one half of a pairing is rejected like anywhere else.
func (s *moduleServiceImpl) UpdateInstance(ctx context.Context, id int64, in ModuleInstanceInput) (*models.ModuleInstance, error) {
	if err := validateInstance(in); err != nil {
		return nil, err
	}

	var updated *models.ModuleInstance
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		instance, err := tx.Modules.GetInstanceByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrModuleInstanceNotFound)
		}

		module, err := resolveDefinition(ctx, tx, in.Name, in.Code)
		if err != nil {
			return err
		}

		instance.ModuleID = module.ID
		instance.Year = in.Year
		instance.Semester = models.Semester(in.Semester)
		if err := tx.Modules.UpdateInstance(ctx, instance); err != nil {
			if errors.Is(err, repositories.ErrUniqueViolation) {
				return apperrors.ErrDuplicateModuleInstance
			}
			return notFound(err, apperrors.ErrModuleInstanceNotFound)
		}

		if _, err := tx.Modules.DeleteOrphanDefinitions(ctx); err != nil {
			return err
		}

		updated, err = tx.Modules.GetInstanceByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("id", id).Str("code", in.Code).Msg("Module instance updated")
	return updated, nil
}

func (s *moduleServiceImpl) DeleteInstance(ctx context.Context, id int64) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		if err := tx.Modules.DeleteInstance(ctx, id); err != nil {
			return notFound(err, apperrors.ErrModuleInstanceNotFound)
		}
		_, err := tx.Modules.DeleteOrphanDefinitions(ctx)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("id", id).Msg("Module instance deleted")
	return nil
}

func (s *moduleServiceImpl) AssignProfessor(ctx context.Context, instanceID int64, professorID string) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		instance, professor, err := s.lookupPair(ctx, tx, instanceID, professorID)
		if err != nil {
			return err
		}
		if err := tx.Modules.AddProfessor(ctx, instance.ID, professor.ID); err != nil {
			return err
		}
		s.logger.Info().Int64("instance", instance.ID).Str("professor", professor.ExternalID).Msg("Professor assigned")
		return nil
	})
}

func (s *moduleServiceImpl) UnassignProfessor(ctx context.Context, instanceID int64, professorID string) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		instance, professor, err := s.lookupPair(ctx, tx, instanceID, professorID)
		if err != nil {
			return err
		}
		if !instance.TaughtBy(professor.ID) {
			return apperrors.ErrProfessorNotTeaching
		}
		if err := tx.Modules.RemoveProfessor(ctx, instance.ID, professor.ID); err != nil {
			return err
		}
		s.logger.Info().Int64("instance", instance.ID).Str("professor", professor.ExternalID).Msg("Professor unassigned")
		return nil
	})
}

func (s *moduleServiceImpl) lookupPair(ctx context.Context, tx *repositories.Repositories, instanceID int64, professorID string) (*models.ModuleInstance, *models.Professor, error) {
	instance, err := tx.Modules.GetInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, nil, notFound(err, apperrors.ErrModuleInstanceNotFound)
	}
	professor, err := tx.Professors.GetByExternalID(ctx, professorID)
	if err != nil {
		return nil, nil, notFound(err, apperrors.ErrProfessorNotFound)
	}
	return instance, professor, nil
}

func (s *moduleServiceImpl) GetInstance(ctx context.Context, id int64) (*models.ModuleInstance, error) {
	instance, err := s.store.Repositories().Modules.GetInstanceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrModuleInstanceNotFound)
	}
	return instance, nil
}

func (s *moduleServiceImpl) ListInstances(ctx context.Context) ([]*models.ModuleInstance, error) {
	instances, err := s.store.Repositories().Modules.GetAllInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving module instances: %w", err)
	}
	return instances, nil
}
