package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/stars"
)

// CatalogService answers the read-only queries
type CatalogService interface {
	ListModules(ctx context.Context) (*dto.ModuleListResponse, error)
	ListProfessors(ctx context.Context) (*dto.ProfessorListResponse, error)
	AverageRating(ctx context.Context, req *dto.AverageRequest) (string, error)
}

type catalogServiceImpl struct {
	store repositories.Store
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(store repositories.Store) CatalogService {
	return &catalogServiceImpl{store: store}
}

// ListModules describes every module instance with its teaching professors
func (s *catalogServiceImpl) ListModules(ctx context.Context) (*dto.ModuleListResponse, error) {
	instances, err := s.store.Repositories().Modules.GetAllInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving module instances: %w", err)
	}

	items := make([]dto.ModuleItem, 0, len(instances))
	for _, mi := range instances {
		item := dto.ModuleItem{
			ModuleName:    mi.Module.Name,
			ModuleCode:    mi.Module.Code,
			Year:          strconv.Itoa(mi.Year),
			Semester:      strconv.Itoa(int(mi.Semester)),
			NumProfessors: strconv.Itoa(len(mi.Professors)),
			Professors:    make([]string, 0, len(mi.Professors)),
			ProfessorsID:  make([]string, 0, len(mi.Professors)),
		}
		for _, p := range mi.Professors {
			item.Professors = append(item.Professors, p.Name)
			item.ProfessorsID = append(item.ProfessorsID, p.ExternalID)
		}
		items = append(items, item)
	}

	return &dto.ModuleListResponse{
		NumItems: strconv.Itoa(len(items)),
		Items:    items,
	}, nil
}

// ListProfessors gives every professor's overall star average
func (s *catalogServiceImpl) ListProfessors(ctx context.Context) (*dto.ProfessorListResponse, error) {
	repos := s.store.Repositories()

	professors, err := repos.Professors.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving professors: %w", err)
	}
	values, err := repos.Ratings.ValuesByProfessor(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving ratings: %w", err)
	}

	resp := &dto.ProfessorListResponse{
		Names:        make([]string, 0, len(professors)),
		ProfessorIDs: make([]string, 0, len(professors)),
		Ratings:      make([]string, 0, len(professors)),
	}
	for _, p := range professors {
		resp.Names = append(resp.Names, p.Name)
		resp.ProfessorIDs = append(resp.ProfessorIDs, p.ExternalID)

		ratings := values[p.ID]
		if len(ratings) == 0 {
			resp.Ratings = append(resp.Ratings, dto.NoRatingsLabel)
			continue
		}
		resp.Ratings = append(resp.Ratings, stars.Average(ratings))
	}
	return resp, nil
}

// AverageRating renders a professor's star average over every instance of
// one module code
func (s *catalogServiceImpl) AverageRating(ctx context.Context, req *dto.AverageRequest) (string, error) {
	repos := s.store.Repositories()

	exists, err := repos.Modules.CodeExists(ctx, req.ModuleCode)
	if err != nil {
		return "", fmt.Errorf("error checking module code: %w", err)
	}
	if !exists {
		return "", apperrors.ErrModuleNotFound
	}

	professor, err := repos.Professors.GetByExternalID(ctx, req.ProfessorID)
	if err != nil {
		return "", notFound(err, apperrors.ErrProfessorNotFound)
	}

	teaches, err := repos.Modules.TeachesCode(ctx, professor.ID, req.ModuleCode)
	if err != nil {
		return "", fmt.Errorf("error checking teaching relation: %w", err)
	}
	if !teaches {
		return "", fmt.Errorf("%w %s", apperrors.ErrProfessorNotTeachingAny, req.ModuleCode)
	}

	values, err := repos.Ratings.ValuesForProfessorAndCode(ctx, professor.ID, req.ModuleCode)
	if err != nil {
		return "", fmt.Errorf("error retrieving ratings: %w", err)
	}
	if len(values) == 0 {
		return "", fmt.Errorf("%w %s", apperrors.ErrNoRatings, req.ModuleCode)
	}

	first, err := repos.Modules.FirstInstanceByCode(ctx, req.ModuleCode)
	if err != nil {
		return "", notFound(err, apperrors.ErrModuleNotFound)
	}

	return fmt.Sprintf("average of %s (%s) in module %s (%s) is: %s",
		professor.Name, professor.ExternalID,
		first.Module.Name, first.Module.Code,
		stars.Average(values),
	), nil
}
