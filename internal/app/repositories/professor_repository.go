package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// SQLProfessorRepository handles professor database operations
type SQLProfessorRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewProfessorRepository creates a new SQLProfessorRepository
func NewProfessorRepository(db DBTX, sb squirrel.StatementBuilderType) *SQLProfessorRepository {
	return &SQLProfessorRepository{db: db, sb: sb}
}

// Create inserts a professor and fills in its ID
func (r *SQLProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	query, args, err := r.sb.Insert("professors").
		Columns("professor_id", "name").
		Values(professor.ExternalID, professor.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create professor query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&professor.ID); err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			return err
		}
		logger.Error().Err(err).Str("professor_id", professor.ExternalID).Msg("Error creating professor")
		return fmt.Errorf("error creating professor: %w", err)
	}
	return nil
}

// GetByExternalID looks a professor up by their short public identifier
func (r *SQLProfessorRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Professor, error) {
	query, args, err := r.sb.Select("id", "professor_id", "name").
		From("professors").
		Where(squirrel.Eq{"professor_id": externalID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get professor query: %w", err)
	}

	var p models.Professor
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.ExternalID, &p.Name); err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting professor: %w", err)
	}
	return &p, nil
}

// GetAll returns every professor ordered by id
func (r *SQLProfessorRepository) GetAll(ctx context.Context) ([]*models.Professor, error) {
	query, args, err := r.sb.Select("id", "professor_id", "name").
		From("professors").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list professors query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing professors: %w", err)
	}
	defer rows.Close()

	professors := make([]*models.Professor, 0)
	for rows.Next() {
		var p models.Professor
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name); err != nil {
			return nil, fmt.Errorf("error scanning professor row: %w", err)
		}
		professors = append(professors, &p)
	}
	return professors, rows.Err()
}
