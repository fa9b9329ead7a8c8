package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// SQLRatingRepository handles rating database operations
type SQLRatingRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewRatingRepository creates a new SQLRatingRepository
func NewRatingRepository(db DBTX, sb squirrel.StatementBuilderType) *SQLRatingRepository {
	return &SQLRatingRepository{db: db, sb: sb}
}

// Create stores a rating
func (r *SQLRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.sb.Insert("ratings").
		Columns("rating", "student_id", "module_instance_id", "professor_id", "created_at").
		Values(rating.Value, rating.StudentID, rating.ModuleInstanceID, rating.ProfessorID, rating.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create rating query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&rating.ID); err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			return err
		}
		logger.Error().Err(err).
			Int64("professor_id", rating.ProfessorID).
			Int64("module_instance_id", rating.ModuleInstanceID).
			Msg("Error creating rating")
		return fmt.Errorf("error creating rating: %w", err)
	}
	return nil
}

// Exists reports whether the student already rated the professor in the instance
func (r *SQLRatingRepository) Exists(ctx context.Context, professorID, instanceID int64, studentID string) (bool, error) {
	return countExists(ctx, r.db, r.sb.Select("COUNT(*)").
		From("ratings").
		Where(squirrel.Eq{
			"professor_id":       professorID,
			"module_instance_id": instanceID,
			"student_id":         studentID,
		}))
}

// ValuesByProfessor groups every stored rating value by professor primary key
func (r *SQLRatingRepository) ValuesByProfessor(ctx context.Context) (map[int64][]int, error) {
	query, args, err := r.sb.Select("professor_id", "rating").
		From("ratings").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ratings by professor query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing ratings: %w", err)
	}
	defer rows.Close()

	values := make(map[int64][]int)
	for rows.Next() {
		var professorID int64
		var value int
		if err := rows.Scan(&professorID, &value); err != nil {
			return nil, fmt.Errorf("error scanning rating row: %w", err)
		}
		values[professorID] = append(values[professorID], value)
	}
	return values, rows.Err()
}

// ValuesForProfessorAndCode returns the ratings a professor received across
// every instance of the module code
func (r *SQLRatingRepository) ValuesForProfessorAndCode(ctx context.Context, professorID int64, code string) ([]int, error) {
	query, args, err := r.sb.Select("r.rating").
		From("ratings r").
		Join("module_instances mi ON mi.id = r.module_instance_id").
		Join("modules m ON m.id = mi.module_id").
		Where(squirrel.Eq{"r.professor_id": professorID, "m.code": code}).
		OrderBy("r.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build module ratings query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing module ratings: %w", err)
	}
	defer rows.Close()

	values := make([]int, 0)
	for rows.Next() {
		var value int
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("error scanning rating row: %w", err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}
