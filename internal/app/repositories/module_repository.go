package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// SQLModuleRepository handles module definitions, module instances and the
// module_instance_professors link table
type SQLModuleRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewModuleRepository creates a new SQLModuleRepository
func NewModuleRepository(db DBTX, sb squirrel.StatementBuilderType) *SQLModuleRepository {
	return &SQLModuleRepository{db: db, sb: sb}
}

var instanceColumns = []string{"mi.id", "mi.module_id", "mi.year", "mi.semester", "m.name", "m.code"}

func (r *SQLModuleRepository) selectInstances() squirrel.SelectBuilder {
	return r.sb.Select(instanceColumns...).
		From("module_instances mi").
		Join("modules m ON m.id = mi.module_id")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstance(row rowScanner) (*models.ModuleInstance, error) {
	mi := &models.ModuleInstance{Module: &models.Module{}}
	if err := row.Scan(&mi.ID, &mi.ModuleID, &mi.Year, &mi.Semester, &mi.Module.Name, &mi.Module.Code); err != nil {
		return nil, err
	}
	mi.Module.ID = mi.ModuleID
	mi.Professors = make([]*models.Professor, 0)
	return mi, nil
}

func (r *SQLModuleRepository) getDefinition(ctx context.Context, where squirrel.Eq) (*models.Module, error) {
	query, args, err := r.sb.Select("id", "name", "code").
		From("modules").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get module query: %w", err)
	}

	var m models.Module
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.Name, &m.Code); err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting module: %w", err)
	}
	return &m, nil
}

// GetDefinitionByName finds the module definition with exactly this name
func (r *SQLModuleRepository) GetDefinitionByName(ctx context.Context, name string) (*models.Module, error) {
	return r.getDefinition(ctx, squirrel.Eq{"name": name})
}

// GetDefinitionByCode finds the module definition with exactly this code
func (r *SQLModuleRepository) GetDefinitionByCode(ctx context.Context, code string) (*models.Module, error) {
	return r.getDefinition(ctx, squirrel.Eq{"code": code})
}

// CreateDefinition inserts a new name/code pairing
func (r *SQLModuleRepository) CreateDefinition(ctx context.Context, module *models.Module) error {
	query, args, err := r.sb.Insert("modules").
		Columns("name", "code").
		Values(module.Name, module.Code).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create module query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&module.ID); err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			return err
		}
		logger.Error().Err(err).Str("code", module.Code).Msg("Error creating module")
		return fmt.Errorf("error creating module: %w", err)
	}
	return nil
}

// DeleteOrphanDefinitions removes definitions no instance refers to any more
func (r *SQLModuleRepository) DeleteOrphanDefinitions(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Delete("modules").
		Where("id NOT IN (SELECT module_id FROM module_instances)").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete orphan modules query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting orphan modules: %w", err)
	}
	return res.RowsAffected()
}

// CreateInstance inserts a module instance. A second instance with the same
// definition, year and semester fails with ErrUniqueViolation.
func (r *SQLModuleRepository) CreateInstance(ctx context.Context, instance *models.ModuleInstance) error {
	query, args, err := r.sb.Insert("module_instances").
		Columns("module_id", "year", "semester").
		Values(instance.ModuleID, instance.Year, int(instance.Semester)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create module instance query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&instance.ID); err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			return err
		}
		logger.Error().Err(err).Int64("module_id", instance.ModuleID).Msg("Error creating module instance")
		return fmt.Errorf("error creating module instance: %w", err)
	}
	return nil
}

// UpdateInstance rewrites the definition, year and semester of an instance
func (r *SQLModuleRepository) UpdateInstance(ctx context.Context, instance *models.ModuleInstance) error {
	query, args, err := r.sb.Update("module_instances").
		Set("module_id", instance.ModuleID).
		Set("year", instance.Year).
		Set("semester", int(instance.Semester)).
		Where(squirrel.Eq{"id": instance.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update module instance query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			return err
		}
		return fmt.Errorf("error updating module instance: %w", err)
	}
	return expectAffected(res)
}

// DeleteInstance removes an instance; its ratings and teaching links cascade
func (r *SQLModuleRepository) DeleteInstance(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("module_instances").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete module instance query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting module instance: %w", err)
	}
	return expectAffected(res)
}

// GetInstanceByID loads an instance with its definition and professors
func (r *SQLModuleRepository) GetInstanceByID(ctx context.Context, id int64) (*models.ModuleInstance, error) {
	return r.getInstance(ctx, r.selectInstances().Where(squirrel.Eq{"mi.id": id}))
}

// FindInstance loads the instance of code running in the given year and semester
func (r *SQLModuleRepository) FindInstance(ctx context.Context, code string, year int, semester models.Semester) (*models.ModuleInstance, error) {
	return r.getInstance(ctx, r.selectInstances().Where(squirrel.Eq{
		"m.code":      code,
		"mi.year":     year,
		"mi.semester": int(semester),
	}))
}

// FirstInstanceByCode returns the earliest created instance of code
func (r *SQLModuleRepository) FirstInstanceByCode(ctx context.Context, code string) (*models.ModuleInstance, error) {
	return r.getInstance(ctx, r.selectInstances().
		Where(squirrel.Eq{"m.code": code}).
		OrderBy("mi.id ASC"))
}

func (r *SQLModuleRepository) getInstance(ctx context.Context, builder squirrel.SelectBuilder) (*models.ModuleInstance, error) {
	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get module instance query: %w", err)
	}

	mi, err := scanInstance(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting module instance: %w", err)
	}

	if err := r.loadProfessors(ctx, map[int64]*models.ModuleInstance{mi.ID: mi}, squirrel.Eq{"mip.module_instance_id": mi.ID}); err != nil {
		return nil, err
	}
	return mi, nil
}

// CodeExists reports whether any instance of code exists
func (r *SQLModuleRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, r.sb.Select("COUNT(*)").
		From("module_instances mi").
		Join("modules m ON m.id = mi.module_id").
		Where(squirrel.Eq{"m.code": code}))
}

// GetAllInstances returns every instance in creation order with professors
// loaded in professor id order
func (r *SQLModuleRepository) GetAllInstances(ctx context.Context) ([]*models.ModuleInstance, error) {
	query, args, err := r.selectInstances().OrderBy("mi.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list module instances query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing module instances: %w", err)
	}
	defer rows.Close()

	instances := make([]*models.ModuleInstance, 0)
	byID := make(map[int64]*models.ModuleInstance)
	for rows.Next() {
		mi, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning module instance row: %w", err)
		}
		instances = append(instances, mi)
		byID[mi.ID] = mi
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(instances) == 0 {
		return instances, nil
	}
	if err := r.loadProfessors(ctx, byID, nil); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *SQLModuleRepository) loadProfessors(ctx context.Context, byID map[int64]*models.ModuleInstance, where squirrel.Sqlizer) error {
	builder := r.sb.Select("mip.module_instance_id", "p.id", "p.professor_id", "p.name").
		From("module_instance_professors mip").
		Join("professors p ON p.id = mip.professor_id").
		OrderBy("p.id ASC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build load professors query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error loading module professors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var instanceID int64
		var p models.Professor
		if err := rows.Scan(&instanceID, &p.ID, &p.ExternalID, &p.Name); err != nil {
			return fmt.Errorf("error scanning module professor row: %w", err)
		}
		if mi, ok := byID[instanceID]; ok {
			mi.Professors = append(mi.Professors, &p)
		}
	}
	return rows.Err()
}

// AddProfessor links a professor to an instance; linking twice is a no-op
func (r *SQLModuleRepository) AddProfessor(ctx context.Context, instanceID, professorID int64) error {
	query, args, err := r.sb.Insert("module_instance_professors").
		Columns("module_instance_id", "professor_id").
		Values(instanceID, professorID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign professor query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error assigning professor: %w", err)
	}
	return nil
}

// RemoveProfessor unlinks a professor from an instance
func (r *SQLModuleRepository) RemoveProfessor(ctx context.Context, instanceID, professorID int64) error {
	query, args, err := r.sb.Delete("module_instance_professors").
		Where(squirrel.Eq{"module_instance_id": instanceID, "professor_id": professorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unassign professor query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error unassigning professor: %w", err)
	}
	return nil
}

// IsTeaching reports whether the professor teaches the instance
func (r *SQLModuleRepository) IsTeaching(ctx context.Context, instanceID, professorID int64) (bool, error) {
	return r.exists(ctx, r.sb.Select("COUNT(*)").
		From("module_instance_professors").
		Where(squirrel.Eq{"module_instance_id": instanceID, "professor_id": professorID}))
}

// TeachesCode reports whether the professor teaches any instance of code
func (r *SQLModuleRepository) TeachesCode(ctx context.Context, professorID int64, code string) (bool, error) {
	return r.exists(ctx, r.sb.Select("COUNT(*)").
		From("module_instance_professors mip").
		Join("module_instances mi ON mi.id = mip.module_instance_id").
		Join("modules m ON m.id = mi.module_id").
		Where(squirrel.Eq{"mip.professor_id": professorID, "m.code": code}))
}

func (r *SQLModuleRepository) exists(ctx context.Context, builder squirrel.SelectBuilder) (bool, error) {
	return countExists(ctx, r.db, builder)
}
