package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories"
)

type professorRepository struct{ s *Store }

func (r *professorRepository) Create(_ context.Context, professor *models.Professor) error {
	return r.s.view(func(d *dataset) error {
		for _, p := range d.professors {
			if p.ExternalID == professor.ExternalID {
				return repositories.ErrUniqueViolation
			}
		}
		professor.ID = d.next("professors")
		d.professors[professor.ID] = *professor
		return nil
	})
}

func (r *professorRepository) GetByExternalID(_ context.Context, externalID string) (*models.Professor, error) {
	var found *models.Professor
	err := r.s.view(func(d *dataset) error {
		for _, p := range d.professors {
			if p.ExternalID == externalID {
				p := p
				found = &p
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return found, err
}

func (r *professorRepository) GetAll(_ context.Context) ([]*models.Professor, error) {
	out := make([]*models.Professor, 0)
	err := r.s.view(func(d *dataset) error {
		for _, id := range sortedKeys(d.professors) {
			p := d.professors[id]
			out = append(out, &p)
		}
		return nil
	})
	return out, err
}

type moduleRepository struct{ s *Store }

func (r *moduleRepository) findDefinition(match func(models.Module) bool) (*models.Module, error) {
	var found *models.Module
	err := r.s.view(func(d *dataset) error {
		for _, m := range d.modules {
			if match(m) {
				m := m
				found = &m
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return found, err
}

func (r *moduleRepository) GetDefinitionByName(_ context.Context, name string) (*models.Module, error) {
	return r.findDefinition(func(m models.Module) bool { return m.Name == name })
}

func (r *moduleRepository) GetDefinitionByCode(_ context.Context, code string) (*models.Module, error) {
	return r.findDefinition(func(m models.Module) bool { return m.Code == code })
}

func (r *moduleRepository) CreateDefinition(_ context.Context, module *models.Module) error {
	return r.s.view(func(d *dataset) error {
		for _, m := range d.modules {
			if m.Name == module.Name || m.Code == module.Code {
				return repositories.ErrUniqueViolation
			}
		}
		module.ID = d.next("modules")
		d.modules[module.ID] = *module
		return nil
	})
}

func (r *moduleRepository) DeleteOrphanDefinitions(_ context.Context) (int64, error) {
	var deleted int64
	err := r.s.view(func(d *dataset) error {
		used := make(map[int64]bool)
		for _, mi := range d.instances {
			used[mi.ModuleID] = true
		}
		for id := range d.modules {
			if !used[id] {
				delete(d.modules, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (d *dataset) instanceConflict(row instanceRow) bool {
	for _, mi := range d.instances {
		if mi.ID != row.ID && mi.ModuleID == row.ModuleID && mi.Year == row.Year && mi.Semester == row.Semester {
			return true
		}
	}
	return false
}

func (r *moduleRepository) CreateInstance(_ context.Context, instance *models.ModuleInstance) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.modules[instance.ModuleID]; !ok {
			return fmt.Errorf("module %d does not exist", instance.ModuleID)
		}
		row := instanceRow{ModuleID: instance.ModuleID, Year: instance.Year, Semester: instance.Semester}
		if d.instanceConflict(row) {
			return repositories.ErrUniqueViolation
		}
		row.ID = d.next("module_instances")
		instance.ID = row.ID
		d.instances[row.ID] = row
		return nil
	})
}

func (r *moduleRepository) UpdateInstance(_ context.Context, instance *models.ModuleInstance) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.instances[instance.ID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := d.modules[instance.ModuleID]; !ok {
			return fmt.Errorf("module %d does not exist", instance.ModuleID)
		}
		row := instanceRow{ID: instance.ID, ModuleID: instance.ModuleID, Year: instance.Year, Semester: instance.Semester}
		if d.instanceConflict(row) {
			return repositories.ErrUniqueViolation
		}
		d.instances[row.ID] = row
		return nil
	})
}

func (r *moduleRepository) DeleteInstance(_ context.Context, id int64) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.instances[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.instances, id)
		delete(d.teaching, id)
		for rid, rating := range d.ratings {
			if rating.ModuleInstanceID == id {
				delete(d.ratings, rid)
			}
		}
		return nil
	})
}

func (d *dataset) hydrate(row instanceRow) *models.ModuleInstance {
	m := d.modules[row.ModuleID]
	mi := &models.ModuleInstance{
		ID:         row.ID,
		ModuleID:   row.ModuleID,
		Year:       row.Year,
		Semester:   row.Semester,
		Module:     &m,
		Professors: make([]*models.Professor, 0),
	}
	for _, pid := range sortedKeys(d.teaching[row.ID]) {
		p := d.professors[pid]
		mi.Professors = append(mi.Professors, &p)
	}
	return mi
}

// firstInstance returns the lowest-id instance matching the predicate
func (r *moduleRepository) firstInstance(match func(d *dataset, row instanceRow) bool) (*models.ModuleInstance, error) {
	var found *models.ModuleInstance
	err := r.s.view(func(d *dataset) error {
		for _, id := range sortedKeys(d.instances) {
			row := d.instances[id]
			if match(d, row) {
				found = d.hydrate(row)
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return found, err
}

func (r *moduleRepository) GetInstanceByID(_ context.Context, id int64) (*models.ModuleInstance, error) {
	return r.firstInstance(func(_ *dataset, row instanceRow) bool { return row.ID == id })
}

func (r *moduleRepository) FindInstance(_ context.Context, code string, year int, semester models.Semester) (*models.ModuleInstance, error) {
	return r.firstInstance(func(d *dataset, row instanceRow) bool {
		return d.modules[row.ModuleID].Code == code && row.Year == year && row.Semester == semester
	})
}

func (r *moduleRepository) FirstInstanceByCode(_ context.Context, code string) (*models.ModuleInstance, error) {
	return r.firstInstance(func(d *dataset, row instanceRow) bool {
		return d.modules[row.ModuleID].Code == code
	})
}

func (r *moduleRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.FirstInstanceByCode(ctx, code)
	if err == repositories.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *moduleRepository) GetAllInstances(_ context.Context) ([]*models.ModuleInstance, error) {
	out := make([]*models.ModuleInstance, 0)
	err := r.s.view(func(d *dataset) error {
		for _, id := range sortedKeys(d.instances) {
			out = append(out, d.hydrate(d.instances[id]))
		}
		return nil
	})
	return out, err
}

func (r *moduleRepository) AddProfessor(_ context.Context, instanceID, professorID int64) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.instances[instanceID]; !ok {
			return fmt.Errorf("module instance %d does not exist", instanceID)
		}
		if _, ok := d.professors[professorID]; !ok {
			return fmt.Errorf("professor %d does not exist", professorID)
		}
		if d.teaching[instanceID] == nil {
			d.teaching[instanceID] = make(map[int64]struct{})
		}
		d.teaching[instanceID][professorID] = struct{}{}
		return nil
	})
}

func (r *moduleRepository) RemoveProfessor(_ context.Context, instanceID, professorID int64) error {
	return r.s.view(func(d *dataset) error {
		delete(d.teaching[instanceID], professorID)
		return nil
	})
}

func (r *moduleRepository) IsTeaching(_ context.Context, instanceID, professorID int64) (bool, error) {
	var teaching bool
	err := r.s.view(func(d *dataset) error {
		_, teaching = d.teaching[instanceID][professorID]
		return nil
	})
	return teaching, err
}

func (r *moduleRepository) TeachesCode(_ context.Context, professorID int64, code string) (bool, error) {
	var teaching bool
	err := r.s.view(func(d *dataset) error {
		for iid, set := range d.teaching {
			if _, ok := set[professorID]; ok && d.modules[d.instances[iid].ModuleID].Code == code {
				teaching = true
				return nil
			}
		}
		return nil
	})
	return teaching, err
}

type ratingRepository struct{ s *Store }

func (r *ratingRepository) Create(_ context.Context, rating *models.Rating) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.instances[rating.ModuleInstanceID]; !ok {
			return fmt.Errorf("module instance %d does not exist", rating.ModuleInstanceID)
		}
		if _, ok := d.professors[rating.ProfessorID]; !ok {
			return fmt.Errorf("professor %d does not exist", rating.ProfessorID)
		}
		for _, existing := range d.ratings {
			if existing.ProfessorID == rating.ProfessorID &&
				existing.ModuleInstanceID == rating.ModuleInstanceID &&
				existing.StudentID == rating.StudentID {
				return repositories.ErrUniqueViolation
			}
		}
		if rating.CreatedAt.IsZero() {
			rating.CreatedAt = time.Now().UTC()
		}
		rating.ID = d.next("ratings")
		d.ratings[rating.ID] = *rating
		return nil
	})
}

func (r *ratingRepository) Exists(_ context.Context, professorID, instanceID int64, studentID string) (bool, error) {
	var exists bool
	err := r.s.view(func(d *dataset) error {
		for _, rating := range d.ratings {
			if rating.ProfessorID == professorID && rating.ModuleInstanceID == instanceID && rating.StudentID == studentID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *ratingRepository) ValuesByProfessor(_ context.Context) (map[int64][]int, error) {
	values := make(map[int64][]int)
	err := r.s.view(func(d *dataset) error {
		for _, id := range sortedKeys(d.ratings) {
			rating := d.ratings[id]
			values[rating.ProfessorID] = append(values[rating.ProfessorID], rating.Value)
		}
		return nil
	})
	return values, err
}

func (r *ratingRepository) ValuesForProfessorAndCode(_ context.Context, professorID int64, code string) ([]int, error) {
	values := make([]int, 0)
	err := r.s.view(func(d *dataset) error {
		for _, id := range sortedKeys(d.ratings) {
			rating := d.ratings[id]
			if rating.ProfessorID != professorID {
				continue
			}
			if d.modules[d.instances[rating.ModuleInstanceID].ModuleID].Code == code {
				values = append(values, rating.Value)
			}
		}
		return nil
	})
	return values, err
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.users[user.Username]; ok {
			return repositories.ErrUniqueViolation
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		user.ID = d.next("users")
		d.users[user.Username] = *user
		return nil
	})
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	var found *models.User
	err := r.s.view(func(d *dataset) error {
		u, ok := d.users[username]
		if !ok {
			return repositories.ErrNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	var exists bool
	err := r.s.view(func(d *dataset) error {
		_, exists = d.users[username]
		return nil
	})
	return exists, err
}

func (r *userRepository) SetActive(_ context.Context, username string, active bool) error {
	return r.s.view(func(d *dataset) error {
		u, ok := d.users[username]
		if !ok {
			return repositories.ErrNotFound
		}
		u.IsActive = active
		d.users[username] = u
		return nil
	})
}

type tokenRepository struct{ s *Store }

func (r *tokenRepository) Revoke(_ context.Context, sessionID string, expiresAt int64) error {
	return r.s.view(func(d *dataset) error {
		if _, ok := d.revoked[sessionID]; !ok {
			d.revoked[sessionID] = expiresAt
		}
		return nil
	})
}

func (r *tokenRepository) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	var revoked bool
	err := r.s.view(func(d *dataset) error {
		_, revoked = d.revoked[sessionID]
		return nil
	})
	return revoked, err
}

func (r *tokenRepository) PurgeExpired(_ context.Context, now int64) (int64, error) {
	var purged int64
	err := r.s.view(func(d *dataset) error {
		for jti, exp := range d.revoked {
			if exp < now {
				delete(d.revoked, jti)
				purged++
			}
		}
		return nil
	})
	return purged, err
}

var (
	_ repositories.Store               = (*Store)(nil)
	_ repositories.ProfessorRepository = (*professorRepository)(nil)
	_ repositories.ModuleRepository    = (*moduleRepository)(nil)
	_ repositories.RatingRepository    = (*ratingRepository)(nil)
	_ repositories.UserRepository      = (*userRepository)(nil)
	_ repositories.TokenRepository     = (*tokenRepository)(nil)
)
