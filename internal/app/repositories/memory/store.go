// Package memory provides an in-process repositories.Store with the same
// uniqueness and cascade rules as the SQL schema. It backs service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories"
)

type instanceRow struct {
	ID       int64
	ModuleID int64
	Year     int
	Semester models.Semester
}

type dataset struct {
	seq        map[string]int64
	professors map[int64]models.Professor
	modules    map[int64]models.Module
	instances  map[int64]instanceRow
	teaching   map[int64]map[int64]struct{}
	ratings    map[int64]models.Rating
	users      map[string]models.User
	revoked    map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		seq:        make(map[string]int64),
		professors: make(map[int64]models.Professor),
		modules:    make(map[int64]models.Module),
		instances:  make(map[int64]instanceRow),
		teaching:   make(map[int64]map[int64]struct{}),
		ratings:    make(map[int64]models.Rating),
		users:      make(map[string]models.User),
		revoked:    make(map[string]int64),
	}
}

func (d *dataset) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.professors {
		c.professors[k] = v
	}
	for k, v := range d.modules {
		c.modules[k] = v
	}
	for k, v := range d.instances {
		c.instances[k] = v
	}
	for k, set := range d.teaching {
		cs := make(map[int64]struct{}, len(set))
		for p := range set {
			cs[p] = struct{}{}
		}
		c.teaching[k] = cs
	}
	for k, v := range d.ratings {
		c.ratings[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.revoked {
		c.revoked[k] = v
	}
	return c
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Store is a mutex guarded in-memory repositories.Store. Transactions are
// serialized and restore a snapshot when the callback fails.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  *dataset
	repos *repositories.Repositories
}

// NewStore returns an empty store
func NewStore() *Store {
	s := &Store{data: newDataset()}
	s.repos = &repositories.Repositories{
		Professors: &professorRepository{s: s},
		Modules:    &moduleRepository{s: s},
		Ratings:    &ratingRepository{s: s},
		Users:      &userRepository{s: s},
		Tokens:     &tokenRepository{s: s},
	}
	return s
}

// Repositories returns the store's repositories
func (s *Store) Repositories() *repositories.Repositories {
	return s.repos
}

// WithTransaction runs fn and rolls every change back if it returns an error
func (s *Store) WithTransaction(ctx context.Context, fn repositories.TxFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.repos); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// view runs f with the data locked
func (s *Store) view(f func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.data)
}
