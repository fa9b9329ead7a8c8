package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories/memory"
	pkgauth "github.com/yigit/profrate/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

var alice = auth.Identity{Username: "alice", SessionID: "s1"}

type testEnv struct {
	store *memory.Store
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	return &testEnv{
		store: store,
		svc:   NewServices(store, pkgauth.NewPasswordHasher(bcrypt.MinCost), zerolog.Nop()),
	}
}

func (e *testEnv) professor(t *testing.T, id, name string) {
	t.Helper()
	_, err := e.svc.Professors.Create(context.Background(), ProfessorInput{ID: id, Name: name})
	require.NoError(t, err)
}

func (e *testEnv) instance(t *testing.T, name, code string, year, semester int, professors ...string) *models.ModuleInstance {
	t.Helper()
	mi, err := e.svc.Modules.CreateInstance(context.Background(), ModuleInstanceInput{
		Name: name, Code: code, Year: year, Semester: semester,
	}, professors)
	require.NoError(t, err)
	return mi
}

// seedCatalog creates two professors and three instances of two modules
func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	e.professor(t, "AL1", "Ada Lovelace")
	e.professor(t, "AT1", "Alan Turing")
	e.instance(t, "Programming", "CS101", 2020, 1, "AL1", "AT1")
	e.instance(t, "Programming", "CS101", 2021, 2, "AL1")
	e.instance(t, "Algorithms", "CS201", 2020, 2, "AT1")
}
