package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/repositories/memory"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

const fixture = `
professors:
  - id: AL1
    name: Ada Lovelace
  - id: AT1
    name: Alan Turing
modules:
  - name: Programming
    code: CS101
    year: 2020
    semester: 1
    professors: [AL1, AT1]
  - name: Algorithms
    code: CS201
    year: 2021
    semester: 2
    professors: [AT1]
users:
  - username: alice
    password: secret
  - username: mallory
    password: secret
    inactive: true
`

func newServices() *services.Services {
	return services.NewServices(memory.NewStore(), auth.NewPasswordHasher(bcrypt.MinCost), zerolog.Nop())
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	svc := newServices()

	f, err := ReadFile(writeFixture(t, fixture))
	require.NoError(t, err)

	summary, err := Load(ctx, svc, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Professors: 2, Modules: 2, Users: 2}, summary)

	modules, err := svc.Catalog.ListModules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", modules.NumItems)

	_, err = svc.Auth.Login(ctx, &dto.LoginRequest{Username: "mallory", Password: "secret"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	// a second run only skips
	summary, err = Load(ctx, svc, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 6}, summary)
}

func TestLoadCollectsErrors(t *testing.T) {
	f := &Fixture{
		Professors: []Professor{{ID: "AL1", Name: "Ada Lovelace"}},
		Modules: []Module{
			{Name: "Programming", Code: "CS101", Year: 2020, Semester: 1, Professors: []string{"ZZ9"}},
			{Name: "Programming", Code: "CS101", Year: 2021, Semester: 1, Professors: []string{"AL1"}},
		},
	}

	summary, err := Load(context.Background(), newServices(), f, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)
	assert.Contains(t, err.Error(), "module CS101 2020/1")
	assert.Equal(t, 1, summary.Modules)
}

func TestReadFileRejectsBadYAML(t *testing.T) {
	_, err := ReadFile(writeFixture(t, "professors: [\n"))
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
