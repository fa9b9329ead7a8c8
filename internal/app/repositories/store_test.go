package repositories_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/profrate/internal/app/migrations"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/app/repositories/memory"
	"github.com/yigit/profrate/internal/db"
)

func newSQLiteStore(t *testing.T) repositories.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratings.db")
	sqlDB, err := db.OpenSQLite("file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.Migrate(sqlDB, repositories.DialectSQLite))
	return repositories.NewSQLStore(sqlDB, repositories.DialectSQLite)
}

// stores runs fn against every Store implementation
func stores(t *testing.T, fn func(t *testing.T, store repositories.Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, memory.NewStore()) })
}

type fixture struct {
	ada, alan  *models.Professor
	prog, algo *models.Module
	prog2020   *models.ModuleInstance
	prog2021   *models.ModuleInstance
	algo2020   *models.ModuleInstance
}

func seed(t *testing.T, repos *repositories.Repositories) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ada:  &models.Professor{ExternalID: "AL1", Name: "Ada Lovelace"},
		alan: &models.Professor{ExternalID: "AT1", Name: "Alan Turing"},
		prog: &models.Module{Name: "Programming", Code: "CS101"},
		algo: &models.Module{Name: "Algorithms", Code: "CS201"},
	}
	require.NoError(t, repos.Professors.Create(ctx, f.ada))
	require.NoError(t, repos.Professors.Create(ctx, f.alan))
	require.NoError(t, repos.Modules.CreateDefinition(ctx, f.prog))
	require.NoError(t, repos.Modules.CreateDefinition(ctx, f.algo))

	f.prog2020 = &models.ModuleInstance{ModuleID: f.prog.ID, Year: 2020, Semester: models.SemesterFirst}
	f.prog2021 = &models.ModuleInstance{ModuleID: f.prog.ID, Year: 2021, Semester: models.SemesterSecond}
	f.algo2020 = &models.ModuleInstance{ModuleID: f.algo.ID, Year: 2020, Semester: models.SemesterSecond}
	for _, mi := range []*models.ModuleInstance{f.prog2020, f.prog2021, f.algo2020} {
		require.NoError(t, repos.Modules.CreateInstance(ctx, mi))
	}

	require.NoError(t, repos.Modules.AddProfessor(ctx, f.prog2020.ID, f.alan.ID))
	require.NoError(t, repos.Modules.AddProfessor(ctx, f.prog2020.ID, f.ada.ID))
	require.NoError(t, repos.Modules.AddProfessor(ctx, f.prog2021.ID, f.ada.ID))
	return f
}

func TestProfessors(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()
		f := seed(t, repos)

		got, err := repos.Professors.GetByExternalID(ctx, "AL1")
		require.NoError(t, err)
		assert.Equal(t, f.ada.ID, got.ID)
		assert.Equal(t, "Ada Lovelace", got.Name)

		_, err = repos.Professors.GetByExternalID(ctx, "ZZ9")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		err = repos.Professors.Create(ctx, &models.Professor{ExternalID: "AL1", Name: "Other"})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)

		all, err := repos.Professors.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "AL1", all[0].ExternalID)
		assert.Equal(t, "AT1", all[1].ExternalID)
	})
}

func TestModuleDefinitions(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()
		f := seed(t, repos)

		byName, err := repos.Modules.GetDefinitionByName(ctx, "Programming")
		require.NoError(t, err)
		assert.Equal(t, f.prog.ID, byName.ID)

		byCode, err := repos.Modules.GetDefinitionByCode(ctx, "CS201")
		require.NoError(t, err)
		assert.Equal(t, "Algorithms", byCode.Name)

		_, err = repos.Modules.GetDefinitionByCode(ctx, "cs101")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		assert.ErrorIs(t, repos.Modules.CreateDefinition(ctx, &models.Module{Name: "Programming", Code: "CS999"}), repositories.ErrUniqueViolation)
		assert.ErrorIs(t, repos.Modules.CreateDefinition(ctx, &models.Module{Name: "Other", Code: "CS101"}), repositories.ErrUniqueViolation)

		orphan := &models.Module{Name: "Databases", Code: "CS301"}
		require.NoError(t, repos.Modules.CreateDefinition(ctx, orphan))
		n, err := repos.Modules.DeleteOrphanDefinitions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = repos.Modules.GetDefinitionByCode(ctx, "CS301")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestModuleInstances(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()
		f := seed(t, repos)

		dup := &models.ModuleInstance{ModuleID: f.prog.ID, Year: 2020, Semester: models.SemesterFirst}
		assert.ErrorIs(t, repos.Modules.CreateInstance(ctx, dup), repositories.ErrUniqueViolation)

		mi, err := repos.Modules.FindInstance(ctx, "CS101", 2020, models.SemesterFirst)
		require.NoError(t, err)
		assert.Equal(t, f.prog2020.ID, mi.ID)
		assert.Equal(t, "Programming", mi.Module.Name)
		require.Len(t, mi.Professors, 2)
		// professors come back in primary key order
		assert.Equal(t, "AL1", mi.Professors[0].ExternalID)
		assert.Equal(t, "AT1", mi.Professors[1].ExternalID)

		_, err = repos.Modules.FindInstance(ctx, "CS101", 2022, models.SemesterFirst)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		first, err := repos.Modules.FirstInstanceByCode(ctx, "CS101")
		require.NoError(t, err)
		assert.Equal(t, f.prog2020.ID, first.ID)

		exists, err := repos.Modules.CodeExists(ctx, "CS201")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repos.Modules.CodeExists(ctx, "XX000")
		require.NoError(t, err)
		assert.False(t, exists)

		all, err := repos.Modules.GetAllInstances(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{f.prog2020.ID, f.prog2021.ID, f.algo2020.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
		assert.Len(t, all[1].Professors, 1)
		assert.Empty(t, all[2].Professors)

		f.algo2020.Year = 2021
		require.NoError(t, repos.Modules.UpdateInstance(ctx, f.algo2020))
		moved, err := repos.Modules.GetInstanceByID(ctx, f.algo2020.ID)
		require.NoError(t, err)
		assert.Equal(t, 2021, moved.Year)

		f.algo2020.ModuleID = f.prog.ID
		f.algo2020.Semester = models.SemesterSecond
		assert.ErrorIs(t, repos.Modules.UpdateInstance(ctx, f.algo2020), repositories.ErrUniqueViolation)

		assert.ErrorIs(t, repos.Modules.UpdateInstance(ctx, &models.ModuleInstance{ID: 999, ModuleID: f.prog.ID, Year: 2015, Semester: 1}), repositories.ErrNotFound)
		assert.ErrorIs(t, repos.Modules.DeleteInstance(ctx, 999), repositories.ErrNotFound)
	})
}

func TestTeaching(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()
		f := seed(t, repos)

		teaching, err := repos.Modules.IsTeaching(ctx, f.prog2020.ID, f.alan.ID)
		require.NoError(t, err)
		assert.True(t, teaching)

		teaching, err = repos.Modules.IsTeaching(ctx, f.prog2021.ID, f.alan.ID)
		require.NoError(t, err)
		assert.False(t, teaching)

		// linking twice is harmless
		require.NoError(t, repos.Modules.AddProfessor(ctx, f.prog2020.ID, f.alan.ID))

		teaches, err := repos.Modules.TeachesCode(ctx, f.ada.ID, "CS101")
		require.NoError(t, err)
		assert.True(t, teaches)
		teaches, err = repos.Modules.TeachesCode(ctx, f.ada.ID, "CS201")
		require.NoError(t, err)
		assert.False(t, teaches)

		require.NoError(t, repos.Modules.RemoveProfessor(ctx, f.prog2020.ID, f.alan.ID))
		teaching, err = repos.Modules.IsTeaching(ctx, f.prog2020.ID, f.alan.ID)
		require.NoError(t, err)
		assert.False(t, teaching)
	})
}

func TestRatings(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()
		f := seed(t, repos)

		rate := func(professor *models.Professor, mi *models.ModuleInstance, student string, value int) error {
			return repos.Ratings.Create(ctx, &models.Rating{
				Value: value, StudentID: student, ModuleInstanceID: mi.ID, ProfessorID: professor.ID,
			})
		}

		require.NoError(t, rate(f.ada, f.prog2020, "alice", 5))
		require.NoError(t, rate(f.ada, f.prog2021, "alice", 2))
		require.NoError(t, rate(f.ada, f.prog2020, "bob", 4))
		require.NoError(t, rate(f.alan, f.prog2020, "alice", 3))
		assert.ErrorIs(t, rate(f.ada, f.prog2020, "alice", 1), repositories.ErrUniqueViolation)

		exists, err := repos.Ratings.Exists(ctx, f.ada.ID, f.prog2020.ID, "bob")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repos.Ratings.Exists(ctx, f.alan.ID, f.prog2020.ID, "bob")
		require.NoError(t, err)
		assert.False(t, exists)

		byProfessor, err := repos.Ratings.ValuesByProfessor(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 2, 4}, byProfessor[f.ada.ID])
		assert.Equal(t, []int{3}, byProfessor[f.alan.ID])

		values, err := repos.Ratings.ValuesForProfessorAndCode(ctx, f.ada.ID, "CS101")
		require.NoError(t, err)
		assert.Equal(t, []int{5, 2, 4}, values)

		values, err = repos.Ratings.ValuesForProfessorAndCode(ctx, f.ada.ID, "CS201")
		require.NoError(t, err)
		assert.Empty(t, values)

		// ratings go with their instance
		require.NoError(t, repos.Modules.DeleteInstance(ctx, f.prog2021.ID))
		values, err = repos.Ratings.ValuesForProfessorAndCode(ctx, f.ada.ID, "CS101")
		require.NoError(t, err)
		assert.Equal(t, []int{5, 4}, values)
	})
}

func TestUsersAndTokens(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		repos := store.Repositories()

		u := &models.User{Username: "alice", PasswordHash: "hash", IsActive: true}
		require.NoError(t, repos.Users.Create(ctx, u))
		assert.NotZero(t, u.ID)
		assert.ErrorIs(t, repos.Users.Create(ctx, &models.User{Username: "alice", PasswordHash: "x"}), repositories.ErrUniqueViolation)

		exists, err := repos.Users.UsernameExists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, repos.Users.SetActive(ctx, "alice", false))
		got, err := repos.Users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.Equal(t, "hash", got.PasswordHash)

		assert.ErrorIs(t, repos.Users.SetActive(ctx, "nobody", true), repositories.ErrNotFound)
		_, err = repos.Users.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		require.NoError(t, repos.Tokens.Revoke(ctx, "old", 100))
		require.NoError(t, repos.Tokens.Revoke(ctx, "new", 300))
		require.NoError(t, repos.Tokens.Revoke(ctx, "new", 300))

		revoked, err := repos.Tokens.IsRevoked(ctx, "old")
		require.NoError(t, err)
		assert.True(t, revoked)

		purged, err := repos.Tokens.PurgeExpired(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		revoked, err = repos.Tokens.IsRevoked(ctx, "old")
		require.NoError(t, err)
		assert.False(t, revoked)
		revoked, err = repos.Tokens.IsRevoked(ctx, "new")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestWithTransaction(t *testing.T) {
	stores(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
			if err := repos.Professors.Create(ctx, &models.Professor{ExternalID: "RB1", Name: "Rolled Back"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.Repositories().Professors.GetByExternalID(ctx, "RB1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		err = store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
			return repos.Professors.Create(ctx, &models.Professor{ExternalID: "CM1", Name: "Committed"})
		})
		require.NoError(t, err)

		got, err := store.Repositories().Professors.GetByExternalID(ctx, "CM1")
		require.NoError(t, err)
		assert.Equal(t, "Committed", got.Name)
	})
}

func TestMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.db")
	sqlDB, err := db.OpenSQLite("file:" + path)
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, migrations.Migrate(sqlDB, repositories.DialectSQLite))
	// running again is a no-op
	require.NoError(t, migrations.Migrate(sqlDB, repositories.DialectSQLite))

	version, err := migrations.Version(sqlDB, repositories.DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}
