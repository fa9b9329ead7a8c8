// Package seed loads professors, module instances and accounts from a YAML
// fixture. Records that already exist are left alone, so a fixture can be
// applied repeatedly.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	appServices "github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"gopkg.in/yaml.v3"
)

// Fixture is the document layout of a seed file
type Fixture struct {
	Professors []Professor `yaml:"professors"`
	Modules    []Module    `yaml:"modules"`
	Users      []User      `yaml:"users"`
}

// Professor is one professor entry
type Professor struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Module is one module instance entry
type Module struct {
	Name       string   `yaml:"name"`
	Code       string   `yaml:"code"`
	Year       int      `yaml:"year"`
	Semester   int      `yaml:"semester"`
	Professors []string `yaml:"professors"`
}

// User is one account entry
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Inactive bool   `yaml:"inactive"`
}

// Summary counts what a Load call created
type Summary struct {
	Professors int
	Modules    int
	Users      int
	Skipped    int
}

// ReadFile parses a fixture file
func ReadFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Load creates every record of f through the services. Duplicates are
// skipped; other failures are collected and returned together once every
// entry has been tried.
func Load(ctx context.Context, svc *appServices.Services, f *Fixture, lgr zerolog.Logger) (Summary, error) {
	var (
		summary  Summary
		finalErr error
	)

	// skip reports whether err is nil or a tolerated duplicate
	skip := func(err error, duplicate error, what string) bool {
		switch {
		case err == nil:
			return false
		case errors.Is(err, duplicate):
			lgr.Debug().Str("entry", what).Msg("Seed entry already exists, skipping")
			summary.Skipped++
		default:
			lgr.Error().Err(err).Str("entry", what).Msg("Error creating seed entry")
			finalErr = errors.Join(finalErr, fmt.Errorf("%s: %w", what, err))
		}
		return true
	}

	for _, p := range f.Professors {
		_, err := svc.Professors.Create(ctx, appServices.ProfessorInput{ID: p.ID, Name: p.Name})
		if !skip(err, apperrors.ErrDuplicateProfessor, "professor "+p.ID) {
			summary.Professors++
		}
	}

	for _, m := range f.Modules {
		in := appServices.ModuleInstanceInput{Name: m.Name, Code: m.Code, Year: m.Year, Semester: m.Semester}
		what := fmt.Sprintf("module %s %d/%d", m.Code, m.Year, m.Semester)
		_, err := svc.Modules.CreateInstance(ctx, in, m.Professors)
		if !skip(err, apperrors.ErrDuplicateModuleInstance, what) {
			summary.Modules++
		}
	}

	for _, u := range f.Users {
		what := "user " + u.Username
		_, err := svc.Auth.CreateUser(ctx, u.Username, u.Password)
		if skip(err, apperrors.ErrDuplicateUsername, what) {
			continue
		}
		summary.Users++
		if u.Inactive {
			if err := svc.Auth.SetActive(ctx, u.Username, false); err != nil {
				finalErr = errors.Join(finalErr, fmt.Errorf("%s: %w", what, err))
			}
		}
	}

	lgr.Info().
		Int("professors", summary.Professors).
		Int("modules", summary.Modules).
		Int("users", summary.Users).
		Int("skipped", summary.Skipped).
		Msg("Seed data loaded")
	return summary, finalErr
}
