package models

import "fmt"

// Module is a course definition. Name and code each map to exactly one module.
type Module struct {
	ID   int64  `json:"-" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}

func (m *Module) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Code)
}

// ModuleInstance is an offering of a Module in a given year and semester
type ModuleInstance struct {
	ID       int64    `json:"id" db:"id"`
	ModuleID int64    `json:"-" db:"module_id"`
	Year     int      `json:"year" db:"year"`
	Semester Semester `json:"semester" db:"semester"`

	// Relations (populated when needed)
	Module     *Module      `json:"module,omitempty"`
	Professors []*Professor `json:"professors,omitempty"`
}

// TaughtBy reports whether the professor with the given primary key is
// among the loaded teaching professors
func (mi *ModuleInstance) TaughtBy(professorID int64) bool {
	for _, p := range mi.Professors {
		if p.ID == professorID {
			return true
		}
	}
	return false
}
