package models

import "fmt"

// Professor is a member of staff that students can rate
type Professor struct {
	ID         int64  `json:"-" db:"id"`
	ExternalID string `json:"professorId" db:"professor_id"` // Unique, at most 8 characters
	Name       string `json:"name" db:"name"`
}

func (p *Professor) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ExternalID)
}
