package models

import "time"

// Rating is a student's 1-5 score for a professor within one module instance
type Rating struct {
	ID               int64     `json:"id" db:"id"`
	Value            int       `json:"rating" db:"rating"`
	StudentID        string    `json:"studentId" db:"student_id"`
	ModuleInstanceID int64     `json:"moduleInstanceId" db:"module_instance_id"`
	ProfessorID      int64     `json:"professorId" db:"professor_id"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
