package models

// Semester is the half of the academic year a module instance runs in
type Semester int

const (
	SemesterFirst  Semester = 1
	SemesterSecond Semester = 2
)
