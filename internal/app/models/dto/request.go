package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotScalar is returned when a numeric field holds an object, array or null
var ErrNotScalar = errors.New("must be a number or a numeric string")

// NumericString accepts either a JSON number or a JSON string and keeps its
// textual form, so that "3" and 3 are both accepted and non-numeric text can
// be reported by the service layer with a precise reason.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrNotScalar
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	case '{', '[', 'n':
		return ErrNotScalar
	default:
		// numbers and booleans keep their literal text
		*n = NumericString(data)
		return nil
	}
}

// String returns the raw text
func (n NumericString) String() string {
	return string(n)
}

// RateRequest is the body of a rating submission
type RateRequest struct {
	ProfessorID string        `json:"professor_id" binding:"required"`
	ModuleCode  string        `json:"module_code" binding:"required"`
	Year        NumericString `json:"year" binding:"required"`
	Semester    NumericString `json:"semester" binding:"required"`
	Rating      NumericString `json:"rating" binding:"required"`
}

// AverageRequest selects the ratings of one professor across every instance
// of one module code
type AverageRequest struct {
	ModuleCode  string `json:"module_code" form:"module_code" binding:"required"`
	ProfessorID string `json:"professor_id" form:"professor_id" binding:"required"`
}
