package validation

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Field limits. The column sizes in the migrations match them; the
// validator aliases registered in struct.go are built from them.
const (
	ProfessorIDMaxLength   = 8
	ProfessorNameMaxLength = 64
	ModuleNameMaxLength    = 64
	ModuleCodeMaxLength    = 16
	UsernameMaxLength      = 64

	MinYear     = 2015
	MaxYear     = 2025
	MinSemester = 1
	MaxSemester = 2
	MinRating   = 1
	MaxRating   = 5
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Digits *regexp.Regexp
}{
	Digits: regexp.MustCompile(`^[0-9]+$`),
}

// IsDigits reports whether s is a non-empty run of ASCII decimal digits
func IsDigits(s string) bool {
	return CompiledPatterns.Digits.MatchString(s)
}

// ParseDigits converts a digit-only string to an int. ok is false when s
// contains anything but digits. A digit run too large for an int saturates
// to math.MaxInt so that range checks still reject it.
func ParseDigits(s string) (n int, ok bool) {
	if !IsDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// NumericValidation checks an integer against inclusive bounds
type NumericValidation struct {
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{Value: value}
}

// WithRange sets inclusive bounds
func (v *NumericValidation) WithRange(min, max int) *NumericValidation {
	v.Min = min
	v.Max = max
	return v
}

// Validate performs validation
func (v *NumericValidation) Validate() bool {
	return v.Value >= v.Min && v.Value <= v.Max
}

// IsValidRating reports whether r is within the rating scale
func IsValidRating(r int) bool {
	return NewNumericValidation(r).WithRange(MinRating, MaxRating).Validate()
}
