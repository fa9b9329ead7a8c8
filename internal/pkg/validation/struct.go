package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	UseJSONNames(v)
	RegisterAliases(v)
	return v
}

// RegisterAliases adds the domain field rules to v:
// professor_id, professor_name, module_name, module_code, module_year and
// semester.
func RegisterAliases(v *validator.Validate) {
	v.RegisterAlias("professor_id", fmt.Sprintf("max=%d", ProfessorIDMaxLength))
	v.RegisterAlias("professor_name", fmt.Sprintf("max=%d", ProfessorNameMaxLength))
	v.RegisterAlias("module_name", fmt.Sprintf("max=%d", ModuleNameMaxLength))
	v.RegisterAlias("module_code", fmt.Sprintf("max=%d", ModuleCodeMaxLength))
	v.RegisterAlias("module_year", fmt.Sprintf("min=%d,max=%d", MinYear, MaxYear))
	v.RegisterAlias("semester", fmt.Sprintf("min=%d,max=%d", MinSemester, MaxSemester))
}

// UseJSONNames makes v report fields by their json or form tag name
func UseJSONNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// Struct validates s against its `validate` tags and returns a readable
// summary of every failed rule, or nil
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return errors.New(Describe(err))
	}
	return nil
}

// Describe turns validator errors into a single human readable message
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatValidationError(e))
	}
	return strings.Join(messages, "; ")
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	// aliases report the rule they expand to
	switch e.ActualTag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "alphanum":
		return e.Field() + " must contain only letters and digits"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
