package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	"github.com/yigit/profrate/internal/pkg/validation"
)

// ConfigureBinding makes gin's validator report json/form field names
func ConfigureBinding() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.UseJSONNames(v)
	}
}

// BindJSON decodes the request body into obj, rejecting unknown fields, and
// validates it against its binding tags
func BindJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return apperrors.NewInvalidInputError("request body is required")
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(obj); err != nil {
		return apperrors.NewInvalidInputError(describeDecodeError(err))
	}

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return apperrors.NewInvalidInputError(validation.Describe(err))
	}
	return nil
}

// BindQuery binds and validates query string parameters
func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return apperrors.NewInvalidInputError(validation.Describe(err))
	}
	return nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind())
	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		return "invalid request body: " + err.Error()
	}
}
