package apperrors

import "errors"

// Error categories. Every error surfaced to a client unwraps to exactly one of these.
var (
	ErrBadMethod            = errors.New("bad method")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrRelationViolation    = errors.New("relation violation")
)

// Request errors
var (
	ErrInvalidMethod = NewCustomError(ErrBadMethod, "invalid request method.").WithCode("bad_method")
	ErrLoginRequired = NewCustomError(ErrNotAuthenticated, "login is required to use this function").WithCode("not_authenticated")
	ErrLoggedIn      = NewCustomError(ErrAlreadyAuthenticated, "cannot register a new user while logged in").WithCode("already_authenticated")
)

// Authentication errors
var (
	ErrInvalidCredentials = NewCustomError(ErrAuthenticationFailed, "invalid credentials").WithCode("invalid_credentials")
	ErrAccountDisabled    = NewCustomError(ErrAuthenticationFailed, "inactive account").WithCode("inactive_account")
)

// Lookup errors
var (
	ErrModuleNotFound          = NewCustomError(ErrNotFound, "such module does not exist").WithCode("module_not_found")
	ErrProfessorNotFound       = NewCustomError(ErrNotFound, "such professor does not exist").WithCode("professor_not_found")
	ErrModuleInstanceNotFound  = NewCustomError(ErrNotFound, "such module instance does not exist").WithCode("module_instance_not_found")
	ErrUserNotFound            = NewCustomError(ErrNotFound, "such user does not exist").WithCode("user_not_found")
	ErrNoRatings               = NewCustomError(ErrNotFound, "such professor does not have any ratings for modules with code").WithCode("no_ratings")
	ErrProfessorNotTeaching    = NewCustomError(ErrRelationViolation, "such professor does not teach this module").WithCode("professor_not_teaching")
	ErrProfessorNotTeachingAny = NewCustomError(ErrRelationViolation, "such professor does not teach any modules with code").WithCode("professor_not_teaching_code")
)

// Uniqueness errors
var (
	ErrDuplicateUsername         = NewCustomError(ErrConflict, "registration failed: username exists").WithCode("duplicate_username")
	ErrDuplicateModuleDefinition = NewCustomError(ErrConflict, "a module with either the given name or code already exists").WithCode("duplicate_module_definition")
	ErrDuplicateModuleInstance   = NewCustomError(ErrConflict, "this module instance already exists").WithCode("duplicate_module_instance")
	ErrDuplicateProfessor        = NewCustomError(ErrConflict, "a professor with this id already exists").WithCode("duplicate_professor")
	ErrDuplicateRating           = NewCustomError(ErrConflict, "you have already rated this professor for this module").WithCode("duplicate_rating")
)

// Validation errors
var (
	ErrRatingNotNumeric = NewCustomError(ErrInvalidInput, "provided rating is not a number").WithCode("rating_not_numeric")
	ErrRatingRange      = NewCustomError(ErrInvalidInput, "rating has to be an integer between 1 and 5").WithCode("rating_range")
)

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
		Code:    "not_found",
	}
}

// NewInvalidInputError creates an invalid-input error with a message
func NewInvalidInputError(message string) error {
	return &CustomError{
		Err:     ErrInvalidInput,
		Message: message,
		Code:    "validation_failed",
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// CodeOf returns the machine code of the first CustomError in err's chain.
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}
	return "internal_error"
}
