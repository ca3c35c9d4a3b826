package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Tenant errors
var (
	ErrSchoolNotFound       = errors.New("school not found")
	ErrSchoolAlreadyExists  = errors.New("school with this name or code already exists")
	ErrSchoolNotEligible    = errors.New("school has no active subscription")
	ErrNoActiveSchool       = errors.New("no active school context")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrStaleSessionSchool   = errors.New("session references a school that no longer exists")
)

// Student errors
var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentAlreadyExists = errors.New("student with this email already exists in the school")
)

// Parent errors
var (
	ErrParentNotFound      = errors.New("parent not found")
	ErrParentAlreadyExists = errors.New("parent with this email already exists in the school")
)

// Grade / Subject / Route / Bus errors
var (
	ErrGradeNotFound        = errors.New("grade not found")
	ErrGradeAlreadyExists   = errors.New("grade with this name already exists in the school")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrSubjectAlreadyExists = errors.New("subject with this name already exists in the school")
	ErrRouteNotFound        = errors.New("route not found")
	ErrRouteAlreadyExists   = errors.New("route with this name already exists in the school")
	ErrRouteInUse           = errors.New("route has buses assigned and cannot be deleted")
	ErrBusNotFound          = errors.New("bus not found")
	ErrBusAlreadyExists     = errors.New("bus with this number already exists in the school")
)

// Attendance errors
var (
	ErrAttendanceNotFound      = errors.New("attendance record not found")
	ErrAttendanceAlreadyExists = errors.New("attendance already recorded for this student and date")
)

// Onboarding errors
var (
	ErrOnboardingNotFound     = errors.New("onboarding request not found")
	ErrOnboardingNotPending   = errors.New("onboarding request is not pending")
	ErrRejectionReasonMissing = errors.New("rejection reason is required")
)

// Record errors
var (
	ErrRecordNotFound = errors.New("record not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewStateConflictError creates a conflict error that reports the current
// lifecycle state of the resource, so the caller can explain it to a human.
func NewStateConflictError(currentState string) error {
	return &CustomError{
		Err:     ErrOnboardingNotPending,
		Message: "request is already " + currentState,
		Details: map[string]interface{}{"status": currentState},
	}
}

// Is returns whether target matches err or any of the errors in errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
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

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
