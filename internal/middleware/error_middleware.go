package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// notFoundErrors are the sentinels that map to 404
var notFoundErrors = []error{
	apperrors.ErrResourceNotFound,
	apperrors.ErrUserNotFound,
	apperrors.ErrSchoolNotFound,
	apperrors.ErrMembershipNotFound,
	apperrors.ErrSubscriptionNotFound,
	apperrors.ErrStudentNotFound,
	apperrors.ErrParentNotFound,
	apperrors.ErrGradeNotFound,
	apperrors.ErrSubjectNotFound,
	apperrors.ErrRouteNotFound,
	apperrors.ErrBusNotFound,
	apperrors.ErrAttendanceNotFound,
	apperrors.ErrOnboardingNotFound,
	apperrors.ErrRecordNotFound,
}

// alreadyExistsErrors are the sentinels that map to 409
var alreadyExistsErrors = []error{
	apperrors.ErrResourceAlreadyExists,
	apperrors.ErrEmailAlreadyExists,
	apperrors.ErrSchoolAlreadyExists,
	apperrors.ErrStudentAlreadyExists,
	apperrors.ErrParentAlreadyExists,
	apperrors.ErrGradeAlreadyExists,
	apperrors.ErrSubjectAlreadyExists,
	apperrors.ErrRouteAlreadyExists,
	apperrors.ErrBusAlreadyExists,
	apperrors.ErrAttendanceAlreadyExists,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleAPIError maps service errors onto the standard error envelope.
// Custom errors carry their own message and details through unchanged.
func HandleAPIError(c *gin.Context, err error) {
	message := err.Error()
	var details interface{}
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		details = custom.Details
	}

	respond := func(status int, code dto.ErrorCode) {
		errorDetail := dto.NewErrorDetail(code, message)
		if details != nil {
			errorDetail = errorDetail.WithDetails(details)
		}
		c.JSON(status, dto.NewErrorResponse(errorDetail))
	}

	switch {
	case errors.Is(err, apperrors.ErrOnboardingNotPending):
		respond(http.StatusConflict, dto.ErrorCodeStateConflict)
	case errors.Is(err, apperrors.ErrRejectionReasonMissing):
		respond(http.StatusBadRequest, dto.ErrorCodeRejectionReasonMissing)
	case errors.Is(err, apperrors.ErrNoActiveSchool):
		respond(http.StatusConflict, dto.ErrorCodeNoActiveSchool)
	case errors.Is(err, apperrors.ErrSchoolNotEligible):
		respond(http.StatusConflict, dto.ErrorCodeSchoolNotEligible)
	case errors.Is(err, apperrors.ErrStaleSessionSchool):
		respond(http.StatusUnauthorized, dto.ErrorCodeStaleSession)
	case errors.Is(err, apperrors.ErrRouteInUse):
		respond(http.StatusConflict, dto.ErrorCodeResourceInUse)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials)
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusUnauthorized, dto.ErrorCodeUnauthorized)
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken)
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrSessionNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden)
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed)
	case isAny(err, notFoundErrors):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound)
	case isAny(err, alreadyExistsErrors):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists)
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists)
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
	}
}
