package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// Context keys set by ResolveTenant
const (
	ContextSchoolIDKey   = "activeSchoolID"
	ContextSchoolNameKey = "activeSchoolName"
)

// Interactive redirect targets
const (
	loginPath           = "/portal/login"
	schoolSelectionPath = "/portal/select-school"
)

// TenantMiddleware binds each request to the school its session resolves
// to. API callers get JSON errors; interactive portal callers get
// redirects to the login or school selection pages instead.
type TenantMiddleware struct {
	tenants services.TenantService
}

// NewTenantMiddleware creates a new TenantMiddleware
func NewTenantMiddleware(tenants services.TenantService) *TenantMiddleware {
	return &TenantMiddleware{tenants: tenants}
}

// ResolveTenant resolves the session's school binding and stores it in the
// request context. It must run after JWTAuth.
func (m *TenantMiddleware) ResolveTenant(interactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		resolution, err := m.tenants.Resolve(c.Request.Context(), session)
		if err != nil {
			if errors.Is(err, apperrors.ErrStaleSessionSchool) {
				// The session was flushed; the user has to sign in again.
				if interactive {
					c.Redirect(http.StatusFound, loginPath)
					c.Abort()
					return
				}
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeStaleSession, "Your school is no longer available, sign in again")
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
				return
			}
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		if resolution.SignedOut {
			if interactive {
				c.Redirect(http.StatusFound, loginPath)
				c.Abort()
				return
			}
			// API callers proceed unbound; school-scoped handlers reject
			// the request with "no active school".
			c.Next()
			return
		}

		if resolution.NeedsSelection && interactive {
			c.Redirect(http.StatusFound, schoolSelectionPath)
			c.Abort()
			return
		}

		c.Set(ContextSchoolIDKey, *resolution.SchoolID)
		if resolution.SchoolName != nil {
			c.Set(ContextSchoolNameKey, *resolution.SchoolName)
		}

		c.Next()
	}
}

// ActiveSchoolID returns the school the request is bound to, or 0
func ActiveSchoolID(c *gin.Context) int64 {
	value, exists := c.Get(ContextSchoolIDKey)
	if !exists {
		return 0
	}
	id, ok := value.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireSchool rejects requests that resolved without a school binding
func RequireSchool() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActiveSchoolID(c) == 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeNoActiveSchool, "No active school membership").
				WithDetails("Join a school or select one before using this endpoint")
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
