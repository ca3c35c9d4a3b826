package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/auth"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// Context keys set by JWTAuth
const (
	ContextUserKey    = "currentUser"
	ContextSessionKey = "currentSession"
)

// AuthMiddleware validates access tokens and loads the server-side session
// they are bound to. A token whose session row is gone is treated as
// revoked, which is how logout and stale-school flushes take effect.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      *repositories.UserRepository
	sessions   *repositories.SessionRepository
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users *repositories.UserRepository, sessions *repositories.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		sessions:   sessions,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth validates the bearer token, loads the session named by the
// token's jti claim and attaches the user and session to the context.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		session, err := m.sessions.GetByID(c.Request.Context(), claims.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrSessionNotFound) {
				abortUnauthorized(c, dto.ErrorCodeTokenNotFound, "Session has been flushed, sign in again")
				return
			}
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Account not found")
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Account is disabled")
			return
		}

		if err := m.sessions.Touch(c.Request.Context(), session.ID); err != nil {
			logger.Warn().Err(err).Str("sessionID", session.ID).Msg("Failed to touch session")
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextSessionKey, session)

		c.Next()
	}
}

// RequireSuperuser guards platform administration surfaces
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsSuperuser {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("This operation is restricted to platform administrators")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by JWTAuth, or nil
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentSession returns the session set by JWTAuth, or nil
func CurrentSession(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
