package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	pkgauth "github.com/skulz/skubackend/internal/pkg/auth"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// UserStore is the user state the auth flow needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// ProvisioningStore backfills memberships for new users
type ProvisioningStore interface {
	MembershipStore
	EnsureForSchools(ctx context.Context, userID int64, schoolIDs []int64) error
}

// SchoolDirectory lists the schools new users are provisioned into
type SchoolDirectory interface {
	SchoolStore
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// SessionWriter is the session lifecycle surface of the auth flow
type SessionWriter interface {
	SessionStore
	Create(ctx context.Context, session *models.Session) error
}

// LoginResult bundles everything a successful login produces
type LoginResult struct {
	Token      string
	ExpiresIn  int
	User       *models.User
	Session    *models.Session
	Resolution *TenantResolution
}

// AuthService handles registration, login and session management
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
}

type authServiceImpl struct {
	users       UserStore
	memberships ProvisioningStore
	schools     SchoolDirectory
	sessions    SessionWriter
	tenants     TenantService
	jwt         *pkgauth.JWTService
	tokenExp    time.Duration
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	users UserStore,
	memberships ProvisioningStore,
	schools SchoolDirectory,
	sessions SessionWriter,
	tenants TenantService,
	jwtService *pkgauth.JWTService,
	tokenExp time.Duration,
) AuthService {
	return &authServiceImpl{
		users:       users,
		memberships: memberships,
		schools:     schools,
		sessions:    sessions,
		tenants:     tenants,
		jwt:         jwtService,
		tokenExp:    tokenExp,
	}
}

// Register creates a staff account and provisions one membership per
// active school so the new user resolves a tenant immediately. The first
// membership created becomes the primary.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, req.Role)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		IsActive:  true,
		Role: &models.UserRole{
			Role:       req.Role,
			Department: req.Department,
			IsActive:   true,
		},
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	user.Role.UserID = id

	schoolIDs, err := s.schools.ListActiveIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.memberships.EnsureForSchools(ctx, id, schoolIDs); err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", id).Str("role", string(req.Role)).Msg("User registered")

	return user, nil
}

// Login verifies credentials, creates a server-side session and resolves
// the session's school binding. The token's jti is the session id, so
// deleting the session row invalidates the token.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !pkgauth.CheckPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokenExp),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	resolution, err := s.tenants.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}

	role := ""
	if user.Role != nil {
		role = string(user.Role.Role)
	}
	token, expiresIn, err := s.jwt.GenerateToken(user.ID, user.Email, role, user.IsSuperuser, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to stamp last login")
	}

	logger.Info().Int64("userID", user.ID).Str("sessionID", session.ID).Msg("User logged in")

	return &LoginResult{
		Token:      token,
		ExpiresIn:  expiresIn,
		User:       user,
		Session:    session,
		Resolution: resolution,
	}, nil
}

// Logout flushes the session. Flushing an already flushed session is a no-op.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// GetProfile returns the current user with the role record attached
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}
