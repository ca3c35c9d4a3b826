package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// SessionStore is the session state the resolver needs
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
	SetSchool(ctx context.Context, id string, schoolID *int64, schoolName *string) error
	Delete(ctx context.Context, id string) error
}

// MembershipStore is the membership state the resolver needs
type MembershipStore interface {
	ListActiveByUser(ctx context.Context, userID int64) ([]*models.Membership, error)
	GetOrCreate(ctx context.Context, userID, schoolID int64) (*models.Membership, error)
}

// SchoolStore is the school state the resolver needs
type SchoolStore interface {
	GetByID(ctx context.Context, id int64) (*models.School, error)
	HasActiveSubscription(ctx context.Context, id int64) (bool, error)
}

// TenantResolution is the outcome of resolving a session's school binding
type TenantResolution struct {
	SchoolID   *int64
	SchoolName *string

	// NeedsSelection is set when the binding came from a non-primary
	// fallback membership. Interactive callers get sent to the school
	// selection page; API callers proceed with the binding.
	NeedsSelection bool

	// SignedOut is set when the user holds no active membership at all.
	// Interactive callers get signed out; API callers proceed unbound
	// and school-scoped operations fail with "no active school".
	SignedOut bool
}

// TenantService resolves and switches the school a session is bound to
type TenantService interface {
	// Resolve determines the session's school binding. A session id that
	// points at a vanished or deactivated school is flushed and reported
	// as stale; there is never a silent fallback to another school.
	Resolve(ctx context.Context, session *models.Session) (*TenantResolution, error)

	// SelectSchool pins the session to one of the user's schools.
	SelectSchool(ctx context.Context, session *models.Session, userID, schoolID int64) error
}

type tenantServiceImpl struct {
	sessions    SessionStore
	memberships MembershipStore
	schools     SchoolStore
}

// NewTenantService creates a new tenant service instance
func NewTenantService(sessions SessionStore, memberships MembershipStore, schools SchoolStore) TenantService {
	return &tenantServiceImpl{
		sessions:    sessions,
		memberships: memberships,
		schools:     schools,
	}
}

// Resolve implements the binding order: session school first, then the
// primary membership, then any active membership, then nothing. The
// outcome is deterministic for a given database state: memberships are
// ordered primary first, lowest id on ties.
func (s *tenantServiceImpl) Resolve(ctx context.Context, session *models.Session) (*TenantResolution, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: no session", apperrors.ErrSessionNotFound)
	}

	if session.SchoolID != nil {
		school, err := s.schools.GetByID(ctx, *session.SchoolID)
		if err != nil && !errors.Is(err, apperrors.ErrSchoolNotFound) {
			return nil, err
		}
		if err == nil && school.IsActive {
			return &TenantResolution{SchoolID: session.SchoolID, SchoolName: session.SchoolName}, nil
		}

		// The session points at a school that is gone or deactivated.
		// Flush the session so the user re-authenticates cleanly.
		logger.Warn().
			Str("sessionID", session.ID).
			Int64("schoolID", *session.SchoolID).
			Msg("Session bound to stale school, flushing")
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			return nil, delErr
		}
		return nil, apperrors.ErrStaleSessionSchool
	}

	memberships, err := s.memberships.ListActiveByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// Memberships arrive primary first, then lowest id. Skip any whose
	// school has been deactivated.
	var chosen *models.Membership
	for _, m := range memberships {
		if m.School != nil && !m.School.IsActive {
			continue
		}
		chosen = m
		break
	}

	if chosen == nil {
		return &TenantResolution{SignedOut: true}, nil
	}

	var name *string
	if chosen.School != nil {
		name = &chosen.School.Name
	}
	if err := s.sessions.SetSchool(ctx, session.ID, &chosen.SchoolID, name); err != nil {
		return nil, err
	}
	session.SchoolID = &chosen.SchoolID
	session.SchoolName = name

	return &TenantResolution{
		SchoolID:       &chosen.SchoolID,
		SchoolName:     name,
		NeedsSelection: !chosen.IsPrimary,
	}, nil
}

// SelectSchool pins the session to a school the user belongs to. Only
// schools with an active subscription are selectable.
func (s *tenantServiceImpl) SelectSchool(ctx context.Context, session *models.Session, userID, schoolID int64) error {
	eligible, err := s.schools.HasActiveSubscription(ctx, schoolID)
	if err != nil {
		return err
	}
	if !eligible {
		return apperrors.ErrSchoolNotEligible
	}

	membership, err := s.memberships.GetOrCreate(ctx, userID, schoolID)
	if err != nil {
		return err
	}
	if !membership.IsActive {
		return apperrors.ErrMembershipNotFound
	}

	school, err := s.schools.GetByID(ctx, schoolID)
	if err != nil {
		return err
	}

	if err := s.sessions.SetSchool(ctx, session.ID, &school.ID, &school.Name); err != nil {
		return err
	}
	session.SchoolID = &school.ID
	session.SchoolName = &school.Name

	return nil
}
