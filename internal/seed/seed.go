package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/db"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	pkgAuth "github.com/skulz/skubackend/internal/pkg/auth"
)

const (
	defaultSchoolCode = "DEFAULT"
	defaultAdminEmail = "admin@skubackend.app"

	// Initial credential for the seeded superuser. Deployments are
	// expected to rotate it after first login.
	defaultAdminPassword = "Admin123!"
)

// EnsureBaseline makes a fresh database usable: it guarantees one active
// school with a live subscription, one superuser admin account, and a
// membership for every active user in every active school. All steps are
// idempotent, so running it on every startup is safe.
func EnsureBaseline(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	repos := repositories.NewRepositories(database)

	lgr.Info().Msg("Checking/Creating baseline data...")
	var finalErr error

	schoolID, err := ensureDefaultSchool(ctx, repos.SchoolRepository, lgr)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if schoolID > 0 {
		if err := ensureSubscription(ctx, repos.SchoolRepository, schoolID, lgr); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := ensureAdminUser(ctx, repos.UserRepository, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if err := backfillMemberships(ctx, repos, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Baseline data check finished.")
	return finalErr
}

// ensureDefaultSchool creates the DEFAULT school if no school carries
// that code yet, and returns its ID either way.
func ensureDefaultSchool(ctx context.Context, schools *repositories.SchoolRepository, lgr zerolog.Logger) (int64, error) {
	existing, err := schools.GetByCode(ctx, defaultSchoolCode)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrSchoolNotFound) {
		lgr.Error().Err(err).Msg("Error looking up default school")
		return 0, err
	}

	school := &models.School{
		Name:     "Default School",
		Code:     defaultSchoolCode,
		Email:    "office@skubackend.app",
		Country:  "Canada",
		IsActive: true,
	}
	id, err := schools.Create(ctx, school)
	if err != nil {
		if errors.Is(err, apperrors.ErrSchoolAlreadyExists) {
			// Lost a race with another instance; re-read.
			if existing, errGet := schools.GetByCode(ctx, defaultSchoolCode); errGet == nil {
				return existing.ID, nil
			}
		}
		lgr.Error().Err(err).Msg("Error creating default school")
		return 0, err
	}

	lgr.Info().Int64("schoolID", id).Msg("Default school created")
	return id, nil
}

// ensureSubscription puts the default school on an active unlimited plan
// so tenant selection works out of the box.
func ensureSubscription(ctx context.Context, schools *repositories.SchoolRepository, schoolID int64, lgr zerolog.Logger) error {
	active, err := schools.HasActiveSubscription(ctx, schoolID)
	if err != nil {
		lgr.Error().Err(err).Int64("schoolID", schoolID).Msg("Error checking default school subscription")
		return err
	}
	if active {
		return nil
	}

	sub := &models.Subscription{
		SchoolID:    schoolID,
		Plan:        models.PlanPro,
		Status:      models.SubscriptionActive,
		MaxStudents: 0,
		MaxUsers:    0,
		StartDate:   time.Now(),
	}
	if err := schools.UpsertSubscription(ctx, sub); err != nil {
		lgr.Error().Err(err).Int64("schoolID", schoolID).Msg("Error creating default subscription")
		return err
	}

	lgr.Info().Int64("schoolID", schoolID).Msg("Default subscription activated")
	return nil
}

// ensureAdminUser creates the seeded superuser if the email is free.
func ensureAdminUser(ctx context.Context, users *repositories.UserRepository, lgr zerolog.Logger) error {
	exists, err := users.EmailExists(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")
	hashed, err := pkgAuth.HashPassword(defaultAdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Email:       defaultAdminEmail,
		Password:    hashed,
		FirstName:   "System",
		LastName:    "Administrator",
		IsSuperuser: true,
		IsActive:    true,
		Role: &models.UserRole{
			Role:     models.RoleAdmin,
			IsActive: true,
		},
	}

	adminID, err := users.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created")
	return nil
}

// backfillMemberships grants every active user a membership in every
// active school. New schools and users created outside the registration
// flow pick up their memberships here on the next startup.
func backfillMemberships(ctx context.Context, repos *repositories.Repositories, lgr zerolog.Logger) error {
	schoolIDs, err := repos.SchoolRepository.ListActiveIDs(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing active schools for membership backfill")
		return err
	}
	if len(schoolIDs) == 0 {
		return nil
	}

	userIDs, err := repos.UserRepository.ListActiveIDs(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing active users for membership backfill")
		return err
	}

	var finalErr error
	for _, userID := range userIDs {
		if err := repos.MembershipRepository.EnsureForSchools(ctx, userID, schoolIDs); err != nil {
			lgr.Error().Err(err).Int64("userID", userID).Msg("Error backfilling memberships")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}
