package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulz/skubackend/internal/app/migrations"
	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/db"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and
// applies the migrations. Tests that need a real database are skipped
// when the variable is unset.
func setupTestDB(t *testing.T) *db.PostgresDB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool).MigrateFromDirectory("../../../migrations"))
	return &db.PostgresDB{Pool: pool}
}

// onboardingFixture is a school with one staff user, one parent and one
// subject, isolated from other test runs by a unique suffix.
type onboardingFixture struct {
	repos     *Repositories
	schoolID  int64
	userID    int64
	parentID  int64
	subjectID int64
}

func newOnboardingFixture(t *testing.T, database *db.PostgresDB) *onboardingFixture {
	t.Helper()
	ctx := context.Background()
	repos := NewRepositories(database)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	schoolID, err := repos.SchoolRepository.Create(ctx, &models.School{
		Name:     "Integration School " + suffix,
		Code:     "IT" + suffix,
		Email:    "office+" + suffix + "@example.com",
		Country:  "Canada",
		IsActive: true,
	})
	require.NoError(t, err)

	userID, err := repos.UserRepository.Create(ctx, &models.User{
		Email:     "staff+" + suffix + "@example.com",
		Password:  "not-a-real-hash",
		FirstName: "Staff",
		LastName:  "Member",
		IsActive:  true,
	})
	require.NoError(t, err)

	parentID, err := repos.ParentRepository.Create(ctx, &models.Parent{
		SchoolID:   schoolID,
		FirstName:  "Marta",
		LastName:   "Novak",
		ParentType: models.ParentMother,
		Email:      "marta+" + suffix + "@example.com",
	})
	require.NoError(t, err)

	subjectID, err := repos.SubjectRepository.Create(ctx, &models.Subject{
		SchoolID:    schoolID,
		SubjectName: "Mathematics " + suffix,
	})
	require.NoError(t, err)

	return &onboardingFixture{
		repos:     repos,
		schoolID:  schoolID,
		userID:    userID,
		parentID:  parentID,
		subjectID: subjectID,
	}
}

func (f *onboardingFixture) stageRequest(t *testing.T) *models.OnboardingRequest {
	t.Helper()
	req := &models.OnboardingRequest{
		SchoolID:    f.schoolID,
		RequestedBy: f.userID,
		FirstName:   "Emma",
		LastName:    "Novak",
		Email:       fmt.Sprintf("emma+%d@example.com", time.Now().UnixNano()),
		DateOfBirth: time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC),
		Address: &models.Address{
			StreetAddress: "12 Pine St",
			City:          "Ottawa",
			State:         "ON",
			PostalCode:    "K1A0B1",
			Country:       "Canada",
		},
		ParentIDs:  []int64{f.parentID},
		SubjectIDs: []int64{f.subjectID},
	}
	id, err := f.repos.OnboardingRepository.Create(context.Background(), req)
	require.NoError(t, err)
	req.ID = id
	return req
}

func TestOnboardingApprove_CreatesStudentAndRelinksRecords(t *testing.T) {
	database := setupTestDB(t)
	fx := newOnboardingFixture(t, database)
	ctx := context.Background()

	staged := fx.stageRequest(t)
	require.NotNil(t, staged.AddressID, "nested address persists with the request")

	recordID, err := fx.repos.RecordRepository.Create(ctx, &models.Record{
		SchoolID:            fx.schoolID,
		OnboardingRequestID: &staged.ID,
		RecordType:          models.RecordBirthCertificate,
		FileURL:             "/uploads/records/birth.pdf",
		UploadedBy:          "Staff Member",
	})
	require.NoError(t, err)

	req, student, err := fx.repos.OnboardingRepository.Approve(ctx, fx.schoolID, staged.ID, fx.userID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingCompleted, req.Status)
	require.NotNil(t, req.CreatedStudentID)
	require.NotNil(t, student)
	assert.Equal(t, *req.CreatedStudentID, student.ID)

	// The staged payload was copied onto the enrolled student.
	enrolled, err := fx.repos.StudentRepository.GetByID(ctx, fx.schoolID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, staged.FirstName, enrolled.FirstName)
	assert.Equal(t, staged.LastName, enrolled.LastName)
	assert.Equal(t, staged.Email, enrolled.Email)
	assert.Equal(t, staged.AddressID, enrolled.AddressID)
	assert.True(t, enrolled.IsActive)

	parents, err := fx.repos.ParentRepository.GetByStudent(ctx, fx.schoolID, student.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, fx.parentID, parents[0].ID)

	subjects, err := fx.repos.SubjectRepository.GetByStudent(ctx, fx.schoolID, student.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, fx.subjectID, subjects[0].ID)

	// Records moved from the request to the student.
	byRequest, err := fx.repos.RecordRepository.ListByOnboarding(ctx, fx.schoolID, staged.ID)
	require.NoError(t, err)
	assert.Empty(t, byRequest)

	byStudent, err := fx.repos.RecordRepository.ListByStudent(ctx, fx.schoolID, student.ID)
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	assert.Equal(t, recordID, byStudent[0].ID)
	assert.Nil(t, byStudent[0].OnboardingRequestID)
}

func TestOnboardingApprove_ConcurrentSecondLoses(t *testing.T) {
	database := setupTestDB(t)
	fx := newOnboardingFixture(t, database)
	staged := fx.stageRequest(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = fx.repos.OnboardingRepository.Approve(
				context.Background(), fx.schoolID, staged.ID, fx.userID)
		}(i)
	}
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrOnboardingNotPending)
		losers++
	}
	assert.Equal(t, 1, winners, "exactly one approval wins")
	assert.Equal(t, 1, losers, "the other observes the state conflict")

	// Only one student came out of it.
	req, err := fx.repos.OnboardingRepository.GetByID(context.Background(), fx.schoolID, staged.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingCompleted, req.Status)
	require.NotNil(t, req.CreatedStudentID)
}

func TestRecords_OwnershipStates(t *testing.T) {
	database := setupTestDB(t)
	fx := newOnboardingFixture(t, database)
	ctx := context.Background()
	staged := fx.stageRequest(t)

	// A record with no owner is the permitted orphaned state.
	orphanID, err := fx.repos.RecordRepository.Create(ctx, &models.Record{
		SchoolID:   fx.schoolID,
		RecordType: models.RecordOther,
		FileURL:    "/uploads/records/orphan.pdf",
		UploadedBy: "Staff Member",
	})
	require.NoError(t, err)
	assert.NotZero(t, orphanID)

	// Both owners at once is forbidden by the schema.
	studentID, err := fx.repos.StudentRepository.Create(ctx, &models.Student{
		SchoolID:       fx.schoolID,
		FirstName:      "Noah",
		LastName:       "Roy",
		Email:          fmt.Sprintf("noah+%d@example.com", time.Now().UnixNano()),
		DateOfBirth:    time.Date(2016, 4, 12, 0, 0, 0, 0, time.UTC),
		EnrollmentDate: time.Now(),
		IsActive:       true,
	}, nil, nil)
	require.NoError(t, err)

	_, err = fx.repos.RecordRepository.Create(ctx, &models.Record{
		SchoolID:            fx.schoolID,
		StudentID:           &studentID,
		OnboardingRequestID: &staged.ID,
		RecordType:          models.RecordOther,
		FileURL:             "/uploads/records/dual.pdf",
		UploadedBy:          "Staff Member",
	})
	assert.Error(t, err)
}
