package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnboardingStatusIsTerminal(t *testing.T) {
	assert.False(t, OnboardingPending.IsTerminal())
	assert.True(t, OnboardingCompleted.IsTerminal())
	assert.True(t, OnboardingRejected.IsTerminal())
	assert.True(t, OnboardingApproved.IsTerminal())
}

func TestToStudentCopiesStagedPayload(t *testing.T) {
	phone := "555-0100"
	photo := "/uploads/onboarding_photos/abc.jpg"
	gradeID := int64(3)
	addressID := int64(4)
	busID := int64(5)
	dob := time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC)
	enrolledAt := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	req := &OnboardingRequest{
		ID:          11,
		SchoolID:    7,
		RequestedBy: 42,
		FirstName:   "Emma",
		LastName:    "Novak",
		Email:       "emma.novak@example.com",
		PhoneNumber: &phone,
		DateOfBirth: dob,
		PhotoURL:    &photo,
		GradeID:     &gradeID,
		AddressID:   &addressID,
		BusID:       &busID,
		Status:      OnboardingPending,
	}

	student := req.ToStudent(enrolledAt)

	assert.Equal(t, int64(7), student.SchoolID)
	assert.Equal(t, "Emma", student.FirstName)
	assert.Equal(t, "Novak", student.LastName)
	assert.Equal(t, "emma.novak@example.com", student.Email)
	assert.Equal(t, &phone, student.PhoneNumber)
	assert.Equal(t, dob, student.DateOfBirth)
	assert.Equal(t, enrolledAt, student.EnrollmentDate)
	assert.Equal(t, &photo, student.PhotoURL)
	require.NotNil(t, student.GradeID)
	assert.Equal(t, gradeID, *student.GradeID)
	require.NotNil(t, student.AddressID)
	assert.Equal(t, addressID, *student.AddressID)
	require.NotNil(t, student.BusID)
	assert.Equal(t, busID, *student.BusID)
	assert.True(t, student.IsActive)

	// The enrolled student does not inherit the request's identity.
	assert.Zero(t, student.ID)
}
