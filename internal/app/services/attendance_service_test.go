package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

func TestAttendanceMark_RoleGate(t *testing.T) {
	svc := NewAttendanceService(nil, nil)

	for _, role := range []models.Role{models.RoleReadonly, ""} {
		_, err := svc.Mark(context.Background(), userWithRole(role), 1, &dto.MarkAttendanceRequest{
			StudentID: 1, Date: "2026-03-02", Status: "present",
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "role %q", role)
	}

	err := svc.MarkBulk(context.Background(), userWithRole(models.RoleReadonly), 1, &dto.BulkAttendanceRequest{
		Date: "2026-03-02",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAttendanceMark_RejectsBadDate(t *testing.T) {
	svc := NewAttendanceService(nil, nil)

	_, err := svc.Mark(context.Background(), userWithRole(models.RoleTeacher), 1, &dto.MarkAttendanceRequest{
		StudentID: 1, Date: "02/03/2026", Status: "present",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = svc.MarkBulk(context.Background(), userWithRole(models.RoleTeacher), 1, &dto.BulkAttendanceRequest{
		Date: "yesterday",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAttendanceGetByDate_RejectsBadDate(t *testing.T) {
	svc := NewAttendanceService(nil, nil)

	_, err := svc.GetByDate(context.Background(), 1, "2026-13-40")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.GetSummary(context.Background(), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
