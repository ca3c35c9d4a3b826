package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

func newStudentService(refs ReferenceChecker) StudentService {
	return NewStudentService(nil, nil, nil, nil, nil, nil, refs, nil)
}

func enrollRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		FirstName:   "Liam",
		LastName:    "Tremblay",
		Email:       "liam.tremblay@example.com",
		DateOfBirth: "2016-04-12",
		ParentIDs:   []int64{1},
		SubjectIDs:  []int64{2},
	}
}

func TestStudentCreate_AdminOnly(t *testing.T) {
	svc := newStudentService(allRefsOK())

	for _, role := range []models.Role{models.RoleTeacher, models.RoleOperator, models.RolePrincipal, models.RoleReadonly} {
		_, err := svc.Create(context.Background(), userWithRole(role), 1, enrollRequest())
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "role %s must not enroll directly", role)
	}
}

func TestStudentCreate_RejectsBadDate(t *testing.T) {
	svc := newStudentService(allRefsOK())

	payload := enrollRequest()
	payload.DateOfBirth = "12/04/2016"
	_, err := svc.Create(context.Background(), userWithRole(models.RoleAdmin), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentCreate_RejectsForeignReferences(t *testing.T) {
	admin := userWithRole(models.RoleAdmin)
	gradeID := int64(9999)
	busID := int64(8888)

	refs := allRefsOK()
	refs.parentsOK = false
	_, err := newStudentService(refs).Create(context.Background(), admin, 1, enrollRequest())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	refs = allRefsOK()
	refs.gradesOK = false
	payload := enrollRequest()
	payload.GradeID = &gradeID
	_, err = newStudentService(refs).Create(context.Background(), admin, 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	refs = allRefsOK()
	refs.busesOK = false
	payload = enrollRequest()
	payload.BusID = &busID
	_, err = newStudentService(refs).Create(context.Background(), admin, 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
