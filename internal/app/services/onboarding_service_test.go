package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

func userWithRole(role models.Role) *models.User {
	return &models.User{
		ID:       1,
		IsActive: true,
		Role:     &models.UserRole{Role: role, IsActive: true},
	}
}

type fakeOnboardingStore struct {
	nextID     int64
	requests   map[int64]*models.OnboardingRequest
	lastFilter repositories.OnboardingFilter
	rejections map[int64]*string
}

func newFakeOnboardingStore() *fakeOnboardingStore {
	return &fakeOnboardingStore{
		nextID:     1,
		requests:   map[int64]*models.OnboardingRequest{},
		rejections: map[int64]*string{},
	}
}

func (f *fakeOnboardingStore) Create(_ context.Context, req *models.OnboardingRequest) (int64, error) {
	id := f.nextID
	f.nextID++
	req.ID = id
	if req.Address != nil {
		req.Address.ID = id
		req.AddressID = &req.Address.ID
	}
	f.requests[id] = req
	return id, nil
}

func (f *fakeOnboardingStore) GetByID(_ context.Context, schoolID, id int64) (*models.OnboardingRequest, error) {
	req, ok := f.requests[id]
	if !ok || req.SchoolID != schoolID {
		return nil, apperrors.ErrOnboardingNotFound
	}
	return req, nil
}

func (f *fakeOnboardingStore) List(_ context.Context, schoolID int64, filter repositories.OnboardingFilter) ([]*models.OnboardingRequest, int64, error) {
	f.lastFilter = filter
	var out []*models.OnboardingRequest
	for _, req := range f.requests {
		if req.SchoolID != schoolID {
			continue
		}
		if filter.RequestedBy != nil && req.RequestedBy != *filter.RequestedBy {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOnboardingStore) Approve(_ context.Context, schoolID, requestID, approverID int64) (*models.OnboardingRequest, *models.Student, error) {
	req, ok := f.requests[requestID]
	if !ok || req.SchoolID != schoolID {
		return nil, nil, apperrors.ErrOnboardingNotFound
	}
	if req.Status != models.OnboardingPending {
		return nil, nil, apperrors.NewStateConflictError(string(req.Status))
	}
	req.Status = models.OnboardingCompleted
	req.ApprovedBy = &approverID
	student := &models.Student{ID: 100 + requestID, SchoolID: schoolID, FirstName: req.FirstName, LastName: req.LastName}
	req.CreatedStudentID = &student.ID
	return req, student, nil
}

func (f *fakeOnboardingStore) Reject(_ context.Context, schoolID, requestID, approverID int64, reason *string) (*models.OnboardingRequest, error) {
	req, ok := f.requests[requestID]
	if !ok || req.SchoolID != schoolID {
		return nil, apperrors.ErrOnboardingNotFound
	}
	if req.Status != models.OnboardingPending {
		return nil, apperrors.NewStateConflictError(string(req.Status))
	}
	req.Status = models.OnboardingRejected
	req.ApprovedBy = &approverID
	req.RejectionReason = reason
	f.rejections[requestID] = reason
	return req, nil
}

func (f *fakeOnboardingStore) SetPhotoURL(_ context.Context, schoolID, id int64, photoURL *string) error {
	req, ok := f.requests[id]
	if !ok || req.SchoolID != schoolID {
		return apperrors.ErrOnboardingNotFound
	}
	req.PhotoURL = photoURL
	return nil
}

type fakeReferenceChecker struct {
	parentsOK  bool
	subjectsOK bool
	gradesOK   bool
	busesOK    bool
}

func (f fakeReferenceChecker) ParentsExist(context.Context, int64, []int64) (bool, error) {
	return f.parentsOK, nil
}

func (f fakeReferenceChecker) SubjectsExist(context.Context, int64, []int64) (bool, error) {
	return f.subjectsOK, nil
}

func (f fakeReferenceChecker) GradeExists(context.Context, int64, int64) (bool, error) {
	return f.gradesOK, nil
}

func (f fakeReferenceChecker) BusExists(context.Context, int64, int64) (bool, error) {
	return f.busesOK, nil
}

func allRefsOK() fakeReferenceChecker {
	return fakeReferenceChecker{parentsOK: true, subjectsOK: true, gradesOK: true, busesOK: true}
}

func submitRequest() *dto.SubmitOnboardingRequest {
	return &dto.SubmitOnboardingRequest{
		FirstName:   "Emma",
		LastName:    "Novak",
		Email:       "Emma.Novak@Example.com",
		DateOfBirth: "2017-09-01",
		ParentIDs:   []int64{1},
		SubjectIDs:  []int64{2},
	}
}

func TestOnboardingSubmit_RoleGate(t *testing.T) {
	svc := NewOnboardingService(newFakeOnboardingStore(), allRefsOK(), nil, true)

	for _, role := range []models.Role{models.RoleReadonly, models.RoleAdmin, models.RolePrincipal, models.RoleVicePrincipal} {
		_, err := svc.Submit(context.Background(), userWithRole(role), 1, submitRequest())
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "role %s must not submit", role)
	}

	// The superuser flag alone does not grant submission.
	superuser := userWithRole(models.RoleReadonly)
	superuser.IsSuperuser = true
	_, err := svc.Submit(context.Background(), superuser, 1, submitRequest())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestOnboardingSubmit_StagesPendingRequest(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	teacher := userWithRole(models.RoleTeacher)
	teacher.ID = 42

	req, err := svc.Submit(context.Background(), teacher, 1, submitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingPending, req.Status)
	assert.Equal(t, int64(42), req.RequestedBy)
	assert.Equal(t, "emma.novak@example.com", req.Email)
	assert.NotZero(t, req.ID)
}

func TestOnboardingSubmit_RejectsForeignReferences(t *testing.T) {
	svc := NewOnboardingService(newFakeOnboardingStore(),
		fakeReferenceChecker{parentsOK: false, subjectsOK: true, gradesOK: true, busesOK: true}, nil, true)

	_, err := svc.Submit(context.Background(), userWithRole(models.RoleOperator), 1, submitRequest())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestOnboardingSubmit_RejectsForeignGradeAndBus(t *testing.T) {
	gradeID := int64(9999)
	busID := int64(8888)

	refs := allRefsOK()
	refs.gradesOK = false
	svc := NewOnboardingService(newFakeOnboardingStore(), refs, nil, true)

	payload := submitRequest()
	payload.GradeID = &gradeID
	_, err := svc.Submit(context.Background(), userWithRole(models.RoleTeacher), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	refs = allRefsOK()
	refs.busesOK = false
	svc = NewOnboardingService(newFakeOnboardingStore(), refs, nil, true)

	payload = submitRequest()
	payload.BusID = &busID
	_, err = svc.Submit(context.Background(), userWithRole(models.RoleTeacher), 1, payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// With both references resolving in the school the submission stands.
	svc = NewOnboardingService(newFakeOnboardingStore(), allRefsOK(), nil, true)
	payload = submitRequest()
	payload.GradeID = &gradeID
	payload.BusID = &busID
	req, err := svc.Submit(context.Background(), userWithRole(models.RoleTeacher), 1, payload)
	require.NoError(t, err)
	assert.Equal(t, gradeID, *req.GradeID)
	assert.Equal(t, busID, *req.BusID)
}

func TestOnboardingSubmit_CreatesNestedAddress(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	payload := submitRequest()
	payload.Address = &dto.AddressRequest{
		StreetAddress: "12 Pine St", City: "Ottawa", State: "ON", PostalCode: "K1A0B1", Country: "Canada",
	}

	req, err := svc.Submit(context.Background(), userWithRole(models.RoleTeacher), 1, payload)
	require.NoError(t, err)

	// The staged address travels inside the request so the store can
	// persist both in one transaction.
	require.NotNil(t, req.Address)
	assert.Equal(t, "12 Pine St", req.Address.StreetAddress)
	require.NotNil(t, req.AddressID)
}

func TestOnboardingApprove_RoleGateWithSuperuserBypass(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	teacher := userWithRole(models.RoleTeacher)
	staged, err := svc.Submit(context.Background(), teacher, 1, submitRequest())
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), teacher, 1, staged.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Superusers may approve even without an approver role.
	superuser := userWithRole(models.RoleReadonly)
	superuser.ID = 9
	superuser.IsSuperuser = true
	req, student, err := svc.Approve(context.Background(), superuser, 1, staged.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingCompleted, req.Status)
	require.NotNil(t, student)
	assert.Equal(t, "Emma", student.FirstName)
}

func TestOnboardingApprove_NonPendingConflicts(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	staged, err := svc.Submit(context.Background(), userWithRole(models.RoleTeacher), 1, submitRequest())
	require.NoError(t, err)

	principal := userWithRole(models.RolePrincipal)
	_, _, err = svc.Approve(context.Background(), principal, 1, staged.ID)
	require.NoError(t, err)

	// The second approval loses and observes the current state.
	_, _, err = svc.Approve(context.Background(), principal, 1, staged.ID)
	assert.ErrorIs(t, err, apperrors.ErrOnboardingNotPending)
}

func TestOnboardingReject_StrictReason(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	staged, err := svc.Submit(context.Background(), userWithRole(models.RoleOperator), 1, submitRequest())
	require.NoError(t, err)

	principal := userWithRole(models.RolePrincipal)
	_, err = svc.Reject(context.Background(), principal, 1, staged.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrRejectionReasonMissing)

	req, err := svc.Reject(context.Background(), principal, 1, staged.ID, "incomplete documents")
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingRejected, req.Status)
	require.NotNil(t, req.RejectionReason)
	assert.Equal(t, "incomplete documents", *req.RejectionReason)
}

func TestOnboardingReject_LenientReason(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, false)

	staged, err := svc.Submit(context.Background(), userWithRole(models.RoleOperator), 1, submitRequest())
	require.NoError(t, err)

	req, err := svc.Reject(context.Background(), userWithRole(models.RoleAdmin), 1, staged.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingRejected, req.Status)
	assert.Nil(t, req.RejectionReason)
}

func TestOnboardingList_NarrowsToOwnRequests(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	readonly := userWithRole(models.RoleReadonly)
	readonly.ID = 77
	_, _, err := svc.List(context.Background(), readonly, 1, repositories.OnboardingFilter{})
	require.NoError(t, err)
	require.NotNil(t, store.lastFilter.RequestedBy)
	assert.Equal(t, int64(77), *store.lastFilter.RequestedBy)

	// Approvers see the whole school.
	principal := userWithRole(models.RolePrincipal)
	_, _, err = svc.List(context.Background(), principal, 1, repositories.OnboardingFilter{})
	require.NoError(t, err)
	assert.Nil(t, store.lastFilter.RequestedBy)
}

func TestOnboardingGet_VisibilityGate(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store, allRefsOK(), nil, true)

	requester := userWithRole(models.RoleTeacher)
	requester.ID = 5
	staged, err := svc.Submit(context.Background(), requester, 1, submitRequest())
	require.NoError(t, err)

	// The requester and any approver can read it.
	_, err = svc.Get(context.Background(), requester, 1, staged.ID)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), userWithRole(models.RoleAdmin), 1, staged.ID)
	assert.NoError(t, err)

	// A different teacher cannot.
	other := userWithRole(models.RoleTeacher)
	other.ID = 6
	_, err = svc.Get(context.Background(), other, 1, staged.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
