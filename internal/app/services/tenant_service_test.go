package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

type fakeSessionStore struct {
	sessions map[string]*models.Session
	deleted  []string
}

func newFakeSessionStore(sessions ...*models.Session) *fakeSessionStore {
	f := &fakeSessionStore{sessions: map[string]*models.Session{}}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessionStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) SetSchool(_ context.Context, id string, schoolID *int64, schoolName *string) error {
	s, ok := f.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.SchoolID = schoolID
	s.SchoolName = schoolName
	return nil
}

func (f *fakeSessionStore) Create(_ context.Context, session *models.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMembershipStore struct {
	byUser map[int64][]*models.Membership
}

func (f *fakeMembershipStore) ListActiveByUser(_ context.Context, userID int64) ([]*models.Membership, error) {
	return f.byUser[userID], nil
}

func (f *fakeMembershipStore) GetOrCreate(_ context.Context, userID, schoolID int64) (*models.Membership, error) {
	for _, m := range f.byUser[userID] {
		if m.SchoolID == schoolID {
			return m, nil
		}
	}
	m := &models.Membership{UserID: userID, SchoolID: schoolID, IsActive: true}
	f.byUser[userID] = append(f.byUser[userID], m)
	return m, nil
}

func (f *fakeMembershipStore) EnsureForSchools(_ context.Context, userID int64, schoolIDs []int64) error {
	for i, schoolID := range schoolIDs {
		found := false
		for _, m := range f.byUser[userID] {
			if m.SchoolID == schoolID {
				found = true
				break
			}
		}
		if !found {
			f.byUser[userID] = append(f.byUser[userID], &models.Membership{
				UserID:    userID,
				SchoolID:  schoolID,
				IsPrimary: i == 0 && len(f.byUser[userID]) == 0,
				IsActive:  true,
			})
		}
	}
	return nil
}

type fakeSchoolStore struct {
	schools       map[int64]*models.School
	subscriptions map[int64]bool
}

func (f *fakeSchoolStore) GetByID(_ context.Context, id int64) (*models.School, error) {
	s, ok := f.schools[id]
	if !ok {
		return nil, apperrors.ErrSchoolNotFound
	}
	return s, nil
}

func (f *fakeSchoolStore) HasActiveSubscription(_ context.Context, id int64) (bool, error) {
	return f.subscriptions[id], nil
}

func (f *fakeSchoolStore) ListActiveIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, s := range f.schools {
		if s.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func activeSchool(id int64, name string) *models.School {
	return &models.School{ID: id, Name: name, IsActive: true}
}

func TestTenantResolve_SessionSchoolWins(t *testing.T) {
	schoolID := int64(7)
	schoolName := "Maple Leaf Academy"
	session := &models.Session{ID: "sess-1", UserID: 1, SchoolID: &schoolID, SchoolName: &schoolName}

	sessions := newFakeSessionStore(session)
	schools := &fakeSchoolStore{schools: map[int64]*models.School{7: activeSchool(7, schoolName)}}
	svc := NewTenantService(sessions, &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}, schools)

	res, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, res.SchoolID)
	assert.Equal(t, int64(7), *res.SchoolID)
	assert.False(t, res.NeedsSelection)
	assert.False(t, res.SignedOut)
}

func TestTenantResolve_StaleSchoolFlushesSession(t *testing.T) {
	goneID := int64(99)
	session := &models.Session{ID: "sess-2", UserID: 1, SchoolID: &goneID}

	sessions := newFakeSessionStore(session)
	schools := &fakeSchoolStore{schools: map[int64]*models.School{}}
	svc := NewTenantService(sessions, &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}, schools)

	_, err := svc.Resolve(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrStaleSessionSchool)
	assert.Contains(t, sessions.deleted, "sess-2")
}

func TestTenantResolve_DeactivatedSchoolFlushesSession(t *testing.T) {
	schoolID := int64(5)
	session := &models.Session{ID: "sess-3", UserID: 1, SchoolID: &schoolID}

	sessions := newFakeSessionStore(session)
	inactive := &models.School{ID: 5, Name: "Closed School", IsActive: false}
	schools := &fakeSchoolStore{schools: map[int64]*models.School{5: inactive}}
	svc := NewTenantService(sessions, &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}, schools)

	_, err := svc.Resolve(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrStaleSessionSchool)
	assert.Contains(t, sessions.deleted, "sess-3")
}

func TestTenantResolve_PrimaryMembershipBinds(t *testing.T) {
	session := &models.Session{ID: "sess-4", UserID: 2}
	sessions := newFakeSessionStore(session)

	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{
		2: {
			{ID: 1, UserID: 2, SchoolID: 3, IsPrimary: true, IsActive: true, School: activeSchool(3, "First")},
			{ID: 2, UserID: 2, SchoolID: 4, IsActive: true, School: activeSchool(4, "Second")},
		},
	}}
	schools := &fakeSchoolStore{schools: map[int64]*models.School{
		3: activeSchool(3, "First"),
		4: activeSchool(4, "Second"),
	}}
	svc := NewTenantService(sessions, memberships, schools)

	res, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, res.SchoolID)
	assert.Equal(t, int64(3), *res.SchoolID)
	assert.False(t, res.NeedsSelection)

	// The binding is persisted on the session row.
	require.NotNil(t, session.SchoolID)
	assert.Equal(t, int64(3), *session.SchoolID)
}

func TestTenantResolve_FallbackMembershipNeedsSelection(t *testing.T) {
	session := &models.Session{ID: "sess-5", UserID: 3}
	sessions := newFakeSessionStore(session)

	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{
		3: {
			{ID: 10, UserID: 3, SchoolID: 8, IsActive: true, School: activeSchool(8, "Fallback")},
		},
	}}
	schools := &fakeSchoolStore{schools: map[int64]*models.School{8: activeSchool(8, "Fallback")}}
	svc := NewTenantService(sessions, memberships, schools)

	res, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, res.SchoolID)
	assert.Equal(t, int64(8), *res.SchoolID)
	assert.True(t, res.NeedsSelection)
}

func TestTenantResolve_SkipsDeactivatedMembershipSchools(t *testing.T) {
	session := &models.Session{ID: "sess-6", UserID: 4}
	sessions := newFakeSessionStore(session)

	closed := &models.School{ID: 1, Name: "Closed", IsActive: false}
	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{
		4: {
			{ID: 1, UserID: 4, SchoolID: 1, IsPrimary: true, IsActive: true, School: closed},
			{ID: 2, UserID: 4, SchoolID: 2, IsActive: true, School: activeSchool(2, "Open")},
		},
	}}
	schools := &fakeSchoolStore{schools: map[int64]*models.School{2: activeSchool(2, "Open")}}
	svc := NewTenantService(sessions, memberships, schools)

	res, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, res.SchoolID)
	assert.Equal(t, int64(2), *res.SchoolID)
	assert.True(t, res.NeedsSelection)
}

func TestTenantResolve_NoMembershipsSignsOut(t *testing.T) {
	session := &models.Session{ID: "sess-7", UserID: 5}
	sessions := newFakeSessionStore(session)
	svc := NewTenantService(sessions, &fakeMembershipStore{byUser: map[int64][]*models.Membership{}},
		&fakeSchoolStore{schools: map[int64]*models.School{}})

	res, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, res.SignedOut)
	assert.Nil(t, res.SchoolID)
}

func TestTenantSelectSchool_RequiresActiveSubscription(t *testing.T) {
	session := &models.Session{ID: "sess-8", UserID: 6}
	sessions := newFakeSessionStore(session)
	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}
	schools := &fakeSchoolStore{
		schools:       map[int64]*models.School{9: activeSchool(9, "Unpaid")},
		subscriptions: map[int64]bool{},
	}
	svc := NewTenantService(sessions, memberships, schools)

	err := svc.SelectSchool(context.Background(), session, 6, 9)
	assert.ErrorIs(t, err, apperrors.ErrSchoolNotEligible)
	assert.Nil(t, session.SchoolID)
}

func TestTenantSelectSchool_PinsSession(t *testing.T) {
	session := &models.Session{ID: "sess-9", UserID: 7}
	sessions := newFakeSessionStore(session)
	memberships := &fakeMembershipStore{byUser: map[int64][]*models.Membership{}}
	schools := &fakeSchoolStore{
		schools:       map[int64]*models.School{11: activeSchool(11, "Paid School")},
		subscriptions: map[int64]bool{11: true},
	}
	svc := NewTenantService(sessions, memberships, schools)

	err := svc.SelectSchool(context.Background(), session, 7, 11)
	require.NoError(t, err)
	require.NotNil(t, session.SchoolID)
	assert.Equal(t, int64(11), *session.SchoolID)
	require.NotNil(t, session.SchoolName)
	assert.Equal(t, "Paid School", *session.SchoolName)
}
