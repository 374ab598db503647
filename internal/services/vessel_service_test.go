package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

type mockVesselStore struct {
	mock.Mock
}

func (m *mockVesselStore) GetByID(ctx context.Context, id uint) (*models.Vessel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vessel), args.Error(1)
}

func (m *mockVesselStore) List(ctx context.Context) ([]models.Vessel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vessel), args.Error(1)
}

func (m *mockVesselStore) ListActive(ctx context.Context) ([]models.Vessel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vessel), args.Error(1)
}

func (m *mockVesselStore) ExistsByIMO(ctx context.Context, imo string) (bool, error) {
	args := m.Called(ctx, imo)
	return args.Bool(0), args.Error(1)
}

func (m *mockVesselStore) Register(ctx context.Context, vessel *models.Vessel, captain *models.User) error {
	args := m.Called(ctx, vessel, captain)
	return args.Error(0)
}

func (m *mockVesselStore) Update(ctx context.Context, vessel *models.Vessel) error {
	args := m.Called(ctx, vessel)
	return args.Error(0)
}

func (m *mockVesselStore) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type mockCrewDirectory struct {
	mock.Mock
}

func (m *mockCrewDirectory) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockCrewDirectory) CountByVessel(ctx context.Context, vesselID uint) (int64, error) {
	args := m.Called(ctx, vesselID)
	return args.Get(0).(int64), args.Error(1)
}

type mockRequisitionCounter struct {
	mock.Mock
}

func (m *mockRequisitionCounter) CountByVessel(ctx context.Context, vesselID uint) (int64, error) {
	args := m.Called(ctx, vesselID)
	return args.Get(0).(int64), args.Error(1)
}

type mockItemCounter struct {
	mock.Mock
}

func (m *mockItemCounter) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newVesselService(t *testing.T, store *mockVesselStore, users *mockCrewDirectory, reqs *mockRequisitionCounter, items *mockItemCounter) *VesselService {
	t.Helper()
	return NewVesselService(store, users, reqs, items, disabledCache(t))
}

func TestRegisterVesselCreatesCaptain(t *testing.T) {
	store := new(mockVesselStore)
	users := new(mockCrewDirectory)
	svc := newVesselService(t, store, users, new(mockRequisitionCounter), new(mockItemCounter))

	users.On("UsernameTaken", mock.Anything, "master1").Return(false, nil)
	store.On("Register", mock.Anything, mock.MatchedBy(func(v *models.Vessel) bool {
		return v.Name == "MV Aurora" && v.IsActive
	}), mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "master1" && u.Role == string(auth.RoleCaptain) && u.IsActive
	})).Return(nil)

	_, err := svc.Register(context.Background(), adminScope(), RegistrationInput{
		Vessel:          VesselInput{Name: "MV Aurora"},
		CaptainUsername: "master1",
		CaptainPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRegisterVesselRejectsDuplicateIMO(t *testing.T) {
	store := new(mockVesselStore)
	svc := newVesselService(t, store, new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))
	imo := "9074729"

	store.On("ExistsByIMO", mock.Anything, imo).Return(true, nil)

	_, err := svc.Register(context.Background(), adminScope(), RegistrationInput{
		Vessel:          VesselInput{Name: "MV Aurora", IMONumber: &imo},
		CaptainUsername: "master1",
		CaptainPassword: "s3cret-pass",
	})
	require.True(t, domain.IsKind(err, domain.KindValidation))
	store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterVesselDeniedForCaptain(t *testing.T) {
	svc := newVesselService(t, new(mockVesselStore), new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))

	_, err := svc.Register(context.Background(), captainScope(), RegistrationInput{
		Vessel:          VesselInput{Name: "MV Aurora"},
		CaptainUsername: "master1",
		CaptainPassword: "s3cret-pass",
	})
	require.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestCaptainUpdatesOwnVessel(t *testing.T) {
	store := new(mockVesselStore)
	svc := newVesselService(t, store, new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Vessel{ID: 1, Name: "MV Aurora", IsActive: true}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(v *models.Vessel) bool {
		return v.ID == 1 && v.Name == "MV Aurora II"
	})).Return(nil)

	vessel, err := svc.Update(context.Background(), scope, 1, VesselInput{Name: "MV Aurora II"})
	require.NoError(t, err)
	require.Equal(t, "MV Aurora II", vessel.Name)
	store.AssertExpectations(t)
}

func TestCrewCannotUpdateVessel(t *testing.T) {
	svc := newVesselService(t, new(mockVesselStore), new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))

	_, err := svc.Update(context.Background(), crewScope(), 1, VesselInput{Name: "MV Aurora II"})
	require.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestCaptainCannotUpdateOtherVessel(t *testing.T) {
	svc := newVesselService(t, new(mockVesselStore), new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))

	_, err := svc.Update(context.Background(), captainScope(), 2, VesselInput{Name: "MV Aurora II"})
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestVesselStats(t *testing.T) {
	store := new(mockVesselStore)
	users := new(mockCrewDirectory)
	reqs := new(mockRequisitionCounter)
	items := new(mockItemCounter)
	svc := newVesselService(t, store, users, reqs, items)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1)).Return(&models.Vessel{ID: 1, IsActive: true}, nil)
	users.On("CountByVessel", mock.Anything, uint(1)).Return(int64(12), nil)
	reqs.On("CountByVessel", mock.Anything, uint(1)).Return(int64(48), nil)
	items.On("CountActive", mock.Anything).Return(int64(950), nil)

	stats, err := svc.Stats(context.Background(), scope, 1)
	require.NoError(t, err)
	require.Equal(t, int64(12), stats.Users)
	require.Equal(t, int64(48), stats.Requisitions)
	require.Equal(t, int64(950), stats.ActiveItems)
}

func TestVesselStatsHiddenAcrossVessels(t *testing.T) {
	svc := newVesselService(t, new(mockVesselStore), new(mockCrewDirectory), new(mockRequisitionCounter), new(mockItemCounter))

	_, err := svc.Stats(context.Background(), captainScope(), 2)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}
