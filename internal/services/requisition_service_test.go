package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/tracing"
)

type mockRequisitionStore struct {
	mock.Mock
}

func (m *mockRequisitionStore) Create(ctx context.Context, req *models.Requisition) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockRequisitionStore) GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Requisition, error) {
	args := m.Called(ctx, id, vesselID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Requisition), args.Error(1)
}

func (m *mockRequisitionStore) List(ctx context.Context, vesselID *uint, filter repositories.RequisitionFilter, page, pageSize int) ([]models.Requisition, int64, error) {
	args := m.Called(ctx, vesselID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Requisition), args.Get(1).(int64), args.Error(2)
}

func (m *mockRequisitionStore) UpdateStatus(ctx context.Context, req *models.Requisition, target domain.Status, orderedAt *time.Time) error {
	args := m.Called(ctx, req, target, orderedAt)
	return args.Error(0)
}

func (m *mockRequisitionStore) ReplaceDraft(ctx context.Context, req *models.Requisition, supplierID *uint, notes *string, lines []models.RequisitionItem) error {
	args := m.Called(ctx, req, supplierID, notes, lines)
	return args.Error(0)
}

func (m *mockRequisitionStore) AddLine(ctx context.Context, req *models.Requisition, itemID uint, qty int) error {
	args := m.Called(ctx, req, itemID, qty)
	return args.Error(0)
}

func (m *mockRequisitionStore) ApplyReceipt(ctx context.Context, req *models.Requisition, lineID uint, qty int, newStatus domain.Status) error {
	args := m.Called(ctx, req, lineID, qty, newStatus)
	return args.Error(0)
}

func (m *mockRequisitionStore) Delete(ctx context.Context, req *models.Requisition) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func uintPtr(v uint) *uint { return &v }

func captainScope() auth.Scope {
	return auth.Scope{UserID: uuid.New(), Role: auth.RoleCaptain, VesselID: uintPtr(1)}
}

func crewScope() auth.Scope {
	return auth.Scope{UserID: uuid.New(), Role: auth.RoleCrew, VesselID: uintPtr(1)}
}

func newRequisitionService(store *mockRequisitionStore) *RequisitionService {
	return NewRequisitionService(store, tracing.Disabled())
}

func TestCreateRequisitionStartsAsDraft(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := crewScope()

	store.On("Create", mock.Anything, mock.MatchedBy(func(req *models.Requisition) bool {
		return req.Status == domain.StatusDraft &&
			req.VesselID == 1 &&
			req.Version == 1 &&
			req.CreatedBy == scope.UserID
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Requisition).ID = 42
	})
	store.On("GetByID", mock.Anything, uint(42), scope.VesselID).
		Return(&models.Requisition{ID: 42, Status: domain.StatusDraft}, nil)

	req, err := svc.Create(context.Background(), scope, RequisitionInput{})
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, req.Status)
	store.AssertExpectations(t)
}

func TestCreateRequisitionMergesDuplicateLines(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := crewScope()

	store.On("Create", mock.Anything, mock.MatchedBy(func(req *models.Requisition) bool {
		return len(req.Items) == 1 && req.Items[0].ItemID == 7 && req.Items[0].Quantity == 5
	})).Return(nil)
	store.On("GetByID", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Requisition{Status: domain.StatusDraft}, nil)

	_, err := svc.Create(context.Background(), scope, RequisitionInput{
		Lines: []LineInput{{ItemID: 7, Quantity: 2}, {ItemID: 7, Quantity: 3}},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCreateRequisitionRejectsNonPositiveQuantity(t *testing.T) {
	svc := newRequisitionService(new(mockRequisitionStore))

	_, err := svc.Create(context.Background(), crewScope(), RequisitionInput{
		Lines: []LineInput{{ItemID: 7, Quantity: 0}},
	})
	require.True(t, domain.IsKind(err, domain.KindInvalidQuantity))
}

func TestCreateRequisitionAdminNeedsExplicitVessel(t *testing.T) {
	svc := newRequisitionService(new(mockRequisitionStore))
	admin := auth.Scope{UserID: uuid.New(), Role: auth.RoleSuperAdmin}

	_, err := svc.Create(context.Background(), admin, RequisitionInput{})
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestChangeStatusRejectsSkippedState(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{ID: 1, Status: domain.StatusDraft, SupplierID: uintPtr(3)}, nil)

	_, err := svc.ChangeStatus(context.Background(), scope, 1, "ordered")
	require.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestChangeStatusRequiresSupplierToSendRFQ(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusDraft,
			Items:  []models.RequisitionItem{{ItemID: 2, Quantity: 1}},
		}, nil)

	_, err := svc.ChangeStatus(context.Background(), scope, 1, "rfq_sent")
	require.True(t, domain.IsKind(err, domain.KindMissingSupplier))
}

func TestChangeStatusToOrderedStampsOrderedAt(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()
	req := &models.Requisition{
		ID:         1,
		Status:     domain.StatusRFQSent,
		SupplierID: uintPtr(3),
		Items:      []models.RequisitionItem{{ItemID: 2, Quantity: 1}},
	}

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).Return(req, nil)
	store.On("UpdateStatus", mock.Anything, req, domain.StatusOrdered, mock.MatchedBy(func(ts *time.Time) bool {
		return ts != nil
	})).Return(nil)

	_, err := svc.ChangeStatus(context.Background(), scope, 1, "ordered")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	svc := newRequisitionService(new(mockRequisitionStore))

	_, err := svc.ChangeStatus(context.Background(), captainScope(), 1, "shipped")
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestReceiveLineOnDraftIsNotReceivable(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusDraft,
			Items:  []models.RequisitionItem{{ID: 11, ItemID: 2, Quantity: 10}},
		}, nil)

	_, err := svc.ReceiveLine(context.Background(), scope, 1, 11, 4)
	require.True(t, domain.IsKind(err, domain.KindNotReceivable))
}

func TestReceiveLinePartialThenFull(t *testing.T) {
	scope := captainScope()

	// First receipt covers part of the line.
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusOrdered,
			Items:  []models.RequisitionItem{{ID: 11, ItemID: 2, Quantity: 10}},
		}, nil)
	store.On("ApplyReceipt", mock.Anything, mock.Anything, uint(11), 4, domain.StatusPartiallyReceived).Return(nil)

	_, err := svc.ReceiveLine(context.Background(), scope, 1, 11, 4)
	require.NoError(t, err)
	store.AssertExpectations(t)

	// The remainder completes the requisition.
	store = new(mockRequisitionStore)
	svc = newRequisitionService(store)
	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusPartiallyReceived,
			Items:  []models.RequisitionItem{{ID: 11, ItemID: 2, Quantity: 10, ReceivedQty: 4}},
		}, nil)
	store.On("ApplyReceipt", mock.Anything, mock.Anything, uint(11), 6, domain.StatusReceived).Return(nil)

	_, err = svc.ReceiveLine(context.Background(), scope, 1, 11, 6)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestReceiveLineOverReceiptRejected(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusPartiallyReceived,
			Items:  []models.RequisitionItem{{ID: 11, ItemID: 2, Quantity: 10, ReceivedQty: 4}},
		}, nil)

	_, err := svc.ReceiveLine(context.Background(), scope, 1, 11, 7)
	require.True(t, domain.IsKind(err, domain.KindOverReceipt))
	store.AssertNotCalled(t, "ApplyReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReceiveLineUnknownLine(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{ID: 1, Status: domain.StatusOrdered}, nil)

	_, err := svc.ReceiveLine(context.Background(), scope, 1, 99, 1)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdateDraftAfterOrderingIsImmutable(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := crewScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{ID: 1, Status: domain.StatusOrdered}, nil)

	_, err := svc.UpdateDraft(context.Background(), scope, 1, RequisitionInput{})
	require.True(t, domain.IsKind(err, domain.KindImmutableState))
}

func TestDeleteOrderedRequisitionNotAllowed(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{ID: 1, Status: domain.StatusOrdered}, nil)

	err := svc.Delete(context.Background(), scope, 1)
	require.True(t, domain.IsKind(err, domain.KindDeleteNotAllowed))
}

func TestDeleteOtherVesselRequisitionIsNotFound(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	// The vessel-scoped lookup hides records of other vessels entirely.
	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(nil, domain.ErrNotFound("requisition"))

	err := svc.Delete(context.Background(), scope, 1)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDeleteCancelledRequisitionAllowed(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()
	req := &models.Requisition{ID: 1, Status: domain.StatusCancelled}

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).Return(req, nil)
	store.On("Delete", mock.Anything, req).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), scope, 1))
	store.AssertExpectations(t)
}

func TestAddItemMergesIntoDraft(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := crewScope()
	req := &models.Requisition{ID: 1, Status: domain.StatusDraft}

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).Return(req, nil)
	store.On("AddLine", mock.Anything, req, uint(7), 3).Return(nil)

	_, err := svc.AddItem(context.Background(), scope, 1, 7, 3)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestReceiveLineSurfacesConcurrentModification(t *testing.T) {
	store := new(mockRequisitionStore)
	svc := newRequisitionService(store)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(1), scope.VesselID).
		Return(&models.Requisition{
			ID:     1,
			Status: domain.StatusOrdered,
			Items:  []models.RequisitionItem{{ID: 11, ItemID: 2, Quantity: 10}},
		}, nil)
	store.On("ApplyReceipt", mock.Anything, mock.Anything, uint(11), 4, domain.StatusPartiallyReceived).
		Return(domain.NewError(domain.KindConcurrentModification, "requisition was modified concurrently"))

	_, err := svc.ReceiveLine(context.Background(), scope, 1, 11, 4)
	require.True(t, domain.IsKind(err, domain.KindConcurrentModification))
}
