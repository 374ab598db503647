package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/tracing"
)

// requisitionStore is the persistence surface the requisition service needs.
type requisitionStore interface {
	Create(ctx context.Context, req *models.Requisition) error
	GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Requisition, error)
	List(ctx context.Context, vesselID *uint, filter repositories.RequisitionFilter, page, pageSize int) ([]models.Requisition, int64, error)
	UpdateStatus(ctx context.Context, req *models.Requisition, target domain.Status, orderedAt *time.Time) error
	ReplaceDraft(ctx context.Context, req *models.Requisition, supplierID *uint, notes *string, lines []models.RequisitionItem) error
	AddLine(ctx context.Context, req *models.Requisition, itemID uint, qty int) error
	ApplyReceipt(ctx context.Context, req *models.Requisition, lineID uint, qty int, newStatus domain.Status) error
	Delete(ctx context.Context, req *models.Requisition) error
}

// LineInput is one requested requisition line.
type LineInput struct {
	ItemID   uint
	Quantity int
}

// RequisitionInput carries header fields and the line set for create/update.
// VesselID is honored only for super_admin callers; vessel users always act
// on their own vessel.
type RequisitionInput struct {
	VesselID   *uint
	SupplierID *uint
	Notes      *string
	Lines      []LineInput
}

// RequisitionService owns the requisition lifecycle: draft assembly, the
// status state machine and the receiving ledger.
type RequisitionService struct {
	store  requisitionStore
	tracer tracing.Tracer
}

// NewRequisitionService creates a new requisition service
func NewRequisitionService(store requisitionStore, tracer tracing.Tracer) *RequisitionService {
	return &RequisitionService{
		store:  store,
		tracer: tracer,
	}
}

// resolveVessel picks the vessel a mutation applies to: the caller's own
// vessel, or an explicit vessel for the cross-vessel administrator.
func resolveVessel(scope auth.Scope, explicit *uint) (uint, error) {
	if scope.VesselID != nil {
		return *scope.VesselID, nil
	}
	if explicit != nil {
		return *explicit, nil
	}
	return 0, domain.NewError(domain.KindValidation, "vessel id is required")
}

func buildLines(inputs []LineInput) ([]models.RequisitionItem, error) {
	lines := make([]models.RequisitionItem, 0, len(inputs))
	seen := make(map[uint]int)
	for _, in := range inputs {
		if in.ItemID == 0 {
			return nil, domain.NewError(domain.KindValidation, "item id is required on every line")
		}
		if in.Quantity <= 0 {
			return nil, domain.NewError(domain.KindInvalidQuantity, "line quantity must be positive")
		}
		// Two lines for the same item collapse into one.
		if idx, ok := seen[in.ItemID]; ok {
			lines[idx].Quantity += in.Quantity
			continue
		}
		seen[in.ItemID] = len(lines)
		lines = append(lines, models.RequisitionItem{ItemID: in.ItemID, Quantity: in.Quantity})
	}
	return lines, nil
}

// Create opens a new draft requisition. A draft may start empty; the supplier
// and line requirements are enforced when the draft leaves the draft status.
func (s *RequisitionService) Create(ctx context.Context, scope auth.Scope, input RequisitionInput) (*models.Requisition, error) {
	if !auth.Can(scope, auth.CapEditRequisition) {
		return nil, domain.ErrUnauthorized("create requisitions")
	}

	vesselID, err := resolveVessel(scope, input.VesselID)
	if err != nil {
		return nil, err
	}

	lines, err := buildLines(input.Lines)
	if err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("create-requisition")
	defer s.tracer.EndTransaction(txn)

	req := &models.Requisition{
		VesselID:   vesselID,
		SupplierID: input.SupplierID,
		Notes:      input.Notes,
		Status:     domain.StatusDraft,
		CreatedBy:  scope.UserID,
		Version:    1,
		Items:      lines,
	}

	if err := s.store.Create(ctx, req); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	log.Info().
		Uint("requisition_id", req.ID).
		Uint("vessel_id", vesselID).
		Int("lines", len(lines)).
		Msg("requisition created")

	return s.store.GetByID(ctx, req.ID, scope.VesselID)
}

// Get returns a requisition within the caller's vessel scope.
func (s *RequisitionService) Get(ctx context.Context, scope auth.Scope, id uint) (*models.Requisition, error) {
	return s.store.GetByID(ctx, id, scope.VesselID)
}

// List returns a page of the caller's vessel requisitions.
func (s *RequisitionService) List(ctx context.Context, scope auth.Scope, filter repositories.RequisitionFilter, page, pageSize int) (Page[models.Requisition], error) {
	page, pageSize = clampPaging(page, pageSize)
	reqs, total, err := s.store.List(ctx, scope.VesselID, filter, page, pageSize)
	if err != nil {
		return Page[models.Requisition]{}, err
	}
	return newPage(reqs, total, page, pageSize), nil
}

// UpdateDraft rewrites a draft's header and lines. Nil fields are left
// untouched; a nil line slice keeps the existing lines.
func (s *RequisitionService) UpdateDraft(ctx context.Context, scope auth.Scope, id uint, input RequisitionInput) (*models.Requisition, error) {
	if !auth.Can(scope, auth.CapEditRequisition) {
		return nil, domain.ErrUnauthorized("edit requisitions")
	}

	req, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateEdit(req.Status); err != nil {
		return nil, err
	}

	var lines []models.RequisitionItem
	if input.Lines != nil {
		if lines, err = buildLines(input.Lines); err != nil {
			return nil, err
		}
	}

	if err := s.store.ReplaceDraft(ctx, req, input.SupplierID, input.Notes, lines); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, id, scope.VesselID)
}

// AddItem appends a line to a draft, merging with an existing line for the
// same catalogue item.
func (s *RequisitionService) AddItem(ctx context.Context, scope auth.Scope, id, itemID uint, qty int) (*models.Requisition, error) {
	if !auth.Can(scope, auth.CapEditRequisition) {
		return nil, domain.ErrUnauthorized("edit requisitions")
	}
	if itemID == 0 {
		return nil, domain.NewError(domain.KindValidation, "item id is required")
	}
	if qty <= 0 {
		return nil, domain.NewError(domain.KindInvalidQuantity, "line quantity must be positive")
	}

	req, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateEdit(req.Status); err != nil {
		return nil, err
	}

	if err := s.store.AddLine(ctx, req, itemID, qty); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, id, scope.VesselID)
}

// ChangeStatus applies a caller-requested transition from the state machine
// table. Receipt-driven statuses are unreachable through this path.
func (s *RequisitionService) ChangeStatus(ctx context.Context, scope auth.Scope, id uint, targetStr string) (*models.Requisition, error) {
	if !auth.Can(scope, auth.CapChangeStatus) {
		return nil, domain.ErrUnauthorized("change requisition status")
	}

	target, err := domain.ParseStatus(targetStr)
	if err != nil {
		return nil, err
	}

	req, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateTransition(req.Status, target, req.SupplierID != nil, len(req.Items)); err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("change-requisition-status")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "requisition_id", req.ID)
	s.tracer.AddAttribute(txn, "target_status", string(target))

	var orderedAt *time.Time
	if target == domain.StatusOrdered {
		now := time.Now().UTC()
		orderedAt = &now
	}

	if err := s.store.UpdateStatus(ctx, req, target, orderedAt); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	log.Info().
		Uint("requisition_id", req.ID).
		Str("from", string(req.Status)).
		Str("to", string(target)).
		Msg("requisition status changed")

	return s.store.GetByID(ctx, id, scope.VesselID)
}

// ReceiveLine posts a partial receipt against one line. The received quantity
// and the recomputed status are written atomically.
func (s *RequisitionService) ReceiveLine(ctx context.Context, scope auth.Scope, id, lineID uint, qty int) (*models.Requisition, error) {
	if !auth.Can(scope, auth.CapReceiveItems) {
		return nil, domain.ErrUnauthorized("receive items")
	}

	req, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}

	var line *models.RequisitionItem
	for i := range req.Items {
		if req.Items[i].ID == lineID {
			line = &req.Items[i]
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound("requisition item")
	}

	if err := domain.ValidateReceipt(req.Status, domain.Line{Ordered: line.Quantity, Received: line.ReceivedQty}, qty); err != nil {
		return nil, err
	}

	// Recompute the derived status from the post-receipt snapshot.
	lines := req.Lines()
	for i := range req.Items {
		if req.Items[i].ID == lineID {
			lines[i].Received += qty
		}
	}
	newStatus := domain.ComputeStatus(lines)

	txn := s.tracer.StartTransaction("receive-requisition-line")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "requisition_id", req.ID)
	s.tracer.AddAttribute(txn, "qty", qty)

	if err := s.store.ApplyReceipt(ctx, req, lineID, qty, newStatus); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	log.Info().
		Uint("requisition_id", req.ID).
		Uint("line_id", lineID).
		Int("qty", qty).
		Str("status", string(newStatus)).
		Msg("receipt posted")

	return s.store.GetByID(ctx, id, scope.VesselID)
}

// Delete removes a requisition that never left the draft/cancelled statuses.
func (s *RequisitionService) Delete(ctx context.Context, scope auth.Scope, id uint) error {
	if !auth.Can(scope, auth.CapEditRequisition) {
		return domain.ErrUnauthorized("delete requisitions")
	}

	req, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return err
	}
	if err := domain.ValidateDelete(req.Status); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, req); err != nil {
		return err
	}

	log.Info().Uint("requisition_id", req.ID).Msg("requisition deleted")
	return nil
}
