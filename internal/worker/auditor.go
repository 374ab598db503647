package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/metrics"
	"example.com/shipstores/internal/models"
)

type auditStore interface {
	ListOpen(ctx context.Context, limit int) ([]models.Requisition, error)
	UpdateStatus(ctx context.Context, req *models.Requisition, target domain.Status, orderedAt *time.Time) error
}

// Auditor periodically recomputes the derived status of open requisitions
// from their line quantities and repairs any drift. Receipts write both
// atomically, so drift only appears after manual data fixes or bugs; the
// audit keeps the invariant self-healing either way.
type Auditor struct {
	store     auditStore
	collector *metrics.Metrics
	batchSize int
}

// NewAuditor creates a new status consistency auditor
func NewAuditor(store auditStore, collector *metrics.Metrics, batchSize int) *Auditor {
	if batchSize < 1 {
		batchSize = 200
	}
	return &Auditor{
		store:     store,
		collector: collector,
		batchSize: batchSize,
	}
}

// Run performs one audit pass and returns the number of repaired records.
func (a *Auditor) Run(ctx context.Context) (int, error) {
	start := time.Now()

	reqs, err := a.store.ListOpen(ctx, a.batchSize)
	if err != nil {
		a.collector.SetHealth("status_audit", false)
		return 0, err
	}

	repaired := 0
	for i := range reqs {
		req := &reqs[i]
		expected := domain.ComputeStatus(req.Lines())
		if expected == req.Status {
			continue
		}

		log.Warn().
			Uint("requisition_id", req.ID).
			Str("stored", string(req.Status)).
			Str("computed", string(expected)).
			Msg("status drift detected")

		if err := a.store.UpdateStatus(ctx, req, expected, nil); err != nil {
			// A concurrent receipt beat the audit to it; the next pass
			// re-checks from fresh state.
			if domain.IsKind(err, domain.KindConcurrentModification) {
				continue
			}
			a.collector.SetHealth("status_audit", false)
			return repaired, err
		}
		repaired++
		a.collector.IncrementCounter("status_audit.repairs")
	}

	a.collector.SetHealth("status_audit", true)
	a.collector.RecordTimer("status_audit", time.Since(start))

	log.Info().
		Int("checked", len(reqs)).
		Int("repaired", repaired).
		Msg("status audit completed")
	return repaired, nil
}
