package domain

// Status is the lifecycle state of a requisition.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusRFQSent           Status = "rfq_sent"
	StatusOrdered           Status = "ordered"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// allowedTransitions holds the caller-requested transitions. Receipt-driven
// transitions (ordered -> partially_received -> received) are applied by the
// receiving ledger and are deliberately absent from this table.
var allowedTransitions = map[Status][]Status{
	StatusDraft:             {StatusRFQSent, StatusCancelled},
	StatusRFQSent:           {StatusOrdered, StatusCancelled},
	StatusOrdered:           {},
	StatusPartiallyReceived: {},
	StatusReceived:          {},
	StatusCancelled:         {},
}

// ParseStatus validates a status string from the wire.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := allowedTransitions[status]; !ok {
		return "", NewError(KindValidation, "unknown status %q", s)
	}
	return status, nil
}

// Valid reports whether the status is one of the closed set.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether a caller may request a transition from s
// to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Receivable reports whether receipts may be posted in this status.
func (s Status) Receivable() bool {
	return s == StatusOrdered || s == StatusPartiallyReceived
}

// Deletable reports whether a requisition in this status may be deleted.
// Anything that has been committed to a supplier is kept for the audit trail.
func (s Status) Deletable() bool {
	return s == StatusDraft || s == StatusCancelled
}
