package domain

// Line is the quantity view of one requisition line used by the lifecycle
// rules. Repositories map their persistence rows onto this.
type Line struct {
	Ordered  int
	Received int
}

// Remaining returns how many units are still outstanding on the line.
func (l Line) Remaining() int {
	return l.Ordered - l.Received
}

// ValidateTransition checks a caller-requested status change. hasSupplier and
// lineCount describe the requisition header at the time of the request: a
// draft may be assembled incrementally, so the supplier and line requirements
// are enforced here, on the way out of draft, rather than at creation.
func ValidateTransition(current, target Status, hasSupplier bool, lineCount int) error {
	if !target.Valid() {
		return NewError(KindValidation, "unknown status %q", target)
	}
	if !current.CanTransitionTo(target) {
		return NewError(KindInvalidTransition, "cannot change status from %s to %s", current, target)
	}
	if current == StatusDraft && target == StatusRFQSent {
		if !hasSupplier {
			return NewError(KindMissingSupplier, "a supplier must be set before sending an RFQ")
		}
		if lineCount == 0 {
			return NewError(KindValidation, "requisition must contain at least one item")
		}
	}
	return nil
}

// ValidateEdit checks that line or header mutation is still permitted.
func ValidateEdit(current Status) error {
	if current != StatusDraft {
		return NewError(KindImmutableState, "requisition in status %s cannot be edited", current)
	}
	return nil
}

// ValidateDelete checks that the requisition may be removed.
func ValidateDelete(current Status) error {
	if !current.Deletable() {
		return NewError(KindDeleteNotAllowed, "requisition in status %s cannot be deleted", current)
	}
	return nil
}

// ValidateReceipt checks the preconditions for posting qty units against a
// line. The bounds guarantee received quantities stay within 0..ordered and
// never decrease.
func ValidateReceipt(current Status, line Line, qty int) error {
	if !current.Receivable() {
		return NewError(KindNotReceivable, "requisition in status %s cannot receive items", current)
	}
	if qty <= 0 {
		return NewError(KindInvalidQuantity, "receipt quantity must be positive")
	}
	if remaining := line.Remaining(); qty > remaining {
		return NewError(KindOverReceipt, "receipt of %d exceeds remaining quantity %d", qty, remaining)
	}
	return nil
}

// ComputeStatus derives the post-receipt status from a snapshot of all lines.
// It depends only on the snapshot, so it is idempotent and independent of the
// order receipts were posted in.
func ComputeStatus(lines []Line) Status {
	if len(lines) == 0 {
		return StatusOrdered
	}
	full := true
	any := false
	for _, l := range lines {
		if l.Received > 0 {
			any = true
		}
		if l.Received < l.Ordered {
			full = false
		}
	}
	switch {
	case full:
		return StatusReceived
	case any:
		return StatusPartiallyReceived
	default:
		return StatusOrdered
	}
}
