package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalid           = errors.New("invalid")
	ErrLocked            = errors.New("estimate is locked")
)

// Estimate is the priced document (a quote) that owns a group/item tree.
// The totals fields are a snapshot written on save; the tree is always the
// source of truth.
type Estimate struct {
	ID         string
	CustomerID *string
	Title      string `validate:"required"`
	Status     EstimateStatus
	Notes      string
	Totals     Totals
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var estimateTransitions = map[EstimateStatus][]EstimateStatus{
	EstimateDraft:    {EstimateSent, EstimateAccepted},
	EstimateSent:     {EstimateAccepted, EstimateRejected, EstimateDraft},
	EstimateRejected: {EstimateDraft},
	EstimateAccepted: {EstimateConverted, EstimateDraft},
}

// CanTransition reports whether the estimate may move to next.
func (e *Estimate) CanTransition(next EstimateStatus) bool {
	for _, s := range estimateTransitions[e.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves the estimate to next, or reports ErrInvalidTransition.
// Moving to the current status is a no-op.
func (e *Estimate) Transition(next EstimateStatus, now time.Time) error {
	if !ValidEstimateStatuses[string(next)] {
		return fmt.Errorf("status %q: %w", next, ErrInvalid)
	}
	if e.Status == next {
		return nil
	}
	if !e.CanTransition(next) {
		return fmt.Errorf("%s -> %s: %w", e.Status, next, ErrInvalidTransition)
	}
	e.Status = next
	e.UpdatedAt = now
	return nil
}

// IsLocked reports whether the estimate can no longer be edited.
func (e *Estimate) IsLocked() bool {
	return e.Status == EstimateConverted
}

// DisplayID truncates ID to 8 characters.
func (e *Estimate) DisplayID() string {
	if len(e.ID) >= 8 {
		return e.ID[:8]
	}
	return e.ID
}
