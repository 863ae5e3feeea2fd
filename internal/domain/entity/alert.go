package entity

import (
	"strings"
	"time"
)

// AlertStatus represents the lifecycle state of one dispatch attempt.
type AlertStatus string

const (
	// AlertStatusPending is the initial state: a record exists but delivery
	// has not completed. Records must never remain here after dispatch ends.
	AlertStatusPending AlertStatus = "PENDING"

	// AlertStatusSuccess means every targeted recipient accepted the message.
	AlertStatusSuccess AlertStatus = "SUCCESS"

	// AlertStatusError means delivery failed for at least one recipient,
	// or the channel was unsupported.
	AlertStatusError AlertStatus = "ERROR"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusPending, AlertStatusSuccess, AlertStatusError:
		return true
	}
	return false
}

// AlertRecord is the durable log entry for one attempt to notify a shop of
// one event. One row per dispatch attempt, not per shop; a resend re-enters
// the same row (in-place transition back to PENDING).
type AlertRecord struct {
	ID          string
	ShopID      string
	EventType   EventType
	Message     string
	Status      AlertStatus
	ErrorDetail string
	CreatedAt   time.Time
}

// Validate checks the record's required fields.
func (a *AlertRecord) Validate() error {
	if strings.TrimSpace(a.ShopID) == "" {
		return &ValidationError{Field: "shop_id", Message: "shop id is required"}
	}
	if a.EventType == "" {
		return &ValidationError{Field: "event_type", Message: "event type is required"}
	}
	if !a.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown alert status"}
	}
	return nil
}
