// Package alert provides HTTP handlers for the operator alert surface.
// It includes handlers for listing the alert log, manual alert creation,
// single-record lookup, and resending failed alerts.
package alert

import (
	"time"

	"shopalert/internal/domain/entity"
)

// DTO represents the JSON structure for alert record data transfer.
type DTO struct {
	ID          string    `json:"id" example:"0fdc9f1e-3c2a-4f5b-9a8e-1b2c3d4e5f60"`
	ShopID      string    `json:"shop_id" example:"demo-store.myshopify.com"`
	EventType   string    `json:"event_type" example:"PRODUCTS_CREATE"`
	Message     string    `json:"message"`
	Status      string    `json:"status" example:"SUCCESS"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	CreatedAt   time.Time `json:"created_at" example:"2026-03-14T09:30:00Z"`
}

func toDTO(record *entity.AlertRecord) DTO {
	return DTO{
		ID:          record.ID,
		ShopID:      record.ShopID,
		EventType:   string(record.EventType),
		Message:     record.Message,
		Status:      string(record.Status),
		ErrorDetail: record.ErrorDetail,
		CreatedAt:   record.CreatedAt,
	}
}
