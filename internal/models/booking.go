package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	Versioned

	ID            uuid.UUID     `json:"id"`
	PropertyID    uuid.UUID     `json:"property_id"`
	PropertyTitle string        `json:"property_title"`
	PropertyImage string        `json:"property_image"`
	TenantID      uuid.UUID     `json:"tenant_id"`
	TenantName    string        `json:"tenant_name"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Guests        int           `json:"guests"`
	TotalPrice    float64       `json:"total_price"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (b *Booking) GetID() string { return b.ID.String() }

// Blocking reports whether the booking holds its dates against new requests.
func (b *Booking) Blocking() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
