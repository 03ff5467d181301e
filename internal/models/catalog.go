package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Count *int      `json:"count,omitempty"`
}

type Experience struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Images      []string  `json:"images,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	HostID      uuid.UUID `json:"host_id"`
	HostName    string    `json:"host_name"`
	HostImage   *string   `json:"host_image,omitempty"`
	Duration    int       `json:"duration"`
	Languages   []string  `json:"languages"`
	Included    []string  `json:"included"`
	CreatedAt   time.Time `json:"created_at"`
}
