package models

import (
	"time"
)

type Event struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Venue          string    `json:"venue"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"` // draft, published, ended
}

// TicketGroup is a named bucket of tiers ("GA", "VIP") with its own fee
// items and display ordering. A group belongs to exactly one event.
type TicketGroup struct {
	ID           string `json:"id"`
	EventID      string `json:"event_id"`
	Name         string `json:"name"`
	DisplayColor string `json:"display_color"`
	SortOrder    int    `json:"sort_order"`
}

// TicketTier is the orderable unit. GroupID is empty when the tier is
// not part of any group.
type TicketTier struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	GroupID   string `json:"group_id,omitempty"`
	Name      string `json:"name"`
	FacePrice int64  `json:"face_price"` // cents
	IsActive  bool   `json:"is_active"`
}
