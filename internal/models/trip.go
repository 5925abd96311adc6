package models

import (
	"strings"
	"time"
)

// TripStatus is the lifecycle state of a guest trip. The backend stores it
// as a plain text column; a missing value means the trip has not been
// actioned yet.
type TripStatus string

const (
	StatusPending   TripStatus = "pending"
	StatusCollected TripStatus = "collected"
	StatusArrived   TripStatus = "arrived"
	StatusDelayed   TripStatus = "delayed"
	StatusCancelled TripStatus = "cancelled"
)

// Normalize maps an absent status to pending.
func (s TripStatus) Normalize() TripStatus {
	if s == "" {
		return StatusPending
	}
	return s
}

// IsTerminal reports whether no further driver action is offered.
func (s TripStatus) IsTerminal() bool {
	switch s.Normalize() {
	case StatusArrived, StatusCancelled:
		return true
	}
	return false
}

// CanScan reports whether the guest QR scan action applies. Collection is
// only confirmed once, from the pending state.
func (s TripStatus) CanScan() bool {
	return s.Normalize() == StatusPending
}

// CanArrive reports whether the trip can be marked as arrived. A delayed
// trip rejoins the main lane either by re-collecting or by arriving.
func (s TripStatus) CanArrive() bool {
	switch s.Normalize() {
	case StatusCollected, StatusDelayed:
		return true
	}
	return false
}

// CanDelay reports whether a delay can be recorded. Delay is only offered
// once the guest has been collected, never from pending.
func (s TripStatus) CanDelay() bool {
	return s.Normalize() == StatusCollected
}

// CanCancel reports whether the trip can still be cancelled.
func (s TripStatus) CanCancel() bool {
	return s.Normalize() != StatusCancelled
}

// Trip is one assignment of a guest to a driver for a single leg. Rows are
// created and owned by the hosted backend; this service only reads a
// driver-scoped view and patches status fields.
type Trip struct {
	ID       string `json:"id"`
	GuestID  string `json:"guest_id"`
	EventID  string `json:"event_id"`
	DriverID string `json:"driver_id"`

	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	GuestContactNumber *string `json:"guest_contact_number"`
	HostContactNumber  *string `json:"host_contact_number"`

	PickupTime      *time.Time `json:"pickup_time"`
	DropoffTime     *time.Time `json:"dropoff_time"`
	PickupLocation  *string    `json:"pickup_location"`
	DropoffLocation *string    `json:"dropoff_location"`

	Status TripStatus `json:"status"`

	CollectedAt        *time.Time `json:"collected_at,omitempty"`
	ArrivedAt          *time.Time `json:"arrived_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	DelayReason        *string    `json:"delay_reason,omitempty"`
	DelayMinutes       *int       `json:"delay_minutes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}

// EffectiveStatus returns the trip status with absent values normalized to
// pending.
func (t *Trip) EffectiveStatus() TripStatus {
	return t.Status.Normalize()
}

// GuestName returns the guest's display name, or "Guest" when the backend
// holds no name for them.
func (t *Trip) GuestName() string {
	var parts []string
	if t.FirstName != nil && *t.FirstName != "" {
		parts = append(parts, *t.FirstName)
	}
	if t.LastName != nil && *t.LastName != "" {
		parts = append(parts, *t.LastName)
	}
	if len(parts) == 0 {
		return "Guest"
	}
	return strings.Join(parts, " ")
}

// StatusPatch is the partial update applied for exactly one status
// transition. Only the fields relevant to the new status are set; metadata
// from earlier states is left in place.
type StatusPatch struct {
	Status             TripStatus `json:"status"`
	CollectedAt        *time.Time `json:"collected_at,omitempty"`
	ArrivedAt          *time.Time `json:"arrived_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	DelayReason        *string    `json:"delay_reason,omitempty"`
	DelayMinutes       *int       `json:"delay_minutes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}

// Driver is the authenticated operator. Resolved once per session from the
// backend's drivers table and never mutated here.
type Driver struct {
	ID         string `json:"id"`
	AuthUserID string `json:"auth_user_id"`
	FullName   string `json:"full_name"`
}

// StatusChange describes one completed transition for the best-effort side
// channels (notifications, journey checkpoints, status events).
type StatusChange struct {
	Trip         Trip
	Status       TripStatus
	DriverName   string
	Reason       string
	DelayMinutes int
}
