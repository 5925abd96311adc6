// Package notify delivers status-change notifications to the hosted
// backend's notifications table. Delivery is strictly best-effort: a failed
// insert is logged and swallowed, and must never affect the status
// transition that triggered it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

const (
	notificationsTable = "notifications"
	notificationType   = "trip_status"
	moduleTag          = "driver_portal"

	dispatchTimeout = 10 * time.Second
)

// Dispatcher builds and submits notification records.
type Dispatcher struct {
	backend *backend.Client
	log     *slog.Logger
}

// NewDispatcher creates a dispatcher on top of the shared backend client.
func NewDispatcher(client *backend.Client, log *slog.Logger) *Dispatcher {
	return &Dispatcher{backend: client, log: log}
}

// notificationRecord is scoped to the trip's event and guest so the hosted
// backend can route it.
type notificationRecord struct {
	EventID string `json:"event_id"`
	GuestID string `json:"guest_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Type    string `json:"type"`
	Module  string `json:"module"`
}

// Dispatch submits one notification describing a completed status change.
// It never reports failure to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, token string, change models.StatusChange) {
	title, body := Compose(change)
	if title == "" {
		return
	}

	record := notificationRecord{
		EventID: change.Trip.EventID,
		GuestID: change.Trip.GuestID,
		Title:   title,
		Body:    body,
		Type:    notificationType,
		Module:  moduleTag,
	}

	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	if err := d.backend.Insert(ctx, token, notificationsTable, record); err != nil {
		d.log.Warn("notification insert failed",
			"trip_id", change.Trip.ID,
			"status", change.Status,
			"error", err,
		)
		return
	}

	d.log.Debug("notification dispatched",
		"trip_id", change.Trip.ID,
		"status", change.Status,
	)
}

// Compose builds the human-readable title/body pair for a status change.
// Unknown statuses produce an empty title and are not dispatched.
func Compose(change models.StatusChange) (title, body string) {
	guest := change.Trip.GuestName()

	switch change.Status {
	case models.StatusCollected:
		driver := change.DriverName
		if driver == "" {
			driver = "your driver"
		}
		return "Guest collected", fmt.Sprintf("%s has been collected by %s.", guest, driver)
	case models.StatusArrived:
		return "Guest arrived", fmt.Sprintf("%s has arrived at the destination.", guest)
	case models.StatusDelayed:
		return "Pickup delayed", fmt.Sprintf("Pickup for %s is delayed by %d minutes: %s", guest, change.DelayMinutes, change.Reason)
	case models.StatusCancelled:
		return "Trip cancelled", fmt.Sprintf("The trip for %s has been cancelled: %s", guest, change.Reason)
	}
	return "", ""
}
