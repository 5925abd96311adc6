// Package journey records optional audit checkpoints for guest journeys.
// The checkpoint table may not be provisioned for every deployment, so its
// absence is not treated as a failure.
package journey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

const (
	checkpointsTable = "journey_checkpoints"
	completionMethod = "driver_portal"

	recordTimeout = 10 * time.Second
)

// CheckpointType identifies the journey milestone being recorded.
type CheckpointType string

const (
	CheckpointCollected CheckpointType = "collected_by_driver"
	CheckpointArrived   CheckpointType = "arrived_at_destination"
)

// checkpointFor maps a trip status to its checkpoint type. Statuses without
// a milestone (delayed, cancelled) produce no checkpoint.
func checkpointFor(status models.TripStatus) (CheckpointType, bool) {
	switch status {
	case models.StatusCollected:
		return CheckpointCollected, true
	case models.StatusArrived:
		return CheckpointArrived, true
	}
	return "", false
}

// Recorder writes journey checkpoints through the backend client.
type Recorder struct {
	backend *backend.Client
	log     *slog.Logger
}

// NewRecorder creates a checkpoint recorder.
func NewRecorder(client *backend.Client, log *slog.Logger) *Recorder {
	return &Recorder{backend: client, log: log}
}

type checkpointRecord struct {
	GuestID          string    `json:"guest_id"`
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
	CompletionMethod string    `json:"completion_method"`
}

// Record writes the checkpoint for a completed status change, if the status
// has one. Failures are logged and swallowed; a missing checkpoint table is
// logged at debug level only.
func (r *Recorder) Record(ctx context.Context, token string, change models.StatusChange) {
	kind, ok := checkpointFor(change.Status)
	if !ok {
		return
	}

	record := checkpointRecord{
		GuestID:          change.Trip.GuestID,
		EventID:          change.Trip.EventID,
		Type:             string(kind),
		Status:           "completed",
		OccurredAt:       time.Now().UTC(),
		CompletionMethod: completionMethod,
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := r.backend.Insert(ctx, token, checkpointsTable, record); err != nil {
		var queryErr *backend.QueryError
		if errors.As(err, &queryErr) && queryErr.IsNotFound() {
			r.log.Debug("journey checkpoints not provisioned", "trip_id", change.Trip.ID)
			return
		}
		r.log.Warn("checkpoint insert failed",
			"trip_id", change.Trip.ID,
			"type", kind,
			"error", err,
		)
		return
	}

	r.log.Debug("checkpoint recorded", "trip_id", change.Trip.ID, "type", kind)
}
