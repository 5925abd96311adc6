// Package workflow drives the trip status lifecycle: which driver actions
// are valid per trip, and the decode → store → side-channel orchestration
// run on each action.
//
// The lifecycle is pending → collected → arrived, with delayed reachable
// only from collected and cancelled reachable from any non-cancelled state.
// Arrived and cancelled are terminal.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/qr"
)

// sideCallTimeout bounds the detached notification/checkpoint/event calls
// spawned after a successful transition.
const sideCallTimeout = 15 * time.Second

// TripStore is the driver-scoped trip view (implemented by
// repository.TripStore).
type TripStore interface {
	AssignedTrips(ctx context.Context, token, driverID string) ([]models.Trip, error)
	TripByID(ctx context.Context, token, driverID, tripID string) (models.Trip, error)
	UpdateStatus(ctx context.Context, token, tripID string, patch models.StatusPatch) error
}

// Notifier is the best-effort notification channel (implemented by
// notify.Dispatcher).
type Notifier interface {
	Dispatch(ctx context.Context, token string, change models.StatusChange)
}

// CheckpointRecorder is the best-effort journey audit channel (implemented
// by journey.Recorder).
type CheckpointRecorder interface {
	Record(ctx context.Context, token string, change models.StatusChange)
}

// EventPublisher is the best-effort ops event channel (implemented by
// events.Publisher). May be absent.
type EventPublisher interface {
	Publish(ctx context.Context, change models.StatusChange)
}

// Workflow orchestrates one driver action at a time against the store and
// fans the result out to the side channels.
type Workflow struct {
	store       TripStore
	notifier    Notifier
	checkpoints CheckpointRecorder
	events      EventPublisher
	log         *slog.Logger

	sideCalls sync.WaitGroup
}

// New wires a workflow. events may be nil when no broker is configured.
func New(store TripStore, notifier Notifier, checkpoints CheckpointRecorder, events EventPublisher, log *slog.Logger) *Workflow {
	return &Workflow{
		store:       store,
		notifier:    notifier,
		checkpoints: checkpoints,
		events:      events,
		log:         log,
	}
}

// Wait blocks until all in-flight side calls have finished. Used to drain
// on shutdown; no caller success path ever waits on it.
func (w *Workflow) Wait() {
	w.sideCalls.Wait()
}

// Trips returns the driver's assigned trips in display order.
func (w *Workflow) Trips(ctx context.Context, token, driverID string) ([]models.Trip, error) {
	return w.store.AssignedTrips(ctx, token, driverID)
}

// ConfirmCollection handles a completed guest QR scan against the selected
// trip. The decoded identifier must match that specific trip's guest; a
// valid code for a different guest is rejected even if that guest exists
// elsewhere in the driver's list.
func (w *Workflow) ConfirmCollection(ctx context.Context, token string, driver models.Driver, tripID, scannedText string) ([]models.Trip, error) {
	scanned := qr.Decode(scannedText)
	if !scanned.Valid {
		return nil, &ValidationError{Message: qr.InvalidFormatMessage}
	}

	trip, err := w.store.TripByID(ctx, token, driver.ID, tripID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(scanned.ID, trip.GuestID) {
		w.log.Info("scan mismatch",
			"trip_id", trip.ID,
			"scanned_id", scanned.ID,
		)
		return nil, &MismatchError{ScannedID: scanned.ID}
	}

	if status := trip.EffectiveStatus(); !status.CanScan() {
		return nil, &ValidationError{Message: fmt.Sprintf("Trip is already %s.", status)}
	}

	now := time.Now().UTC()
	patch := models.StatusPatch{
		Status:      models.StatusCollected,
		CollectedAt: &now,
	}

	return w.applyTransition(ctx, token, driver, trip, patch, models.StatusChange{
		Trip:       trip,
		Status:     models.StatusCollected,
		DriverName: driver.FullName,
	})
}

// MarkArrived completes the trip's main lane. Allowed from collected, and
// from delayed so a delayed trip can still finish.
func (w *Workflow) MarkArrived(ctx context.Context, token string, driver models.Driver, tripID string) ([]models.Trip, error) {
	trip, err := w.store.TripByID(ctx, token, driver.ID, tripID)
	if err != nil {
		return nil, err
	}

	if status := trip.EffectiveStatus(); !status.CanArrive() {
		return nil, &ValidationError{Message: fmt.Sprintf("Trip cannot be marked as arrived while %s.", status)}
	}

	now := time.Now().UTC()
	patch := models.StatusPatch{
		Status:    models.StatusArrived,
		ArrivedAt: &now,
	}

	return w.applyTransition(ctx, token, driver, trip, patch, models.StatusChange{
		Trip:       trip,
		Status:     models.StatusArrived,
		DriverName: driver.FullName,
	})
}

// SetDelay records a delay on a collected trip. Both a positive number of
// minutes and a reason are required; invalid input is rejected before any
// backend call.
func (w *Workflow) SetDelay(ctx context.Context, token string, driver models.Driver, tripID string, minutes int, reason string) ([]models.Trip, error) {
	reason = strings.TrimSpace(reason)
	if minutes <= 0 {
		return nil, &ValidationError{Message: "Delay must be a positive number of minutes."}
	}
	if reason == "" {
		return nil, &ValidationError{Message: "A delay reason is required."}
	}

	trip, err := w.store.TripByID(ctx, token, driver.ID, tripID)
	if err != nil {
		return nil, err
	}

	if status := trip.EffectiveStatus(); !status.CanDelay() {
		return nil, &ValidationError{Message: fmt.Sprintf("A delay can only be set on a collected trip, not while %s.", status)}
	}

	patch := models.StatusPatch{
		Status:       models.StatusDelayed,
		DelayMinutes: &minutes,
		DelayReason:  &reason,
	}

	return w.applyTransition(ctx, token, driver, trip, patch, models.StatusChange{
		Trip:         trip,
		Status:       models.StatusDelayed,
		DriverName:   driver.FullName,
		Reason:       reason,
		DelayMinutes: minutes,
	})
}

// Cancel cancels any non-cancelled trip. A non-empty reason is required;
// an empty one is rejected before any backend call.
func (w *Workflow) Cancel(ctx context.Context, token string, driver models.Driver, tripID, reason string) ([]models.Trip, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Message: "A cancellation reason is required."}
	}

	trip, err := w.store.TripByID(ctx, token, driver.ID, tripID)
	if err != nil {
		return nil, err
	}

	if !trip.EffectiveStatus().CanCancel() {
		return nil, &ValidationError{Message: "Trip is already cancelled."}
	}

	now := time.Now().UTC()
	patch := models.StatusPatch{
		Status:             models.StatusCancelled,
		CancelledAt:        &now,
		CancellationReason: &reason,
	}

	return w.applyTransition(ctx, token, driver, trip, patch, models.StatusChange{
		Trip:       trip,
		Status:     models.StatusCancelled,
		DriverName: driver.FullName,
		Reason:     reason,
	})
}

// applyTransition persists the patch, fans out the side channels and
// re-fetches the trip list. A store failure aborts everything: no side
// calls, no refresh, error surfaced once. A refresh failure after a
// successful write is logged only; the caller keeps its previous list.
func (w *Workflow) applyTransition(ctx context.Context, token string, driver models.Driver, trip models.Trip, patch models.StatusPatch, change models.StatusChange) ([]models.Trip, error) {
	if err := w.store.UpdateStatus(ctx, token, trip.ID, patch); err != nil {
		w.log.Error("status update failed",
			"trip_id", trip.ID,
			"status", patch.Status,
			"error", err,
		)
		return nil, err
	}

	w.log.Info("trip status updated",
		"trip_id", trip.ID,
		"status", patch.Status,
		"driver_id", driver.ID,
	)

	w.fanOut(token, change)

	trips, err := w.store.AssignedTrips(ctx, token, driver.ID)
	if err != nil {
		w.log.Warn("trip list refresh failed after update", "driver_id", driver.ID, "error", err)
		return nil, nil
	}
	return trips, nil
}

// fanOut spawns the detached side calls. Their outcome is logged inside
// each component and never reaches the triggering request.
func (w *Workflow) fanOut(token string, change models.StatusChange) {
	w.sideCalls.Add(1)
	go func() {
		defer w.sideCalls.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sideCallTimeout)
		defer cancel()

		w.checkpoints.Record(ctx, token, change)
		w.notifier.Dispatch(ctx, token, change)
		if w.events != nil {
			w.events.Publish(ctx, change)
		}
	}()
}
