package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/auth"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/repository"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/request"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/response"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/workflow"
)

type ScanRequest struct {
	ScannedText string `json:"scanned_text" validate:"required"`
}

type DelayRequest struct {
	DelayMinutes int    `json:"delay_minutes" validate:"required,gt=0"`
	DelayReason  string `json:"delay_reason" validate:"required"`
}

type CancelRequest struct {
	CancellationReason string `json:"cancellation_reason" validate:"required"`
}

// CurrentDriver returns the driver resolved for this session.
func (app *Config) CurrentDriver(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}
	response.Success(w, "Driver retrieved successfully", sess.Driver)
}

// ListTrips returns the driver's assigned trips in display order.
func (app *Config) ListTrips(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}

	trips, err := app.Workflow.Trips(r.Context(), sess.Token, sess.Driver.ID)
	if err != nil {
		app.writeWorkflowError(w, err)
		return
	}

	response.Success(w, "Trips retrieved successfully", trips)
}

// ScanGuest confirms guest collection from a completed QR scan.
func (app *Config) ScanGuest(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}

	var scanRequest ScanRequest
	err := request.ReadAndValidate(w, r, &scanRequest)
	if request.HandleError(w, err) {
		return
	}

	tripID := chi.URLParam(r, "trip_id")
	trips, err := app.Workflow.ConfirmCollection(r.Context(), sess.Token, sess.Driver, tripID, scanRequest.ScannedText)
	if err != nil {
		app.writeWorkflowError(w, err)
		return
	}

	app.writeUpdated(w, "Guest collected successfully", trips)
}

// MarkArrived completes the trip.
func (app *Config) MarkArrived(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}

	tripID := chi.URLParam(r, "trip_id")
	trips, err := app.Workflow.MarkArrived(r.Context(), sess.Token, sess.Driver, tripID)
	if err != nil {
		app.writeWorkflowError(w, err)
		return
	}

	app.writeUpdated(w, "Trip marked as arrived", trips)
}

// SetDelay records a delay on a collected trip.
func (app *Config) SetDelay(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}

	var delayRequest DelayRequest
	err := request.ReadAndValidate(w, r, &delayRequest)
	if request.HandleError(w, err) {
		return
	}

	tripID := chi.URLParam(r, "trip_id")
	trips, err := app.Workflow.SetDelay(r.Context(), sess.Token, sess.Driver, tripID, delayRequest.DelayMinutes, delayRequest.DelayReason)
	if err != nil {
		app.writeWorkflowError(w, err)
		return
	}

	app.writeUpdated(w, "Delay recorded", trips)
}

// CancelTrip cancels any non-cancelled trip.
func (app *Config) CancelTrip(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No driver session")
		return
	}

	var cancelRequest CancelRequest
	err := request.ReadAndValidate(w, r, &cancelRequest)
	if request.HandleError(w, err) {
		return
	}

	tripID := chi.URLParam(r, "trip_id")
	trips, err := app.Workflow.Cancel(r.Context(), sess.Token, sess.Driver, tripID, cancelRequest.CancellationReason)
	if err != nil {
		app.writeWorkflowError(w, err)
		return
	}

	app.writeUpdated(w, "Trip cancelled", trips)
}

// writeUpdated responds to a successful transition. trips is nil when the
// post-update refresh failed; the transition itself still succeeded and the
// client keeps its previous list.
func (app *Config) writeUpdated(w http.ResponseWriter, message string, trips []models.Trip) {
	data := map[string]interface{}{}
	if trips != nil {
		data["trips"] = trips
	}
	response.Success(w, message, data)
}

// writeWorkflowError maps the workflow error taxonomy onto HTTP statuses:
// local validation and mismatch are the caller's fault, backend failures
// surface the backend-provided message as a gateway error.
func (app *Config) writeWorkflowError(w http.ResponseWriter, err error) {
	var validationErr *workflow.ValidationError
	if errors.As(err, &validationErr) {
		response.BadRequest(w, validationErr.Message)
		return
	}

	var mismatchErr *workflow.MismatchError
	if errors.As(err, &mismatchErr) {
		response.Conflict(w, mismatchErr.Error())
		return
	}

	if errors.Is(err, repository.ErrTripNotFound) {
		response.NotFound(w, "Trip not found")
		return
	}

	var queryErr *backend.QueryError
	if errors.As(err, &queryErr) {
		response.BadGateway(w, queryErr.Message)
		return
	}

	response.InternalServerError(w, err.Error())
}
