// Package repository exposes the driver-scoped view of trips held by the
// hosted backend. Every read reflects backend state at call time; nothing
// is cached here.
package repository

import (
	"context"
	"net/url"
	"sort"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

const (
	tripsTable   = "trips"
	driversTable = "drivers"
)

// TripStore reads and updates trips through the backend client.
type TripStore struct {
	backend *backend.Client
}

// NewTripStore creates a trip store on top of the shared backend client.
func NewTripStore(client *backend.Client) *TripStore {
	return &TripStore{backend: client}
}

// AssignedTrips returns the driver's trips ordered by pickup time ascending.
// Trips without a pickup time sort last; ties break on trip ID ascending so
// the order is stable across refreshes. The order is requested from the
// backend and re-asserted here so the guarantee does not depend on backend
// defaults.
func (s *TripStore) AssignedTrips(ctx context.Context, token, driverID string) ([]models.Trip, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("driver_id", "eq."+driverID)
	params.Set("order", "pickup_time.asc.nullslast,id.asc")

	var trips []models.Trip
	if err := s.backend.Select(ctx, token, tripsTable, params, &trips); err != nil {
		return nil, err
	}

	sortTrips(trips)
	return trips, nil
}

// TripByID fetches one trip, scoped to the owning driver. A trip belonging
// to another driver is indistinguishable from a missing one.
func (s *TripStore) TripByID(ctx context.Context, token, driverID, tripID string) (models.Trip, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+tripID)
	params.Set("driver_id", "eq."+driverID)
	params.Set("limit", "1")

	var trips []models.Trip
	if err := s.backend.Select(ctx, token, tripsTable, params, &trips); err != nil {
		return models.Trip{}, err
	}
	if len(trips) == 0 {
		return models.Trip{}, ErrTripNotFound
	}
	return trips[0], nil
}

// UpdateStatus applies one status transition's partial update. There is no
// optimistic concurrency check; a trip is driver-exclusive so the last
// write wins.
func (s *TripStore) UpdateStatus(ctx context.Context, token, tripID string, patch models.StatusPatch) error {
	params := url.Values{}
	params.Set("id", "eq."+tripID)

	return s.backend.Patch(ctx, token, tripsTable, params, patch)
}

// DriverByAuthUser resolves the driver row for an authenticated backend
// user. Returns nil when the user has no driver record.
func (s *TripStore) DriverByAuthUser(ctx context.Context, token, authUserID string) (*models.Driver, error) {
	params := url.Values{}
	params.Set("select", "id,auth_user_id,full_name")
	params.Set("auth_user_id", "eq."+authUserID)
	params.Set("limit", "1")

	var drivers []models.Driver
	if err := s.backend.Select(ctx, token, driversTable, params, &drivers); err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		return nil, nil
	}
	return &drivers[0], nil
}

// Ping verifies the backend's trip view is reachable with the service
// credentials. Used by the readiness probe.
func (s *TripStore) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("select", "id")
	params.Set("limit", "1")

	var trips []models.Trip
	return s.backend.Select(ctx, "", tripsTable, params, &trips)
}

// sortTrips orders by pickup time ascending with nulls last, tie-broken by
// trip ID.
func sortTrips(trips []models.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i].PickupTime, trips[j].PickupTime
		switch {
		case a == nil && b == nil:
			return trips[i].ID < trips[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return trips[i].ID < trips[j].ID
		default:
			return a.Before(*b)
		}
	})
}
