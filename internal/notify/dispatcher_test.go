package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func guestTrip() models.Trip {
	first := "Amara"
	last := "Okafor"
	return models.Trip{
		ID:        "t1",
		GuestID:   "g1",
		EventID:   "e1",
		FirstName: &first,
		LastName:  &last,
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name   string
		change models.StatusChange
		title  string
		body   string
	}{
		{
			"collected",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusCollected, DriverName: "Dana Petrov"},
			"Guest collected",
			"Amara Okafor has been collected by Dana Petrov.",
		},
		{
			"collected without driver name",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusCollected},
			"Guest collected",
			"Amara Okafor has been collected by your driver.",
		},
		{
			"arrived",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusArrived},
			"Guest arrived",
			"Amara Okafor has arrived at the destination.",
		},
		{
			"delayed",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusDelayed, Reason: "traffic on the A40", DelayMinutes: 15},
			"Pickup delayed",
			"Pickup for Amara Okafor is delayed by 15 minutes: traffic on the A40",
		},
		{
			"cancelled",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusCancelled, Reason: "guest no-show"},
			"Trip cancelled",
			"The trip for Amara Okafor has been cancelled: guest no-show",
		},
		{
			"unknown status produces nothing",
			models.StatusChange{Trip: guestTrip(), Status: models.StatusPending},
			"",
			"",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			title, body := Compose(test.change)
			if title != test.title {
				t.Errorf("title = %q, expected %q", title, test.title)
			}
			if body != test.body {
				t.Errorf("body = %q, expected %q", body, test.body)
			}
		})
	}
}

func TestDispatch_InsertsScopedRecord(t *testing.T) {
	var gotPath string
	var gotRecord map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotRecord)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	dispatcher := NewDispatcher(backend.New(server.URL, "key", nil), testLogger())
	dispatcher.Dispatch(context.Background(), "token", models.StatusChange{
		Trip:       guestTrip(),
		Status:     models.StatusArrived,
		DriverName: "Dana Petrov",
	})

	if gotPath != "/rest/v1/notifications" {
		t.Errorf("path = %q, expected /rest/v1/notifications", gotPath)
	}
	if gotRecord["event_id"] != "e1" || gotRecord["guest_id"] != "g1" {
		t.Errorf("record not scoped to trip: %v", gotRecord)
	}
	if gotRecord["type"] != "trip_status" {
		t.Errorf("type = %v, expected trip_status", gotRecord["type"])
	}
	if gotRecord["module"] != "driver_portal" {
		t.Errorf("module = %v, expected driver_portal", gotRecord["module"])
	}
}

func TestDispatch_SwallowsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"insert failed"}`))
	}))
	defer server.Close()

	dispatcher := NewDispatcher(backend.New(server.URL, "key", nil), testLogger())

	// Must not panic or propagate the failure.
	dispatcher.Dispatch(context.Background(), "token", models.StatusChange{
		Trip:   guestTrip(),
		Status: models.StatusCollected,
	})
}

func TestDispatch_SkipsUnknownStatus(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	dispatcher := NewDispatcher(backend.New(server.URL, "key", nil), testLogger())
	dispatcher.Dispatch(context.Background(), "token", models.StatusChange{
		Trip:   guestTrip(),
		Status: models.StatusPending,
	})

	if called {
		t.Error("expected no backend call for a status without a notification")
	}
}
