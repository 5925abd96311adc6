package models

import "testing"

func TestTripStatus_Normalize(t *testing.T) {
	if got := TripStatus("").Normalize(); got != StatusPending {
		t.Errorf("Normalize(\"\") = %s, expected %s", got, StatusPending)
	}
	if got := StatusCollected.Normalize(); got != StatusCollected {
		t.Errorf("Normalize(collected) = %s, expected %s", got, StatusCollected)
	}
}

func TestTripStatus_Predicates(t *testing.T) {
	tests := []struct {
		status    TripStatus
		canScan   bool
		canArrive bool
		canDelay  bool
		canCancel bool
		terminal  bool
	}{
		{StatusPending, true, false, false, true, false},
		{TripStatus(""), true, false, false, true, false},
		{StatusCollected, false, true, true, true, false},
		{StatusDelayed, false, true, false, true, false},
		{StatusArrived, false, false, false, true, true},
		{StatusCancelled, false, false, false, false, true},
	}

	for _, test := range tests {
		if got := test.status.CanScan(); got != test.canScan {
			t.Errorf("TripStatus(%q).CanScan() = %v, expected %v", test.status, got, test.canScan)
		}
		if got := test.status.CanArrive(); got != test.canArrive {
			t.Errorf("TripStatus(%q).CanArrive() = %v, expected %v", test.status, got, test.canArrive)
		}
		if got := test.status.CanDelay(); got != test.canDelay {
			t.Errorf("TripStatus(%q).CanDelay() = %v, expected %v", test.status, got, test.canDelay)
		}
		if got := test.status.CanCancel(); got != test.canCancel {
			t.Errorf("TripStatus(%q).CanCancel() = %v, expected %v", test.status, got, test.canCancel)
		}
		if got := test.status.IsTerminal(); got != test.terminal {
			t.Errorf("TripStatus(%q).IsTerminal() = %v, expected %v", test.status, got, test.terminal)
		}
	}
}

func TestTrip_GuestName(t *testing.T) {
	first := "Amara"
	last := "Okafor"
	empty := ""

	tests := []struct {
		name     string
		trip     Trip
		expected string
	}{
		{"full name", Trip{FirstName: &first, LastName: &last}, "Amara Okafor"},
		{"first only", Trip{FirstName: &first}, "Amara"},
		{"last only", Trip{LastName: &last}, "Okafor"},
		{"nil names", Trip{}, "Guest"},
		{"empty strings", Trip{FirstName: &empty, LastName: &empty}, "Guest"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.trip.GuestName(); got != test.expected {
				t.Errorf("GuestName() = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestTrip_EffectiveStatus(t *testing.T) {
	trip := Trip{}
	if got := trip.EffectiveStatus(); got != StatusPending {
		t.Errorf("EffectiveStatus() = %s, expected %s", got, StatusPending)
	}

	trip.Status = StatusArrived
	if got := trip.EffectiveStatus(); got != StatusArrived {
		t.Errorf("EffectiveStatus() = %s, expected %s", got, StatusArrived)
	}
}
