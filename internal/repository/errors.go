package repository

import "errors"

// ErrTripNotFound is returned when a trip does not exist in the driver's
// scoped view.
var ErrTripNotFound = errors.New("trip not found")
