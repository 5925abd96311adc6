package workflow

// MismatchMessage is shown when a valid guest code belongs to a different
// guest than the trip being scanned.
const MismatchMessage = "Scanned code does not match this trip's guest."

// ValidationError is a locally detected invalid input or disallowed
// transition. No backend call has been made when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MismatchError means the scanned identifier does not correspond to the
// selected trip's guest. The trip is left unchanged.
type MismatchError struct {
	ScannedID string
}

func (e *MismatchError) Error() string {
	return MismatchMessage
}
