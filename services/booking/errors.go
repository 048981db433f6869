package booking

import "fmt"

// BookingError is a user-recoverable booking failure.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrPastTime rejects targets at or before the booking instant.
var ErrPastTime = &BookingError{
	Code:    "pastTime",
	Message: "requested time is in the past",
}

// SlotTakenError is returned when the target time was consumed between
// render and commit. Alternatives carries the currently free start times
// so the caller can re-offer instead of failing bare.
type SlotTakenError struct {
	Alternatives []int
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("slot no longer available (%d alternatives)", len(e.Alternatives))
}
