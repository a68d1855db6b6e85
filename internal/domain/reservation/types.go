package reservation

import "fmt"

// Status is the closed set of reservation states. Transitions are monotonic:
// HOLD -> CONFIRMED -> CANCELLED, HOLD -> CANCELLED, HOLD -> EXPIRED. Nothing
// ever returns to HOLD.
type Status string

const (
	StatusHold      Status = "HOLD"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusHold, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s, except
// CONFIRMED -> CANCELLED.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
	return s, nil
}
