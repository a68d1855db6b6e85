package slot

import "fmt"

// Status is the closed set of slot occupancy states. Persisted as its string
// form; parsed back through ParseStatus at the store boundary.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHold      Status = "HOLD"
	StatusBooked    Status = "BOOKED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHold, StatusBooked:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown slot status %q", raw)
	}
	return s, nil
}
