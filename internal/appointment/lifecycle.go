package appointment

import (
	"fmt"
	"time"
)

var knownStatuses = map[Status]struct{}{
	StatusConfirmed:   {},
	StatusCancelled:   {},
	StatusCompleted:   {},
	StatusRescheduled: {},
}

// ParseStatus accepts exactly the four known statuses.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := knownStatuses[s]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Transition moves a to the requested status. Any known status may follow
// any other, including completed -> confirmed.
// TODO: replace with a transition table once product decides which moves are legal.
func Transition(a *Appointment, requested string, now time.Time) error {
	status, err := ParseStatus(requested)
	if err != nil {
		return err
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}
