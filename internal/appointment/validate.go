package appointment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnknownStatus    = fmt.Errorf("%w: invalid status", ErrValidationFailed)
)

// ValidationError describes a user-correctable request problem.
type ValidationError struct {
	Reason  string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateRequest is the validated input of a booking.
type CreateRequest struct {
	Doctor   string `json:"doctor"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes,omitempty"`
}

// Validate checks required fields and the email shape, and returns the
// request with date and time in canonical form.
func (r CreateRequest) Validate() (CreateRequest, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"doctor", r.Doctor},
		{"fullName", r.FullName},
		{"email", r.Email},
		{"phone", r.Phone},
		{"date", r.Date},
		{"time", r.Time},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return r, &ValidationError{Reason: "Missing required fields", Missing: missing}
	}

	out := r
	out.Doctor = strings.TrimSpace(r.Doctor)
	out.FullName = strings.TrimSpace(r.FullName)
	out.Email = strings.TrimSpace(r.Email)
	out.Phone = strings.TrimSpace(r.Phone)
	out.Notes = strings.TrimSpace(r.Notes)

	if !emailPattern.MatchString(out.Email) {
		return r, &ValidationError{Reason: "Invalid email format"}
	}

	date, err := NormalizeDate(r.Date)
	if err != nil {
		return r, &ValidationError{Reason: err.Error()}
	}
	slot, err := NormalizeTime(r.Time)
	if err != nil {
		return r, &ValidationError{Reason: err.Error()}
	}
	out.Date = date
	out.Time = slot

	return out, nil
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2"}

// NormalizeDate returns date as YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", raw)
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// NormalizeTime returns a slot label as 24h HH:MM.
func NormalizeTime(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", raw)
}
