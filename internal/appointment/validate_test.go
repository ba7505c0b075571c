package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"09:00":    "09:00",
		"9:00":     "09:00",
		" 14:30 ":  "14:30",
		"14:30:00": "14:30",
		"2:30PM":   "14:30",
		"2:30 pm":  "14:30",
		"9 AM":     "09:00",
		"12PM":     "12:00",
	}
	for in, want := range cases {
		got, err := NormalizeTime(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "25:00", "noon", "9.30"} {
		_, err := NormalizeTime(bad)
		require.Error(t, err, bad)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-06-01": "2024-06-01",
		"2024/06/01": "2024-06-01",
		"2024-6-1":   "2024-06-01",
		"2024/6/1":   "2024-06-01",
	}
	for in, want := range cases {
		got, err := NormalizeDate(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "01-06-2024", "2024-13-01", "tomorrow"} {
		_, err := NormalizeDate(bad)
		require.Error(t, err, bad)
	}
}

func TestCreateRequest_Validate(t *testing.T) {
	valid := CreateRequest{
		Doctor:   "  Dr. Alice Smith ",
		FullName: " Jane Roe",
		Email:    "jane@example.com ",
		Phone:    "555-0100",
		Date:     "2024/6/1",
		Time:     "9:00 am",
		Notes:    " first visit ",
	}

	out, err := valid.Validate()
	require.NoError(t, err)
	require.Equal(t, CreateRequest{
		Doctor:   "Dr. Alice Smith",
		FullName: "Jane Roe",
		Email:    "jane@example.com",
		Phone:    "555-0100",
		Date:     "2024-06-01",
		Time:     "09:00",
		Notes:    "first visit",
	}, out)

	_, err = CreateRequest{}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Missing required fields", verr.Reason)
	require.Equal(t, []string{"doctor", "fullName", "email", "phone", "date", "time"}, verr.Missing)

	blank := valid
	blank.Phone = "   "
	_, err = blank.Validate()
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"phone"}, verr.Missing)

	for _, email := range []string{"jane", "jane@", "jane@example", "ja ne@example.com"} {
		bad := valid
		bad.Email = email
		_, err := bad.Validate()
		require.ErrorIs(t, err, ErrValidationFailed, email)
	}

	badDate := valid
	badDate.Date = "June first"
	_, err = badDate.Validate()
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestTransition(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := Appointment{Status: StatusCompleted}

	require.NoError(t, Transition(&a, "confirmed", now))
	require.Equal(t, StatusConfirmed, a.Status)
	require.Equal(t, now, a.UpdatedAt)

	later := now.Add(time.Hour)
	err := Transition(&a, "Cancelled", later)
	require.ErrorIs(t, err, ErrUnknownStatus)
	require.Equal(t, StatusConfirmed, a.Status)
	require.Equal(t, now, a.UpdatedAt)
}

func TestCheckSlot(t *testing.T) {
	snap := Snapshot{Appointments: []Appointment{
		{ID: 1, Doctor: "Dr. A", Date: "2024-06-01", Time: "09:00", Status: StatusCancelled},
		{ID: 2, Doctor: "Dr. A", Date: "2024-06-01", Time: "09:00", Status: StatusCompleted},
		{ID: 3, Doctor: "Dr. A", Date: "2024-06-01", Time: "10:00", Status: StatusRescheduled},
	}}

	res := CheckSlot(&snap, Slot{Doctor: "Dr. A", Date: "2024-06-01", Time: "09:00"})
	require.False(t, res.Available())
	require.Equal(t, int64(2), res.ExistingID, "cancelled bookings do not hold the slot")

	require.Equal(t, int64(3), CheckSlot(&snap, Slot{Doctor: "Dr. A", Date: "2024-06-01", Time: "10:00"}).ExistingID)
	require.True(t, CheckSlot(&snap, Slot{Doctor: "Dr. B", Date: "2024-06-01", Time: "09:00"}).Available())
	require.True(t, CheckSlot(&snap, Slot{Doctor: "Dr. A", Date: "2024-06-02", Time: "09:00"}).Available())
}

func TestCatalogResolveDoctor(t *testing.T) {
	snap := DefaultSnapshot()
	cat := CatalogOf(&snap)

	d, ok := cat.ResolveDoctor("2")
	require.True(t, ok)
	require.Equal(t, "Dr. John Doe", d.Name)

	d, ok = cat.ResolveDoctor("  dr. MARIA lopez ")
	require.True(t, ok)
	require.Equal(t, int64(3), d.ID)

	_, ok = cat.ResolveDoctor("Dr. Nobody")
	require.False(t, ok)
	require.Equal(t, "Dr. Nobody", canonicalDoctor(cat, " Dr. Nobody "))
}
