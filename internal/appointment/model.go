package appointment

import (
	"time"
)

type Status string

const (
	StatusConfirmed   Status = "confirmed"
	StatusCancelled   Status = "cancelled"
	StatusCompleted   Status = "completed"
	StatusRescheduled Status = "rescheduled"
)

const (
	RoleAdmin = "admin"
)

type Doctor struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Available   bool     `json:"available"`
	Schedule    []string `json:"schedule,omitempty"`
}

type Appointment struct {
	ID        int64     `json:"id"`
	Reference string    `json:"appointmentId"`
	PatientID string    `json:"patientId"`
	Doctor    string    `json:"doctor"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Notes     string    `json:"notes,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the appointment still holds its slot.
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is an authenticated caller.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

// Snapshot is the whole persisted state. It is always read and written as a unit.
type Snapshot struct {
	Doctors      []Doctor          `json:"doctors"`
	Appointments []Appointment     `json:"appointments"`
	Users        []User            `json:"users"`
	Settings     map[string]string `json:"settings"`
	NextID       int64             `json:"nextId"`
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Doctors:      make([]Doctor, len(s.Doctors)),
		Appointments: make([]Appointment, len(s.Appointments)),
		Users:        make([]User, len(s.Users)),
		Settings:     make(map[string]string, len(s.Settings)),
		NextID:       s.NextID,
	}
	for i, d := range s.Doctors {
		if d.Schedule != nil {
			d.Schedule = append([]string(nil), d.Schedule...)
		}
		out.Doctors[i] = d
	}
	copy(out.Appointments, s.Appointments)
	copy(out.Users, s.Users)
	for k, v := range s.Settings {
		out.Settings[k] = v
	}
	return out
}

func (s *Snapshot) findAppointment(id int64) int {
	for i := range s.Appointments {
		if s.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}

// allocateID hands out the next id. Ids are never reused, even after deletes.
func (s *Snapshot) allocateID() int64 {
	next := s.NextID
	for _, a := range s.Appointments {
		if a.ID > next {
			next = a.ID
		}
	}
	for _, u := range s.Users {
		if u.ID > next {
			next = u.ID
		}
	}
	next++
	s.NextID = next
	return next
}

// ChangeKind identifies the mutation behind a ChangeEvent.
type ChangeKind string

const (
	ChangeCreated       ChangeKind = "created"
	ChangeStatusUpdated ChangeKind = "statusUpdated"
	ChangeDeleted       ChangeKind = "deleted"
)

// ChangeEvent is emitted exactly once per committed mutation.
type ChangeEvent struct {
	Seq           uint64       `json:"seq"`
	Kind          ChangeKind   `json:"type"`
	AppointmentID int64        `json:"appointmentId"`
	Status        Status       `json:"status,omitempty"`
	Appointment   *Appointment `json:"appointment,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

type Statistics struct {
	TotalAppointments     int `json:"totalAppointments"`
	TodayAppointments     int `json:"todayAppointments"`
	ConfirmedAppointments int `json:"confirmedAppointments"`
	CompletedAppointments int `json:"completedAppointments"`
	CancelledAppointments int `json:"cancelledAppointments"`
	TotalDoctors          int `json:"totalDoctors"`
	AvailableDoctors      int `json:"availableDoctors"`
}

type ListFilter struct {
	Status Status
	Doctor string
	Date   string
	Page   int
	Limit  int
}

type Page struct {
	Data       []Appointment `json:"data"`
	Current    int           `json:"current"`
	TotalPages int           `json:"total"`
	TotalCount int           `json:"totalAppointments"`
}
