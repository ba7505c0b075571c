package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type Channel string

const (
	ChannelAppointments Channel = "appointmentUpdated"
	ChannelAdmin        Channel = "adminNotification"
)

const (
	NotificationNewAppointment = "new_appointment"
	NotificationStatusUpdated  = "appointment_status_updated"
	NotificationDeleted        = "appointment_deleted"
)

// Notification is the human readable admin feed derived from a change.
type Notification struct {
	Type          string                   `json:"type"`
	Message       string                   `json:"message"`
	AppointmentID int64                    `json:"appointmentId"`
	Appointment   *appointment.Appointment `json:"appointment,omitempty"`
	Timestamp     time.Time                `json:"timestamp"`
}

// Message is one frame delivered to a subscriber. Exactly one of Change
// and Notification is set.
type Message struct {
	Channel      Channel
	Change       *appointment.ChangeEvent
	Notification *Notification
}

func (m Message) MarshalJSON() ([]byte, error) {
	var data any
	switch {
	case m.Change != nil:
		data = m.Change
	case m.Notification != nil:
		data = m.Notification
	}
	return json.Marshal(struct {
		Event Channel `json:"event"`
		Data  any     `json:"data"`
	}{Event: m.Channel, Data: data})
}

func notificationFor(ev appointment.ChangeEvent) Notification {
	n := Notification{
		AppointmentID: ev.AppointmentID,
		Appointment:   ev.Appointment,
		Timestamp:     ev.Timestamp,
	}

	switch ev.Kind {
	case appointment.ChangeCreated:
		n.Type = NotificationNewAppointment
		doctor := "a doctor"
		if ev.Appointment != nil {
			doctor = ev.Appointment.Doctor
		}
		n.Message = fmt.Sprintf("New appointment booked with %s", doctor)
	case appointment.ChangeStatusUpdated:
		n.Type = NotificationStatusUpdated
		ref := fmt.Sprintf("%d", ev.AppointmentID)
		if ev.Appointment != nil {
			ref = ev.Appointment.Reference
		}
		n.Message = fmt.Sprintf("Appointment %s marked %s", ref, ev.Status)
	case appointment.ChangeDeleted:
		n.Type = NotificationDeleted
		n.Message = fmt.Sprintf("Appointment %d was deleted", ev.AppointmentID)
	}
	return n
}
