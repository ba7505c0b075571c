package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type CreateAppointmentResponse struct {
	Success           bool   `json:"success"`
	AppointmentID     int64  `json:"appointmentId"`
	AppointmentNumber string `json:"appointmentNumber"`
	Message           string `json:"message"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message,omitempty"`
	Appointment *appointment.Appointment `json:"appointment"`
}

type Pagination struct {
	Current           int `json:"current"`
	Total             int `json:"total"`
	TotalAppointments int `json:"totalAppointments"`
}

type ListAppointmentsResponse struct {
	Success    bool                      `json:"success"`
	Data       []appointment.Appointment `json:"data"`
	Pagination Pagination                `json:"pagination"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Total   *int `json:"total,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
