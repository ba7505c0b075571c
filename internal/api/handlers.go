package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/auth"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Create(r.Context(), req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateAppointmentResponse{
			Success:           true,
			AppointmentID:     appt.ID,
			AppointmentNumber: appt.Reference,
			Message:           "Appointment booked successfully",
		})
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := appointment.ListFilter{
			Status: appointment.Status(q.Get("status")),
			Doctor: q.Get("doctor"),
			Date:   q.Get("date"),
			Page:   queryInt(q.Get("page"), 1),
			Limit:  queryInt(q.Get("limit"), 10),
		}

		page, err := svc.List(r.Context(), auth.PrincipalFrom(r.Context()), filter)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, ListAppointmentsResponse{
			Success: true,
			Data:    page.Data,
			Pagination: Pagination{
				Current:           page.Current,
				Total:             page.TotalPages,
				TotalAppointments: page.TotalCount,
			},
		})
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), auth.PrincipalFrom(r.Context()), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentResponse{Success: true, Appointment: appt})
	}
}

func updateStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), auth.PrincipalFrom(r.Context()), id, req.Status)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentResponse{
			Success:     true,
			Message:     "Appointment status updated",
			Appointment: appt,
		})
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Appointment deleted successfully"})
	}
}

func statisticsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := time.Now().UTC().Format("2006-01-02")

		st, err := svc.Statistics(r.Context(), auth.PrincipalFrom(r.Context()), today)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, DataResponse{Success: true, Data: st})
	}
}

func listDoctorsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.Doctors(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		total := len(doctors)
		writeJSON(w, http.StatusOK, DataResponse{Success: true, Data: doctors, Total: &total})
	}
}

func getDoctorHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		doctor, err := svc.Doctor(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, DataResponse{Success: true, Data: doctor})
	}
}

func loginHandler(a *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		token, user, err := a.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Token:   token,
			User: UserResponse{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
				Role:  user.Role,
			},
		})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *appointment.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   verr.Reason,
			Code:    "validation_failed",
			Missing: verr.Missing,
		})
	case errors.Is(err, appointment.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", "Invalid status")
	case errors.Is(err, appointment.ErrValidationFailed):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "Time slot already booked")
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "Appointment not found")
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", "Doctor not found")
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "missing_credentials", "Email and password required")
	case errors.Is(err, appointment.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "Admin access required")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_aborted", "request aborted before it could be applied")
	default:
		log.Printf("internal error request_id=%s path=%s err=%v", GetRequestID(r.Context()), r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
