package handler

import (
	"errors"
	"net/http"

	"panda-service/internal/delivery/dto"
	"panda-service/internal/usecase"
	"panda-service/pkg/response"
	"panda-service/pkg/validator"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
	log                *logrus.Logger
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator, log *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
		log:                log,
	}
}

// CreateAppointment books an appointment
// @Summary Create an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.AppointmentRequest true "Appointment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

// GetAllAppointments lists appointments, optionally by status
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param status query string false "scheduled, attended, cancelled or missed"
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	filter := dto.AppointmentFilterRequest{Status: r.URL.Query().Get("status")}
	if err := h.validator.Validate(&filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err).Failures)
		return
	}

	appointments, err := h.appointmentUsecase.GetAllAppointments(r.Context(), &filter)
	if err != nil {
		h.writeError(w, r, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.AppointmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

// MarkMissed records a no-show
// @Summary Mark an appointment as missed
// @Tags Appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id}/missed [post]
func (h *AppointmentHandler) MarkMissed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.MarkMissed(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to mark appointment as missed")
		return
	}

	response.Success(w, http.StatusOK, "Appointment marked as missed", appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.appointmentUsecase.DeleteAppointment(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment deleted successfully", nil)
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request, req *dto.AppointmentRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err).Failures)
		return false
	}
	return true
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	case errors.Is(err, usecase.ErrCannotMarkMissed):
		response.Conflict(w, "Only scheduled appointments can be marked as missed")
	case errors.Is(err, usecase.ErrInvalidAppointmentDate):
		response.Error(w, http.StatusBadRequest, "Invalid appointment date, use ISO-8601 with offset", nil)
	case errors.Is(err, usecase.ErrInvalidAppointment):
		response.Error(w, http.StatusBadRequest, "Invalid appointment", nil)
	default:
		internalError(h.log, w, r, err, message)
	}
}
