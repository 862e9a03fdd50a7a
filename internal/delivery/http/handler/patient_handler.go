package handler

import (
	"errors"
	"net/http"

	"panda-service/internal/delivery/dto"
	"panda-service/internal/usecase"
	"panda-service/internal/validation"
	"panda-service/pkg/response"
	"panda-service/pkg/validator"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

type PatientHandler struct {
	patientUsecase     usecase.PatientUsecase
	appointmentUsecase usecase.AppointmentUsecase
	patientValidator   *validation.PatientValidator
	validator          *validator.CustomValidator
	log                *logrus.Logger
}

func NewPatientHandler(
	patientUsecase usecase.PatientUsecase,
	appointmentUsecase usecase.AppointmentUsecase,
	patientValidator *validation.PatientValidator,
	validator *validator.CustomValidator,
	log *logrus.Logger,
) *PatientHandler {
	return &PatientHandler{
		patientUsecase:     patientUsecase,
		appointmentUsecase: appointmentUsecase,
		patientValidator:   patientValidator,
		validator:          validator,
		log:                log,
	}
}

// CreatePatient handles patient registration
// @Summary Register a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param request body dto.CreatePatientRequest true "Patient"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	patient, err := h.patientUsecase.CreatePatient(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDuplicateNHSNumber):
			response.Conflict(w, "A patient with this NHS number already exists")
		case errors.Is(err, usecase.ErrInvalidPatient):
			response.Error(w, http.StatusBadRequest, "Invalid patient", nil)
		default:
			internalError(h.log, w, r, err, "Failed to create patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient created successfully", patient)
}

// GetAllPatients lists patients, optionally by NHS number
// @Summary List patients
// @Tags Patients
// @Produce json
// @Param nhs_number query string false "NHS number"
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	filter := dto.PatientFilterRequest{NHSNumber: r.URL.Query().Get("nhs_number")}
	if err := h.validator.Validate(&filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err).Failures)
		return
	}

	patients, err := h.patientUsecase.GetAllPatients(r.Context(), &filter)
	if err != nil {
		internalError(h.log, w, r, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	patient, err := h.patientUsecase.GetPatient(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		internalError(h.log, w, r, err, "Failed to get patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

// UpdatePatient replaces a patient record
// @Summary Update a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param request body dto.CreatePatientRequest true "Patient"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patients/{id} [put]
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	req, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	patient, err := h.patientUsecase.UpdatePatient(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrDuplicateNHSNumber):
			response.Conflict(w, "A patient with this NHS number already exists")
		case errors.Is(err, usecase.ErrInvalidPatient):
			response.Error(w, http.StatusBadRequest, "Invalid patient", nil)
		default:
			internalError(h.log, w, r, err, "Failed to update patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient updated successfully", patient)
}

func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	if err := h.patientUsecase.DeletePatient(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		internalError(h.log, w, r, err, "Failed to delete patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted successfully", nil)
}

func (h *PatientHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	appointments, err := h.appointmentUsecase.GetPatientAppointments(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		internalError(h.log, w, r, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// decodePatient reads the body and runs the patient rules, writing the 400 itself on failure.
func (h *PatientHandler) decodePatient(w http.ResponseWriter, r *http.Request) (*dto.CreatePatientRequest, bool) {
	var req dto.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}

	if result := h.patientValidator.ValidatePatient(&req); !result.Valid() {
		response.ValidationError(w, result.Failures)
		return nil, false
	}

	return &req, true
}
