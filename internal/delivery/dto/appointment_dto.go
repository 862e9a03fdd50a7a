package dto

// Request DTOs

// AppointmentRequest is used for both create and update; updates replace every field.
type AppointmentRequest struct {
	PatientID       int     `json:"patient_id" validate:"required,min=1"`
	AppointmentDate string  `json:"appointment_date" validate:"required,timestamp"` // ISO-8601 with offset
	Status          string  `json:"status" validate:"omitempty,appointment_status"`
	Clinician       string  `json:"clinician" validate:"required,max=100"`
	Department      string  `json:"department" validate:"required,department"`
	MissedTimestamp *string `json:"missed_timestamp" validate:"omitempty,timestamp"`
}

type AppointmentFilterRequest struct {
	Status string `json:"status" validate:"omitempty,appointment_status"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              int     `json:"id"`
	PatientID       int     `json:"patient_id"`
	AppointmentDate string  `json:"appointment_date"`
	Status          string  `json:"status"`
	Clinician       string  `json:"clinician"`
	Department      string  `json:"department"`
	MissedTimestamp *string `json:"missed_timestamp"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
