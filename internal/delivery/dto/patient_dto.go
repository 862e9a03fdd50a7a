package dto

// Request DTOs

// CreatePatientRequest is the patient submission shape. PUT uses it too, since
// updates replace every field.
type CreatePatientRequest struct {
	FirstName   string  `json:"first_name" validate:"notblank,max=50"`
	LastName    string  `json:"last_name" validate:"notblank,max=50"`
	DateOfBirth string  `json:"date_of_birth" validate:"dob"` // Format: YYYY-MM-DD
	NHSNumber   string  `json:"nhs_number" validate:"nhs_number"`
	Postcode    string  `json:"postcode" validate:"postcode"`
	Gender      *string `json:"gender" validate:"required,gender"`
}

type PatientFilterRequest struct {
	NHSNumber string `json:"nhs_number" validate:"omitempty,nhs_number"`
}

// Response DTOs

type PatientResponse struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	NHSNumber   string `json:"nhs_number"`
	Postcode    string `json:"postcode"`
	Gender      string `json:"gender"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
