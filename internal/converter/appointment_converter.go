package converter

import (
	"panda-service/internal/delivery/dto"
	"panda-service/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Timestamps keep the offset they were stored with.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	var missed *string
	if appointment.MissedTimestamp.Valid {
		s := appointment.MissedTimestamp.Timestamp.String()
		missed = &s
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		AppointmentDate: appointment.AppointmentDate.String(),
		Status:          appointment.Status.String(),
		Clinician:       appointment.Clinician,
		Department:      string(appointment.Department),
		MissedTimestamp: missed,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
