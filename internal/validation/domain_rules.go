package validation

import (
	"panda-service/internal/domain/entity"
	"panda-service/pkg/validator"

	playground "github.com/go-playground/validator/v10"
)

// Tags backed by domain enumerations and codecs
const (
	TagTimestamp         = "timestamp"
	TagAppointmentStatus = "appointment_status"
	TagDepartment        = "department"
)

// RegisterDomainRules teaches cv the appointment tags and swaps its nhs_number
// tag for the configured NHS number rule.
func RegisterDomainRules(cv *validator.CustomValidator, rules Rules) {
	cv.MustRegister(TagTimestamp, validator.CodeInvalidFormat, "must be an ISO-8601 timestamp with offset", func(fl playground.FieldLevel) bool {
		_, err := entity.DecodeTimestamp(fl.Field().String())
		return err == nil
	})
	cv.MustRegister(TagAppointmentStatus, validator.CodeInvalidValue, "must be one of scheduled, attended, cancelled, missed", func(fl playground.FieldLevel) bool {
		_, err := entity.ParseAppointmentStatus(fl.Field().String())
		return err == nil
	})
	cv.MustRegister(TagDepartment, validator.CodeInvalidValue, "is not a known department", func(fl playground.FieldLevel) bool {
		return entity.Department(fl.Field().String()).IsValid()
	})
	if rules.NHSNumber != nil {
		cv.MustRegister(validator.TagNHSNumber, validator.CodeInvalidFormat, "must be a valid 10 digit NHS number", func(fl playground.FieldLevel) bool {
			return rules.NHSNumber(fl.Field().String())
		})
	}
}
