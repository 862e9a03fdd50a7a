// Package validation decides whether patient and appointment submissions are acceptable
// before anything reaches storage. Everything here is pure and safe for concurrent use.
package validation

import (
	"strings"
	"time"

	"panda-service/config"
	"panda-service/internal/delivery/dto"
	"panda-service/internal/domain/entity"
	"panda-service/pkg/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Patient field names as reported in failures
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
	FieldNHSNumber   = "nhs_number"
	FieldPostcode    = "postcode"
	FieldGender      = "gender"
)

// Tags used only by the patient submission
const (
	TagNotBlank    = "notblank"
	TagDateOfBirth = "dob"
	TagGender      = "gender"
)

// Failure messages
const (
	MsgFirstNameRequired = "First name is required."
	MsgFirstNameTooLong  = "First name must not exceed 50 characters."
	MsgLastNameRequired  = "Last name is required."
	MsgLastNameTooLong   = "Last name must not exceed 50 characters."
	MsgInvalidBirthDate  = "Date of birth must be a valid date in the past."
	MsgInvalidNHSNumber  = "NHS number must be a valid 10 digit NHS number."
	MsgInvalidPostcode   = "Postcode must be a valid UK postcode."
	MsgGenderRequired    = "Gender is required."
	MsgInvalidGender     = "Gender must be one of male, female, other, unknown."
)

var patientMessages = map[string]map[validator.Code]string{
	FieldFirstName: {
		validator.CodeRequired: MsgFirstNameRequired,
		validator.CodeTooLong:  MsgFirstNameTooLong,
	},
	FieldLastName: {
		validator.CodeRequired: MsgLastNameRequired,
		validator.CodeTooLong:  MsgLastNameTooLong,
	},
	FieldDateOfBirth: {validator.CodeInvalidDate: MsgInvalidBirthDate},
	FieldNHSNumber:   {validator.CodeInvalidFormat: MsgInvalidNHSNumber},
	FieldPostcode:    {validator.CodeInvalidFormat: MsgInvalidPostcode},
	FieldGender: {
		validator.CodeRequired:     MsgGenderRequired,
		validator.CodeInvalidValue: MsgInvalidGender,
	},
}

// Rules holds the format predicates that are supplied from outside the validator.
type Rules struct {
	// NHSNumber reports whether the identifier is acceptable.
	NHSNumber func(string) bool
	// Postcode reports whether the postal code is acceptable.
	Postcode func(string) bool
	// DateOfBirth reports whether dob is plausible as of now.
	DateOfBirth func(dob time.Time, now time.Time) bool
}

// DefaultRules builds the UK rules: modulus 11 NHS numbers (unless disabled),
// UK postcodes and an age ceiling of cfg.MaxPatientAge years.
func DefaultRules(cfg config.ValidationConfig) Rules {
	nhsRule := validator.IsValidNHSNumber
	if !cfg.NHSChecksum {
		nhsRule = validator.IsNHSNumberFormat
	}

	maxAge := cfg.MaxPatientAge
	if maxAge <= 0 {
		maxAge = 120
	}

	return Rules{
		NHSNumber: nhsRule,
		Postcode:  validator.IsValidPostcode,
		DateOfBirth: func(dob time.Time, now time.Time) bool {
			return validator.IsPlausibleDateOfBirth(dob, now, maxAge)
		},
	}
}

// withDefaults fills any missing predicate with the checksummed UK rule.
func (r Rules) withDefaults() Rules {
	defaults := DefaultRules(config.ValidationConfig{MaxPatientAge: 120, NHSChecksum: true})
	if r.NHSNumber == nil {
		r.NHSNumber = defaults.NHSNumber
	}
	if r.Postcode == nil {
		r.Postcode = defaults.Postcode
	}
	if r.DateOfBirth == nil {
		r.DateOfBirth = defaults.DateOfBirth
	}
	return r
}

type PatientValidator struct {
	rules Rules
	now   func() time.Time
	cv    *validator.CustomValidator
}

// NewPatientValidator builds a validator for patient submissions. Predicates left
// nil in rules fall back to DefaultRules.
func NewPatientValidator(rules Rules) *PatientValidator {
	return newPatientValidator(rules.withDefaults(), time.Now)
}

func newPatientValidator(rules Rules, now func() time.Time) *PatientValidator {
	v := &PatientValidator{
		rules: rules,
		now:   now,
		cv:    validator.NewValidator(),
	}

	v.cv.MustRegister(TagNotBlank, validator.CodeRequired, "is required", validators.NotBlank)
	v.cv.MustRegister(TagDateOfBirth, validator.CodeInvalidDate, "must be a valid date in the past", func(fl playground.FieldLevel) bool {
		dob, err := entity.ParseDate(fl.Field().String())
		return err == nil && v.rules.DateOfBirth(dob.Time, v.now())
	})
	v.cv.MustRegister(validator.TagNHSNumber, validator.CodeInvalidFormat, "must be a valid 10 digit NHS number", func(fl playground.FieldLevel) bool {
		return v.rules.NHSNumber(fl.Field().String())
	})
	v.cv.MustRegister(validator.TagPostcode, validator.CodeInvalidFormat, "must be a valid UK postcode", func(fl playground.FieldLevel) bool {
		return v.rules.Postcode(fl.Field().String())
	})
	v.cv.MustRegister(TagGender, validator.CodeInvalidValue, "must be one of male, female, other, unknown", func(fl playground.FieldLevel) bool {
		return entity.Gender(fl.Field().String()).IsValid()
	})

	return v
}

// WithClock returns a copy of the validator that reads the current time from now.
func (v *PatientValidator) WithClock(now func() time.Time) *PatientValidator {
	return newPatientValidator(v.rules, now)
}

// ValidatePatient runs every field rule and returns all failures together.
// Each field reports at most one failure. Names and date of birth are checked
// in the trimmed form they are stored in.
func (v *PatientValidator) ValidatePatient(req *dto.CreatePatientRequest) validator.Result {
	if req == nil {
		req = &dto.CreatePatientRequest{}
	}

	submission := *req
	submission.FirstName = strings.TrimSpace(req.FirstName)
	submission.LastName = strings.TrimSpace(req.LastName)
	submission.DateOfBirth = strings.TrimSpace(req.DateOfBirth)

	result := v.cv.FormatValidationErrors(v.cv.Validate(&submission))
	for i := range result.Failures {
		failure := &result.Failures[i]
		if message, ok := patientMessages[failure.Field][failure.Code]; ok {
			failure.Message = message
		}
	}
	return result
}
