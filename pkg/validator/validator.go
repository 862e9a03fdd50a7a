package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom tags registered on every CustomValidator
const (
	TagNHSNumber = "nhs_number"
	TagPostcode  = "postcode"
)

type CustomValidator struct {
	validator *validator.Validate
	codes     map[string]Code
	messages  map[string]string
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	cv := &CustomValidator{
		validator: v,
		codes: map[string]Code{
			"required": CodeRequired,
			"max":      CodeTooLong,
		},
		messages: map[string]string{},
	}

	cv.MustRegister(TagNHSNumber, CodeInvalidFormat, "must be a valid 10 digit NHS number", func(fl validator.FieldLevel) bool {
		return IsValidNHSNumber(fl.Field().String())
	})
	cv.MustRegister(TagPostcode, CodeInvalidFormat, "must be a valid UK postcode", func(fl validator.FieldLevel) bool {
		return IsValidPostcode(fl.Field().String())
	})

	return cv
}

// MustRegister adds a custom tag with the failure code and message it reports.
// The message is appended to the field name.
func (cv *CustomValidator) MustRegister(tag string, code Code, message string, fn validator.Func) {
	if err := cv.validator.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
	cv.codes[tag] = code
	cv.messages[tag] = message
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// FormatValidationErrors turns go-playground errors into failures keyed by JSON field name.
func (cv *CustomValidator) FormatValidationErrors(err error) Result {
	var result Result

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return result
	}

	for _, e := range validationErrors {
		field := e.Field()
		code, ok := cv.codes[e.Tag()]
		if !ok {
			code = CodeInvalidValue
		}

		var message string
		switch e.Tag() {
		case "required":
			message = field + " is required"
		case "max":
			message = field + " must be at most " + e.Param() + " characters"
		case "min", "gte":
			message = field + " must be greater than or equal to " + e.Param()
		default:
			if custom, ok := cv.messages[e.Tag()]; ok {
				message = field + " " + custom
			} else {
				message = field + " is invalid"
			}
		}
		result.Add(field, code, message)
	}

	return result
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
