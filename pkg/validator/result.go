package validator

// Code classifies why a field was rejected.
type Code string

const (
	CodeRequired      Code = "Required"
	CodeTooLong       Code = "TooLong"
	CodeInvalidDate   Code = "InvalidDate"
	CodeInvalidFormat Code = "InvalidFormat"
	CodeInvalidValue  Code = "InvalidValue"
)

// Failure is a single field-level rejection.
type Failure struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result collects every failure found in one pass. An empty result means the input is valid.
type Result struct {
	Failures []Failure `json:"failures"`
}

func (r *Result) Add(field string, code Code, message string) {
	r.Failures = append(r.Failures, Failure{Field: field, Code: code, Message: message})
}

func (r Result) Valid() bool {
	return len(r.Failures) == 0
}

// Has reports whether field failed with code.
func (r Result) Has(field string, code Code) bool {
	for _, f := range r.Failures {
		if f.Field == field && f.Code == code {
			return true
		}
	}
	return false
}

// Fields returns the names of failed fields in the order they were reported.
func (r Result) Fields() []string {
	fields := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		fields = append(fields, f.Field)
	}
	return fields
}
