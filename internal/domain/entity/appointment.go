package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// AppointmentStatus is persisted as its integer code.
type AppointmentStatus int

const (
	AppointmentStatusScheduled AppointmentStatus = iota
	AppointmentStatusAttended
	AppointmentStatusCancelled
	AppointmentStatusMissed
)

var appointmentStatusNames = [...]string{
	AppointmentStatusScheduled: "scheduled",
	AppointmentStatusAttended:  "attended",
	AppointmentStatusCancelled: "cancelled",
	AppointmentStatusMissed:    "missed",
}

// ErrUnknownAppointmentStatus is returned for a status name that is not defined.
var ErrUnknownAppointmentStatus = errors.New("unknown appointment status")

func (s AppointmentStatus) IsValid() bool {
	return s >= 0 && int(s) < len(appointmentStatusNames)
}

func (s AppointmentStatus) String() string {
	if !s.IsValid() {
		return "AppointmentStatus(" + strconv.Itoa(int(s)) + ")"
	}
	return appointmentStatusNames[s]
}

// AppointmentStatuses lists every defined status in code order.
func AppointmentStatuses() []AppointmentStatus {
	statuses := make([]AppointmentStatus, len(appointmentStatusNames))
	for i := range appointmentStatusNames {
		statuses[i] = AppointmentStatus(i)
	}
	return statuses
}

// ParseAppointmentStatus maps a status name to its member.
func ParseAppointmentStatus(name string) (AppointmentStatus, error) {
	for i, known := range appointmentStatusNames {
		if name == known {
			return AppointmentStatus(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAppointmentStatus, name)
}

// EncodeStatus returns the storage code of s.
func EncodeStatus(s AppointmentStatus) int64 {
	return int64(s)
}

// DecodeStatus maps a storage code back to its member. Codes outside the
// defined set are a data integrity error.
func DecodeStatus(code int64) (AppointmentStatus, error) {
	s := AppointmentStatus(code)
	if int64(s) != code || !s.IsValid() {
		return 0, fmt.Errorf("%w: unknown appointment status code %d", ErrDataIntegrity, code)
	}
	return s, nil
}

// Value implements driver.Valuer
func (s AppointmentStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAppointmentStatus, int(s))
	}
	return EncodeStatus(s), nil
}

// Scan implements sql.Scanner
func (s *AppointmentStatus) Scan(value interface{}) error {
	var code int64
	switch v := value.(type) {
	case int64:
		code = v
	case int32:
		code = int64(v)
	case int:
		code = int64(v)
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: malformed appointment status %q", ErrDataIntegrity, v)
		}
		code = parsed
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: malformed appointment status %q", ErrDataIntegrity, v)
		}
		code = parsed
	default:
		return fmt.Errorf("%w: cannot scan %T into AppointmentStatus", ErrDataIntegrity, value)
	}

	decoded, err := DecodeStatus(code)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Department is stored by name.
type Department string

const (
	DepartmentCardiology       Department = "cardiology"
	DepartmentDermatology      Department = "dermatology"
	DepartmentGastroenterology Department = "gastroenterology"
	DepartmentGynaecology      Department = "gynaecology"
	DepartmentNeurology        Department = "neurology"
	DepartmentOncology         Department = "oncology"
	DepartmentOrthopaedics     Department = "orthopaedics"
	DepartmentPaediatrics      Department = "paediatrics"
)

var Departments = []Department{
	DepartmentCardiology,
	DepartmentDermatology,
	DepartmentGastroenterology,
	DepartmentGynaecology,
	DepartmentNeurology,
	DepartmentOncology,
	DepartmentOrthopaedics,
	DepartmentPaediatrics,
}

func (d Department) IsValid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// Appointment represents a patient appointment with a clinician
type Appointment struct {
	ID              int               `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID       int               `gorm:"not null;index" json:"patient_id"`
	AppointmentDate Timestamp         `gorm:"not null" json:"appointment_date"`
	Status          AppointmentStatus `gorm:"type:integer;not null" json:"status"`
	Clinician       string            `gorm:"type:text;not null" json:"clinician"`
	Department      Department        `gorm:"type:text;not null" json:"department"`
	MissedTimestamp NullTimestamp     `json:"missed_timestamp"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsScheduled checks if the appointment has not happened yet
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// IsMissed checks if the appointment was missed
func (a *Appointment) IsMissed() bool {
	return a.Status == AppointmentStatusMissed
}

// MarkMissed changes status to missed and records when that was noticed
func (a *Appointment) MarkMissed(at time.Time) {
	a.Status = AppointmentStatusMissed
	a.MissedTimestamp = NewNullTimestamp(at)
}

// IsOverdue reports whether a scheduled appointment is past its time plus grace
func (a *Appointment) IsOverdue(now time.Time, grace time.Duration) bool {
	return a.IsScheduled() && a.AppointmentDate.Add(grace).Before(now)
}
