package entity

// Gender is stored by name.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// Genders lists every recognised Gender in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderUnknown}

func (g Gender) IsValid() bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

// Patient represents a registered patient
type Patient struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName   string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(50);not null" json:"last_name"`
	DateOfBirth Date   `gorm:"not null" json:"date_of_birth"`
	NHSNumber   string `gorm:"column:nhs_number;type:varchar(10);uniqueIndex;not null" json:"nhs_number"`
	Postcode    string `gorm:"type:varchar(8);not null" json:"postcode"`
	Gender      Gender `gorm:"type:text;not null" json:"gender"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"appointments,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}
