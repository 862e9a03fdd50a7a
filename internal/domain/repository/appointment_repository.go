package repository

import (
	"panda-service/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int) (*entity.Appointment, error)
	FindAll(db *gorm.DB, status *entity.AppointmentStatus) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID int) ([]entity.Appointment, error)
	FindScheduledIDs(db *gorm.DB) ([]int, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	MarkMissed(db *gorm.DB, id int, at entity.NullTimestamp) (int64, error)
	Delete(db *gorm.DB, id int) error
	DeleteByPatientID(db *gorm.DB, patientID int) (int64, error)
}
