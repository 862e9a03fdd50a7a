package repository

import (
	"errors"

	"panda-service/internal/domain/entity"
	domainRepo "panda-service/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindAll returns every appointment, optionally restricted to one status.
func (r *appointmentRepository) FindAll(db *gorm.DB, status *entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", entity.EncodeStatus(*status))
	}
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID int) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("patient_id = ?", patientID).
		Order("id ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindScheduledIDs lists scheduled appointments without decoding the rows,
// so one corrupt record does not hide the rest.
func (r *appointmentRepository) FindScheduledIDs(db *gorm.DB) ([]int, error) {
	var ids []int
	err := db.Model(&entity.Appointment{}).
		Where("status = ?", entity.EncodeStatus(entity.AppointmentStatusScheduled)).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Save(appointment).Error
}

// MarkMissed moves an appointment to missed ONLY if it is still scheduled.
// Returns affected rows: 1 = marked, 0 = status changed underneath us.
func (r *appointmentRepository) MarkMissed(db *gorm.DB, id int, at entity.NullTimestamp) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.EncodeStatus(entity.AppointmentStatusScheduled)).
		Updates(map[string]interface{}{
			"status":           entity.EncodeStatus(entity.AppointmentStatusMissed),
			"missed_timestamp": at,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Delete(db *gorm.DB, id int) error {
	return db.Delete(&entity.Appointment{}, id).Error
}

func (r *appointmentRepository) DeleteByPatientID(db *gorm.DB, patientID int) (int64, error) {
	result := db.Where("patient_id = ?", patientID).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
