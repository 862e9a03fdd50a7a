package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"panda-service/internal/converter"
	"panda-service/internal/delivery/dto"
	"panda-service/internal/domain/entity"
	"panda-service/internal/domain/repository"
	"panda-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrInvalidAppointmentDate = errors.New("invalid appointment date")
	ErrInvalidAppointment     = errors.New("invalid appointment submission")
	ErrCannotMarkMissed       = errors.New("only scheduled appointments can be marked as missed")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	GetPatientAppointments(ctx context.Context, patientID int) (*dto.AppointmentListResponse, error)
	UpdateAppointment(ctx context.Context, id int, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error)
	MarkMissed(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id int) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
	now             func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
		now:             time.Now,
	}
}

func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := appointmentFromRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requirePatient(tx, appointment.PatientID); err != nil {
		return nil, err
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		if isForeignKeyError(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	resp := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionAppointmentCreate, service.AuditEntityAppointment, appointment.ID, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%d, patient=%d, status=%s", appointment.ID, appointment.PatientID, appointment.Status)
	return resp, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("appointment %d", id), err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	var status *entity.AppointmentStatus
	if filter != nil && filter.Status != "" {
		parsed, err := entity.ParseAppointmentStatus(filter.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
		}
		status = &parsed
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), status)
	if err != nil {
		logReadError(u.log, "appointments", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetPatientAppointments(ctx context.Context, patientID int) (*dto.AppointmentListResponse, error) {
	db := u.db.WithContext(ctx)

	if err := u.requirePatient(db, patientID); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByPatientID(db, patientID)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("appointments of patient %d", patientID), err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateAppointment replaces every field of an existing appointment.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, id int, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	updated, err := appointmentFromRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("appointment %d", id), err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if updated.PatientID != appointment.PatientID {
		if err := u.requirePatient(tx, updated.PatientID); err != nil {
			return nil, err
		}
	}

	oldValue := converter.AppointmentToResponse(appointment)
	updated.ID = appointment.ID

	if err := u.appointmentRepo.Update(tx, updated); err != nil {
		u.log.Warnf("Failed to update appointment %d: %+v", id, err)
		return nil, err
	}

	resp := converter.AppointmentToResponse(updated)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentUpdate, service.AuditEntityAppointment, id, oldValue, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

// MarkMissed records that the patient did not attend. Marking an appointment that is
// already missed returns it unchanged.
func (u *appointmentUsecase) MarkMissed(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("appointment %d", id), err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsMissed() {
		return converter.AppointmentToResponse(appointment), nil
	}
	if !appointment.IsScheduled() {
		return nil, ErrCannotMarkMissed
	}

	oldValue := converter.AppointmentToResponse(appointment)
	appointment.MarkMissed(u.now().UTC())

	rows, err := u.appointmentRepo.MarkMissed(tx, id, appointment.MissedTimestamp)
	if err != nil {
		u.log.Warnf("Failed to mark appointment %d as missed: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrCannotMarkMissed
	}

	resp := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentMissed, service.AuditEntityAppointment, id, oldValue, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("appointment %d", id), err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if err := u.appointmentRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete appointment %d: %+v", id, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionAppointmentDelete, service.AuditEntityAppointment, id, converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *appointmentUsecase) requirePatient(db *gorm.DB, patientID int) error {
	patient, err := u.patientRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return err
	}
	if patient == nil {
		return ErrPatientNotFound
	}
	return nil
}

func appointmentFromRequest(req *dto.AppointmentRequest) (*entity.Appointment, error) {
	if req == nil {
		return nil, ErrInvalidAppointment
	}

	at, err := entity.DecodeTimestamp(strings.TrimSpace(req.AppointmentDate))
	if err != nil {
		return nil, ErrInvalidAppointmentDate
	}

	status := entity.AppointmentStatusScheduled
	if req.Status != "" {
		status, err = entity.ParseAppointmentStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
		}
	}

	department := entity.Department(req.Department)
	if !department.IsValid() {
		return nil, fmt.Errorf("%w: unknown department %q", ErrInvalidAppointment, req.Department)
	}

	appointment := &entity.Appointment{
		PatientID:       req.PatientID,
		AppointmentDate: entity.NewTimestamp(at),
		Status:          status,
		Clinician:       strings.TrimSpace(req.Clinician),
		Department:      department,
	}

	if req.MissedTimestamp != nil {
		missed, err := entity.DecodeTimestamp(strings.TrimSpace(*req.MissedTimestamp))
		if err != nil {
			return nil, fmt.Errorf("%w: missed_timestamp: %v", ErrInvalidAppointment, err)
		}
		appointment.MissedTimestamp = entity.NewNullTimestamp(missed)
	}

	return appointment, nil
}
