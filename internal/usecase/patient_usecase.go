package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"panda-service/internal/converter"
	"panda-service/internal/delivery/dto"
	"panda-service/internal/domain/entity"
	"panda-service/internal/domain/repository"
	"panda-service/internal/service"
	"panda-service/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrDuplicateNHSNumber = errors.New("NHS number already registered")
	ErrInvalidPatient     = errors.New("invalid patient submission")
)

type PatientUsecase interface {
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, id int) (*dto.PatientResponse, error)
	GetAllPatients(ctx context.Context, filter *dto.PatientFilterRequest) (*dto.PatientListResponse, error)
	UpdatePatient(ctx context.Context, id int, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id int) error
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// CreatePatient stores a submission that has already passed ValidatePatient.
func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	patient, err := patientFromRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.patientRepo.FindByNHSNumber(tx, patient.NHSNumber)
	if err != nil {
		u.log.Warnf("Failed to check NHS number: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateNHSNumber
	}

	if err := u.patientRepo.Create(tx, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		if isDuplicateKeyError(err, "nhs_number") {
			return nil, ErrDuplicateNHSNumber
		}
		return nil, err
	}

	resp := converter.PatientToResponse(patient)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionPatientCreate, service.AuditEntityPatient, patient.ID, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient created: id=%d", patient.ID)
	return resp, nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id int) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		logReadError(u.log, fmt.Sprintf("patient %d", id), err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

// GetAllPatients lists patients, or the single patient holding filter.NHSNumber when set.
func (u *patientUsecase) GetAllPatients(ctx context.Context, filter *dto.PatientFilterRequest) (*dto.PatientListResponse, error) {
	db := u.db.WithContext(ctx)

	var patients []entity.Patient
	if filter != nil && filter.NHSNumber != "" {
		patient, err := u.patientRepo.FindByNHSNumber(db, validator.NormalizeNHSNumber(filter.NHSNumber))
		if err != nil {
			logReadError(u.log, "patient by NHS number", err)
			return nil, err
		}
		if patient != nil {
			patients = append(patients, *patient)
		}
	} else {
		found, err := u.patientRepo.FindAll(db)
		if err != nil {
			logReadError(u.log, "patients", err)
			return nil, err
		}
		patients = found
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

// UpdatePatient replaces every field of an existing patient.
func (u *patientUsecase) UpdatePatient(ctx context.Context, id int, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	updated, err := patientFromRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", id, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if updated.NHSNumber != patient.NHSNumber {
		holder, err := u.patientRepo.FindByNHSNumber(tx, updated.NHSNumber)
		if err != nil {
			u.log.Warnf("Failed to check NHS number: %+v", err)
			return nil, err
		}
		if holder != nil {
			return nil, ErrDuplicateNHSNumber
		}
	}

	oldValue := converter.PatientToResponse(patient)
	updated.ID = patient.ID

	if err := u.patientRepo.Update(tx, updated); err != nil {
		u.log.Warnf("Failed to update patient %d: %+v", id, err)
		if isDuplicateKeyError(err, "nhs_number") {
			return nil, ErrDuplicateNHSNumber
		}
		return nil, err
	}

	resp := converter.PatientToResponse(updated)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionPatientUpdate, service.AuditEntityPatient, id, oldValue, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

// DeletePatient removes the patient together with all of their appointments.
func (u *patientUsecase) DeletePatient(ctx context.Context, id int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", id, err)
		return err
	}
	if patient == nil {
		return ErrPatientNotFound
	}

	removed, err := u.appointmentRepo.DeleteByPatientID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointments of patient %d: %+v", id, err)
		return err
	}

	if err := u.patientRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete patient %d: %+v", id, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionPatientDelete, service.AuditEntityPatient, id, converter.PatientToResponse(patient)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Patient deleted: id=%d, appointments=%d", id, removed)
	return nil
}

// patientFromRequest builds the stored form of a submission: NHS number as ten
// digits, postcode upper-case with a single space.
func patientFromRequest(req *dto.CreatePatientRequest) (*entity.Patient, error) {
	if req == nil || req.Gender == nil {
		return nil, ErrInvalidPatient
	}

	dob, err := entity.ParseDate(strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}

	return &entity.Patient{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DateOfBirth: dob,
		NHSNumber:   validator.NormalizeNHSNumber(req.NHSNumber),
		Postcode:    validator.NormalizePostcode(req.Postcode),
		Gender:      entity.Gender(*req.Gender),
	}, nil
}
