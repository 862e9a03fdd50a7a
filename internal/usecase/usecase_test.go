package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"panda-service/config"
	"panda-service/internal/delivery/dto"
	"panda-service/internal/domain/entity"
	"panda-service/internal/infrastructure/database"
	"panda-service/internal/repository"
	"panda-service/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	patients     PatientUsecase
	appointments AppointmentUsecase
	auditLogs    AuditLogUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewSQLiteConnection(config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"}, "test")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditRepo)

	return &fixture{
		db:           db,
		patients:     NewPatientUsecase(db, log, patientRepo, appointmentRepo, auditService),
		appointments: NewAppointmentUsecase(db, log, appointmentRepo, patientRepo, auditService),
		auditLogs:    NewAuditLogUsecase(db, log, auditRepo),
	}
}

func strPtr(s string) *string { return &s }

func patientRequest(nhsNumber string) *dto.CreatePatientRequest {
	return &dto.CreatePatientRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: "1985-03-14",
		NHSNumber:   nhsNumber,
		Postcode:    "sw1a1aa",
		Gender:      strPtr("female"),
	}
}

func appointmentRequest(patientID int) *dto.AppointmentRequest {
	return &dto.AppointmentRequest{
		PatientID:       patientID,
		AppointmentDate: "2025-04-02T09:30:00.0000000+01:00",
		Clinician:       "Dr Smith",
		Department:      "cardiology",
	}
}

func TestPatientUsecase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.patients.CreatePatient(ctx, patientRequest("943 476 5919"))
	require.NoError(t, err)
	assert.Equal(t, "9434765919", created.NHSNumber)
	assert.Equal(t, "SW1A 1AA", created.Postcode)
	assert.Equal(t, "1985-03-14", created.DateOfBirth)

	t.Run("duplicate nhs number", func(t *testing.T) {
		_, err := f.patients.CreatePatient(ctx, patientRequest("9434765919"))
		assert.ErrorIs(t, err, ErrDuplicateNHSNumber)
	})

	t.Run("missing gender is rejected", func(t *testing.T) {
		req := patientRequest("4010232137")
		req.Gender = nil
		_, err := f.patients.CreatePatient(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidPatient)
	})

	t.Run("get and filter", func(t *testing.T) {
		got, err := f.patients.GetPatient(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		_, err = f.patients.GetPatient(ctx, 999)
		assert.ErrorIs(t, err, ErrPatientNotFound)

		list, err := f.patients.GetAllPatients(ctx, &dto.PatientFilterRequest{NHSNumber: "943-476-5919"})
		require.NoError(t, err)
		assert.Equal(t, 1, list.Total)

		list, err = f.patients.GetAllPatients(ctx, &dto.PatientFilterRequest{NHSNumber: "4010232137"})
		require.NoError(t, err)
		assert.Zero(t, list.Total)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		req := patientRequest("9434765919")
		req.LastName = "Smith"
		req.Gender = strPtr("other")

		updated, err := f.patients.UpdatePatient(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Smith", updated.LastName)
		assert.Equal(t, "other", updated.Gender)

		_, err = f.patients.UpdatePatient(ctx, 999, req)
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("update to a taken nhs number", func(t *testing.T) {
		other, err := f.patients.CreatePatient(ctx, patientRequest("4010232137"))
		require.NoError(t, err)

		_, err = f.patients.UpdatePatient(ctx, other.ID, patientRequest("9434765919"))
		assert.ErrorIs(t, err, ErrDuplicateNHSNumber)
	})

	t.Run("delete removes appointments", func(t *testing.T) {
		_, err := f.appointments.CreateAppointment(ctx, appointmentRequest(created.ID))
		require.NoError(t, err)

		require.NoError(t, f.patients.DeletePatient(ctx, created.ID))
		assert.ErrorIs(t, f.patients.DeletePatient(ctx, created.ID), ErrPatientNotFound)

		var count int64
		require.NoError(t, f.db.Model(&entity.Appointment{}).Where("patient_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("every change is audited", func(t *testing.T) {
		logs, err := f.auditLogs.GetAllAuditLogs(ctx)
		require.NoError(t, err)

		var actions []string
		for _, l := range logs.Logs {
			actions = append(actions, l.Action)
		}
		assert.ElementsMatch(t, []string{
			entity.AuditActionPatientCreate,
			entity.AuditActionPatientUpdate,
			entity.AuditActionPatientCreate,
			entity.AuditActionAppointmentCreate,
			entity.AuditActionPatientDelete,
		}, actions)

		got, err := f.auditLogs.GetAuditLog(ctx, logs.Logs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, entity.AuditActionPatientDelete, got.Action)
		assert.Equal(t, "patient", got.Metadata["entity"])

		_, err = f.auditLogs.GetAuditLog(ctx, 999)
		assert.ErrorIs(t, err, ErrAuditLogNotFound)
	})
}

func TestAppointmentUsecase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	patient, err := f.patients.CreatePatient(ctx, patientRequest("9434765919"))
	require.NoError(t, err)

	t.Run("unknown patient", func(t *testing.T) {
		_, err := f.appointments.CreateAppointment(ctx, appointmentRequest(999))
		assert.ErrorIs(t, err, ErrPatientNotFound)

		_, err = f.appointments.GetPatientAppointments(ctx, 999)
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	created, err := f.appointments.CreateAppointment(ctx, appointmentRequest(patient.ID))
	require.NoError(t, err)

	t.Run("defaults and keeps offset", func(t *testing.T) {
		assert.Equal(t, "scheduled", created.Status)
		assert.Equal(t, "2025-04-02T09:30:00.0000000+01:00", created.AppointmentDate)
		assert.Nil(t, created.MissedTimestamp)

		got, err := f.appointments.GetAppointment(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("invalid date", func(t *testing.T) {
		req := appointmentRequest(patient.ID)
		req.AppointmentDate = "2025-04-02 09:30"
		_, err := f.appointments.CreateAppointment(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidAppointmentDate)
	})

	t.Run("update and filter by status", func(t *testing.T) {
		req := appointmentRequest(patient.ID)
		req.Status = "cancelled"
		req.Department = "oncology"
		updated, err := f.appointments.UpdateAppointment(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", updated.Status)
		assert.Equal(t, "oncology", updated.Department)

		list, err := f.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{Status: "cancelled"})
		require.NoError(t, err)
		assert.Equal(t, 1, list.Total)

		list, err = f.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{Status: "scheduled"})
		require.NoError(t, err)
		assert.Zero(t, list.Total)

		_, err = f.appointments.UpdateAppointment(ctx, 999, req)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("mark missed", func(t *testing.T) {
		_, err := f.appointments.MarkMissed(ctx, created.ID)
		assert.ErrorIs(t, err, ErrCannotMarkMissed)

		other, err := f.appointments.CreateAppointment(ctx, appointmentRequest(patient.ID))
		require.NoError(t, err)

		now := time.Date(2025, 4, 3, 8, 0, 0, 0, time.UTC)
		f.appointments.(*appointmentUsecase).now = func() time.Time { return now }

		missed, err := f.appointments.MarkMissed(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "missed", missed.Status)
		require.NotNil(t, missed.MissedTimestamp)
		assert.Equal(t, "2025-04-03T08:00:00.0000000+00:00", *missed.MissedTimestamp)

		again, err := f.appointments.MarkMissed(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, missed, again)

		_, err = f.appointments.MarkMissed(ctx, 999)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("patient appointments and delete", func(t *testing.T) {
		list, err := f.appointments.GetPatientAppointments(ctx, patient.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Total)

		require.NoError(t, f.appointments.DeleteAppointment(ctx, created.ID))
		assert.ErrorIs(t, f.appointments.DeleteAppointment(ctx, created.ID), ErrAppointmentNotFound)
	})

	t.Run("corrupt status is a data integrity error", func(t *testing.T) {
		require.NoError(t, f.db.Exec("UPDATE appointments SET status = 9").Error)

		_, err := f.appointments.GetAllAppointments(ctx, nil)
		assert.ErrorIs(t, err, entity.ErrDataIntegrity)
	})
}
