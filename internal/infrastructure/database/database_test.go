package database

import (
	"testing"
	"time"

	"panda-service/config"
	"panda-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: "5432", User: "panda", Password: "p@ss/word", Name: "panda", SSLMode: "disable"}
	assert.Equal(t, "pgx5://panda:p%40ss%2Fword@db:5432/panda?sslmode=disable", migrationURL(cfg))
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(config.DBConfig{Driver: "oracle"}, "test")
	assert.Error(t, err)
}

func TestSQLite_PreservesColumnEncodings(t *testing.T) {
	cfg := config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"}
	db, err := NewConnection(cfg, "test")
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg))

	patient := &entity.Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: entity.NewDate(1985, time.March, 14),
		NHSNumber:   "9434765919",
		Postcode:    "SW1A 1AA",
		Gender:      entity.GenderFemale,
	}
	require.NoError(t, db.Create(patient).Error)

	at := time.Date(2025, 4, 2, 9, 30, 0, 123456700, time.FixedZone("", 3600))
	appointment := &entity.Appointment{
		PatientID:       patient.ID,
		AppointmentDate: entity.NewTimestamp(at),
		Status:          entity.AppointmentStatusCancelled,
		Clinician:       "Dr Who",
		Department:      entity.DepartmentCardiology,
	}
	require.NoError(t, db.Create(appointment).Error)

	var raw struct {
		AppointmentDate string
		Status          int64
		Department      string
		MissedTimestamp *string
	}
	require.NoError(t, db.Raw("SELECT appointment_date, status, department, missed_timestamp FROM appointments WHERE id = ?", appointment.ID).Scan(&raw).Error)
	assert.Equal(t, "2025-04-02T09:30:00.1234567+01:00", raw.AppointmentDate)
	assert.Equal(t, int64(2), raw.Status)
	assert.Equal(t, "cardiology", raw.Department)
	assert.Nil(t, raw.MissedTimestamp)

	var dob string
	require.NoError(t, db.Raw("SELECT date_of_birth FROM patients WHERE id = ?", patient.ID).Scan(&dob).Error)
	assert.Equal(t, "1985-03-14", dob)

	var loaded entity.Appointment
	require.NoError(t, db.First(&loaded, appointment.ID).Error)
	assert.True(t, at.Equal(loaded.AppointmentDate.Time))
	_, offset := loaded.AppointmentDate.Zone()
	assert.Equal(t, 3600, offset)
	assert.Equal(t, entity.AppointmentStatusCancelled, loaded.Status)
	assert.False(t, loaded.MissedTimestamp.Valid)
}

func TestSQLite_UnknownStatusCodeFailsRead(t *testing.T) {
	cfg := config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"}
	db, err := NewConnection(cfg, "test")
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg))

	require.NoError(t, db.Exec("INSERT INTO patients (first_name, last_name, date_of_birth, nhs_number, postcode, gender) VALUES ('A', 'B', '1990-01-01', '9434765919', 'M1 1AE', 'male')").Error)
	require.NoError(t, db.Exec("INSERT INTO appointments (patient_id, appointment_date, status, clinician, department) VALUES (1, '2025-04-02T09:30:00.0000000+00:00', 42, 'Dr X', 'oncology')").Error)

	var loaded entity.Appointment
	err = db.First(&loaded).Error
	assert.ErrorIs(t, err, entity.ErrDataIntegrity)
}
