package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_CodesAreStable(t *testing.T) {
	assert.Equal(t, int64(0), EncodeStatus(AppointmentStatusScheduled))
	assert.Equal(t, int64(1), EncodeStatus(AppointmentStatusAttended))
	assert.Equal(t, int64(2), EncodeStatus(AppointmentStatusCancelled))
	assert.Equal(t, int64(3), EncodeStatus(AppointmentStatusMissed))
}

func TestAppointmentStatus_RoundTrip(t *testing.T) {
	for _, status := range AppointmentStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			decoded, err := DecodeStatus(EncodeStatus(status))
			require.NoError(t, err)
			assert.Equal(t, status, decoded)

			stored, err := status.Value()
			require.NoError(t, err)

			var scanned AppointmentStatus
			require.NoError(t, scanned.Scan(stored))
			assert.Equal(t, status, scanned)

			parsed, err := ParseAppointmentStatus(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		})
	}
}

func TestDecodeStatus_UnknownCodeIsDataIntegrityError(t *testing.T) {
	for _, code := range []int64{-1, 4, 99, 1 << 40} {
		_, err := DecodeStatus(code)
		assert.ErrorIs(t, err, ErrDataIntegrity, "code %d", code)
	}

	var s AppointmentStatus
	assert.ErrorIs(t, s.Scan(int64(7)), ErrDataIntegrity)
	assert.ErrorIs(t, s.Scan("abc"), ErrDataIntegrity)
	assert.ErrorIs(t, s.Scan(nil), ErrDataIntegrity)
	assert.NoError(t, s.Scan([]byte("3")))
	assert.Equal(t, AppointmentStatusMissed, s)
}

func TestAppointmentStatus_RefusesToStoreUnknown(t *testing.T) {
	_, err := AppointmentStatus(12).Value()
	assert.ErrorIs(t, err, ErrUnknownAppointmentStatus)
	assert.NotErrorIs(t, err, ErrDataIntegrity)
}

func TestParseAppointmentStatus_Unknown(t *testing.T) {
	_, err := ParseAppointmentStatus("postponed")
	assert.ErrorIs(t, err, ErrUnknownAppointmentStatus)
}

func TestAppointment_MarkMissedAndOverdue(t *testing.T) {
	at := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	appointment := &Appointment{AppointmentDate: NewTimestamp(at), Status: AppointmentStatusScheduled}

	assert.False(t, appointment.IsOverdue(at.Add(10*time.Minute), 30*time.Minute))
	assert.True(t, appointment.IsOverdue(at.Add(31*time.Minute), 30*time.Minute))

	noticed := at.Add(time.Hour)
	appointment.MarkMissed(noticed)
	assert.True(t, appointment.IsMissed())
	require.True(t, appointment.MissedTimestamp.Valid)
	assert.True(t, noticed.Equal(appointment.MissedTimestamp.Timestamp.Time))
	assert.False(t, appointment.IsOverdue(at.Add(2*time.Hour), 0), "only scheduled appointments can be overdue")
}

func TestDepartmentAndGender(t *testing.T) {
	assert.True(t, DepartmentOncology.IsValid())
	assert.False(t, Department("astrology").IsValid())
	assert.True(t, GenderFemale.IsValid())
	assert.False(t, Gender("Female").IsValid())
}

func TestDate_ScanAndValue(t *testing.T) {
	d := NewDate(1985, time.March, 14)
	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "1985-03-14", value)

	var scanned Date
	require.NoError(t, scanned.Scan("1985-03-14"))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.Scan([]byte("1985-03-14 00:00:00")))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.Scan(time.Date(1985, 3, 14, 0, 0, 0, 0, time.FixedZone("", 3600))))
	assert.Equal(t, d, scanned)

	assert.ErrorIs(t, scanned.Scan("14/03/1985"), ErrDataIntegrity)
}
