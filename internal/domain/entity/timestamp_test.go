package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSameInstantAndOffset(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "instant: want %s, got %s", want, got)
	_, wantOffset := want.Zone()
	_, gotOffset := got.Zone()
	assert.Equal(t, wantOffset, gotOffset, "offset")
}

func TestEncodeTimestamp_Format(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "utc writes numeric zero offset",
			in:   time.Date(2025, 4, 2, 7, 40, 18, 0, time.UTC),
			want: "2025-04-02T07:40:18.0000000+00:00",
		},
		{
			name: "positive offset with ticks",
			in:   time.Date(2024, 12, 31, 23, 59, 59, 123456700, time.FixedZone("", 5*3600+30*60)),
			want: "2024-12-31T23:59:59.1234567+05:30",
		},
		{
			name: "negative offset",
			in:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("", -8*3600)),
			want: "2024-01-01T09:00:00.0000000-08:00",
		},
		{
			name: "nanosecond precision switches to nine digits",
			in:   time.Date(2024, 1, 1, 9, 0, 0, 123456789, time.UTC),
			want: "2024-01-01T09:00:00.123456789+00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeTimestamp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, NewTimestamp(tt.in).String())
		})
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		london = time.FixedZone("BST", 3600)
	}

	values := []time.Time{
		time.Date(2025, 4, 2, 7, 40, 18, 0, time.UTC),
		time.Date(2025, 7, 1, 14, 30, 0, 0, london),
		time.Date(1999, 12, 31, 23, 59, 59, 999999999, time.FixedZone("", -3*3600-30*60)),
		time.Date(2030, 2, 28, 0, 0, 0, 100, time.FixedZone("", 14*3600)),
		time.Date(2001, 9, 9, 1, 46, 40, 1, time.FixedZone("", -12*3600)),
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC),
	}

	for _, v := range values {
		t.Run(NewTimestamp(v).String(), func(t *testing.T) {
			encoded, err := EncodeTimestamp(v)
			require.NoError(t, err)
			decoded, err := DecodeTimestamp(encoded)
			require.NoError(t, err)
			assertSameInstantAndOffset(t, v, decoded)

			stored, err := NewTimestamp(v).Value()
			require.NoError(t, err)

			var scanned Timestamp
			require.NoError(t, scanned.Scan(stored))
			assertSameInstantAndOffset(t, v, scanned.Time)
		})
	}
}

func TestTimestamp_RejectsValuesWithoutTextForm(t *testing.T) {
	// Amsterdam mean time, +00:19:32
	amsterdam1900 := time.Date(1900, 1, 1, 12, 0, 0, 0, time.FixedZone("AMT", 19*60+32))

	values := map[string]time.Time{
		"local mean time offset": amsterdam1900,
		"offset with seconds":    time.Date(2025, 4, 2, 9, 0, 0, 0, time.FixedZone("", 3630)),
		"year after 9999":        time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		"year before 0":          time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			_, err := EncodeTimestamp(v)
			assert.ErrorIs(t, err, ErrUnrepresentableTimestamp)

			_, err = NewTimestamp(v).Value()
			assert.ErrorIs(t, err, ErrUnrepresentableTimestamp)

			_, err = NewNullTimestamp(v).Value()
			assert.ErrorIs(t, err, ErrUnrepresentableTimestamp)

			_, err = NewTimestamp(v).MarshalJSON()
			assert.ErrorIs(t, err, ErrUnrepresentableTimestamp)
		})
	}
}

func TestDecodeTimestamp_AcceptsOtherISOForms(t *testing.T) {
	decoded, err := DecodeTimestamp("2025-04-02T07:40:18Z")
	require.NoError(t, err)
	assertSameInstantAndOffset(t, time.Date(2025, 4, 2, 7, 40, 18, 0, time.UTC), decoded)

	decoded, err = DecodeTimestamp("2025-04-02T08:40:18.5+01:00")
	require.NoError(t, err)
	assertSameInstantAndOffset(t, time.Date(2025, 4, 2, 8, 40, 18, 500000000, time.FixedZone("", 3600)), decoded)
}

func TestDecodeTimestamp_MalformedIsDataIntegrityError(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2025-04-02", "2025-04-02 07:40:18", "2025-13-02T07:40:18+00:00"} {
		_, err := DecodeTimestamp(s)
		assert.ErrorIs(t, err, ErrDataIntegrity, "input %q", s)
	}

	var ts Timestamp
	assert.ErrorIs(t, ts.Scan("not a time"), ErrDataIntegrity)
	assert.ErrorIs(t, ts.Scan(42), ErrDataIntegrity)
}

func TestNullTimestamp(t *testing.T) {
	var n NullTimestamp
	value, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Nil(t, n.Ptr())

	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)

	at := time.Date(2025, 4, 2, 9, 15, 0, 0, time.FixedZone("", 3600))
	n = NewNullTimestamp(at)
	value, err = n.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-04-02T09:15:00.0000000+01:00", value)

	var scanned NullTimestamp
	require.NoError(t, scanned.Scan(value))
	require.True(t, scanned.Valid)
	assertSameInstantAndOffset(t, at, *scanned.Ptr())
}

func TestTimestamp_JSON(t *testing.T) {
	at := time.Date(2025, 4, 2, 9, 15, 0, 0, time.FixedZone("", -5*3600))

	data, err := NewTimestamp(at).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-04-02T09:15:00.0000000-05:00"`, string(data))

	var decoded Timestamp
	require.NoError(t, decoded.UnmarshalJSON(data))
	assertSameInstantAndOffset(t, at, decoded.Time)

	data, err = NullTimestamp{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
