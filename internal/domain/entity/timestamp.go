package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	// ErrDataIntegrity marks a stored value that cannot be decoded back into its domain type.
	ErrDataIntegrity = errors.New("data integrity violation")
	// ErrUnrepresentableTimestamp marks a time the text form cannot carry without changing it.
	ErrUnrepresentableTimestamp = errors.New("timestamp cannot be represented")
)

const (
	// timestampLayout matches the round-trip ("o") text already present in the store:
	// seven fraction digits and an explicit numeric offset.
	timestampLayout = "2006-01-02T15:04:05.0000000-07:00"
	// timestampLayoutNano is used when the value carries sub-100ns precision.
	timestampLayoutNano = "2006-01-02T15:04:05.000000000-07:00"
)

// EncodeTimestamp renders t as ISO-8601 text with its offset, so that
// DecodeTimestamp(EncodeTimestamp(t)) yields the same instant and offset.
// Offsets with a seconds part and years outside 0-9999 have no such text and
// fail with ErrUnrepresentableTimestamp.
func EncodeTimestamp(t time.Time) (string, error) {
	if year := t.Year(); year < 0 || year > 9999 {
		return "", fmt.Errorf("%w: year %d is outside 0-9999", ErrUnrepresentableTimestamp, year)
	}
	if _, offset := t.Zone(); offset%60 != 0 {
		return "", fmt.Errorf("%w: offset of %ds is not a whole minute", ErrUnrepresentableTimestamp, offset)
	}
	return formatTimestamp(t), nil
}

func formatTimestamp(t time.Time) string {
	if t.Nanosecond()%100 != 0 {
		return t.Format(timestampLayoutNano)
	}
	return t.Format(timestampLayout)
}

// DecodeTimestamp parses ISO-8601 text with an offset. A zero offset decodes to UTC,
// any other offset to a fixed zone.
func DecodeTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.RFC3339Nano, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed timestamp %q: %v", ErrDataIntegrity, s, err)
	}
	return t, nil
}

// Timestamp is a point in time that keeps its offset through storage.
// It is persisted as text produced by EncodeTimestamp.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// String renders the stored text form. Values that EncodeTimestamp rejects are
// rendered as closely as the layout allows.
func (t Timestamp) String() string {
	return formatTimestamp(t.Time)
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	s, err := EncodeTimestamp(t.Time)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := DecodeTimestamp(v)
		if err != nil {
			return err
		}
		t.Time = parsed
	case []byte:
		parsed, err := DecodeTimestamp(string(v))
		if err != nil {
			return err
		}
		t.Time = parsed
	case time.Time:
		t.Time = v
	default:
		return fmt.Errorf("%w: cannot scan %T into Timestamp", ErrDataIntegrity, value)
	}
	return nil
}

func (Timestamp) GormDataType() string {
	return "string"
}

func (Timestamp) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return "text"
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	s, err := EncodeTimestamp(t.Time)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := DecodeTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// NullTimestamp is a Timestamp that may be absent (NULL in storage, null in JSON).
type NullTimestamp struct {
	Timestamp Timestamp
	Valid     bool
}

func NewNullTimestamp(t time.Time) NullTimestamp {
	return NullTimestamp{Timestamp: NewTimestamp(t), Valid: true}
}

// Ptr returns nil when the timestamp is absent.
func (n NullTimestamp) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Timestamp.Time
	return &t
}

// Value implements driver.Valuer
func (n NullTimestamp) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Timestamp.Value()
}

// Scan implements sql.Scanner
func (n *NullTimestamp) Scan(value interface{}) error {
	if value == nil {
		n.Timestamp, n.Valid = Timestamp{}, false
		return nil
	}
	if err := n.Timestamp.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (NullTimestamp) GormDataType() string {
	return "string"
}

func (NullTimestamp) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return "text"
}

func (n NullTimestamp) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Timestamp.MarshalJSON()
}

func (n *NullTimestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Timestamp, n.Valid = Timestamp{}, false
		return nil
	}
	if err := n.Timestamp.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
