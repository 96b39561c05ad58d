package Models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base is embedded by owner-facing tables keyed by UUID.
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Serial is embedded by master-data tables keyed by an auto-increment id.
type Serial struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at local midnight.
func Day(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
}

// ParseDay accepts "2006-01-02" or any longer timestamp starting with it.
func ParseDay(raw string) (datatypes.Date, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.Local)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// Dated sets r's date from a DATE column or, when it was never set, from the
// fallback timestamp.
func Dated(r Scope.Record, d datatypes.Date, fallback time.Time) Scope.Record {
	if t := time.Time(d); !t.IsZero() {
		r.Date, r.Calendar = t, true
		return r
	}
	r.Date, r.Calendar = fallback, false
	return r
}

// FormatDay renders a date column, "" when unset.
func FormatDay(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
