package Models

import (
	"time"

	"gorm.io/datatypes"
)

type Notice struct {
	Base
	OwnerID      string          `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Content      string          `gorm:"not null" json:"content"`
	ScheduledFor *datatypes.Date `gorm:"index" json:"scheduled_for"`
}

// OTPCode backs the one-time-password store when redis is disabled.
type OTPCode struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index;size:191"`
	Code      string    `gorm:"size:12"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}
