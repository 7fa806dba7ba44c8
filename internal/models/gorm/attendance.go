package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance is the one-row-per-(event,user) check-in record. The
// composite unique index is the concurrency primitive that makes
// check-in idempotent.
type Attendance struct {
	ID             string    `gorm:"column:id;primaryKey;type:uuid"`
	EventID        string    `gorm:"column:event_id;type:uuid;uniqueIndex:idx_attendance_event_user"`
	UserID         string    `gorm:"column:user_id;type:uuid;uniqueIndex:idx_attendance_event_user"`
	CheckedAt      time.Time `gorm:"column:checked_at;autoCreateTime"`
	ScannerID      *string   `gorm:"column:scanner_id;type:uuid"`
	BannedSnapshot bool      `gorm:"column:banned_snapshot;default:false"`

	// Relationships
	Event   Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	User    User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Scanner *User `gorm:"foreignKey:ScannerID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for GORM
func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
