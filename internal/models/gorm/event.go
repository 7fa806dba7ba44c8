package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event lifecycle states, computed from the clock, never stored.
const (
	EventStatusPlanned = "planned"
	EventStatusOngoing = "ongoing"
	EventStatusEnded   = "ended"
)

type Event struct {
	ID                 string    `gorm:"column:id;primaryKey;type:uuid"`
	Title              string    `gorm:"column:title"`
	Description        string    `gorm:"column:description"`
	StartTime          time.Time `gorm:"column:start_time"`
	EndTime            time.Time `gorm:"column:end_time"`
	CreatedByID        *string   `gorm:"column:created_by_id;type:uuid"`
	MaxAttendees       *int      `gorm:"column:max_attendees"`
	PenaltiesProcessed bool      `gorm:"column:penalties_processed;default:false"`
	GroupID            *string   `gorm:"column:group_id;type:uuid"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	AssignedUsers []User `gorm:"many2many:event_assignments;constraint:OnDelete:CASCADE"`
	Group         *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// StatusAt derives the lifecycle state from the clock.
func (e *Event) StatusAt(at time.Time) string {
	switch {
	case at.Before(e.StartTime):
		return EventStatusPlanned
	case at.After(e.EndTime):
		return EventStatusEnded
	default:
		return EventStatusOngoing
	}
}

// IsRunning reports whether at falls inside [start_time, end_time],
// bounds inclusive.
func (e *Event) IsRunning(at time.Time) bool {
	return !at.Before(e.StartTime) && !at.After(e.EndTime)
}

// HasEnded reports whether the event window has passed.
func (e *Event) HasEnded(at time.Time) bool {
	return e.EndTime.Before(at)
}
