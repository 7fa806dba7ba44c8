package gorm

import (
	"time"

	"robotique/eventmanager/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string                  `gorm:"column:id;primaryKey;type:uuid"`
	Username       string                  `gorm:"column:username;uniqueIndex"`
	DisplayName    string                  `gorm:"column:display_name"`
	Role           constants.Role          `gorm:"column:role;default:member"`
	PenaltyLevel   int                     `gorm:"column:penalty_level;default:0"`
	PenaltyStatus  constants.PenaltyStatus `gorm:"column:penalty_status;default:ok"`
	IsActiveMember bool                    `gorm:"column:is_active_member;default:true"`
	GroupID        *string                 `gorm:"column:group_id;type:uuid"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SetPenaltyLevel is the only sanctioned way to move the penalty level.
// It keeps penalty_status and is_active_member consistent with the level
// so the three fields can never drift apart.
func (u *User) SetPenaltyLevel(level int) {
	if level < 0 {
		level = 0
	}
	u.PenaltyLevel = level
	u.PenaltyStatus = constants.StatusForLevel(level)
	u.IsActiveMember = u.PenaltyStatus != constants.PenaltyStatusBanned
}

// IsBanned reports whether the user may not check in anywhere.
func (u *User) IsBanned() bool {
	return u.PenaltyStatus == constants.PenaltyStatusBanned || !u.IsActiveMember
}

// IsSystem reports whether this is the designated SYSTEM identity.
func (u *User) IsSystem() bool {
	return u.Username == constants.SystemUsername
}

type Group struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	Name        string    `gorm:"column:name;uniqueIndex"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Group) TableName() string {
	return "groups"
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
