package gorm

import (
	"time"

	"robotique/eventmanager/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Penalty is an append-only history record. Rows are never updated or
// deleted; every change to a user's penalty level writes exactly one.
type Penalty struct {
	ID            string                `gorm:"column:id;primaryKey;type:uuid"`
	UserID        string                `gorm:"column:user_id;type:uuid;index"`
	Type          constants.PenaltyType `gorm:"column:type;default:add"`
	Reason        string                `gorm:"column:reason"`
	AdminID       *string               `gorm:"column:admin_id;type:uuid"`
	PreviousLevel int                   `gorm:"column:previous_level;default:0"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Admin *User `gorm:"foreignKey:AdminID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for GORM
func (Penalty) TableName() string {
	return "penalties"
}

func (p *Penalty) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
