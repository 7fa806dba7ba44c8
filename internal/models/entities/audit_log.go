package entities

import "time"

type AuditLog struct {
	ID            int64     `db:"id"`
	Action        string    `db:"action"`
	ActorID       *string   `db:"actor_id"`
	TargetUserID  *string   `db:"target_user_id"`
	TargetEventID *string   `db:"target_event_id"`
	Details       string    `db:"details"`
	IPAddress     *string   `db:"ip_address"`
	CreatedAt     time.Time `db:"created_at"`
}
