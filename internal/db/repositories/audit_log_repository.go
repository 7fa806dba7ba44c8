package repositories

import (
	"context"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// AuditLogRepo writes and reads the append-only audit trail. It stays
// on sqlx because the queries are plain SQL and the table is outside
// the GORM domain models.
type AuditLogRepo struct {
	db *sqlx.DB
}

func NewAuditLogRepo(db *sqlx.DB) *AuditLogRepo {
	return &AuditLogRepo{db}
}

func (r *AuditLogRepo) Insert(ctx context.Context, entry *entities.AuditLog) error {
	return r.db.QueryRowxContext(ctx, constants.InsertAuditLog,
		entry.Action,
		entry.ActorID,
		entry.TargetUserID,
		entry.TargetEventID,
		entry.Details,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns recent entries, optionally filtered by action and a
// details substring, newest first.
func (r *AuditLogRepo) List(ctx context.Context, action, search string, limit int) ([]entities.AuditLog, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []entities.AuditLog
	if err := r.db.SelectContext(ctx, &rows, constants.GetAuditLogs, action, search, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
