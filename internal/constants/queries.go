package constants

const (
	InsertAuditLog = `
	INSERT INTO audit_logs (action, actor_id, target_user_id, target_event_id, details, ip_address)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`

	GetAuditLogs = `
	SELECT * FROM audit_logs
	WHERE ($1 = '' OR action = $1)
	  AND ($2 = '' OR details ILIKE '%' || $2 || '%')
	ORDER BY created_at DESC
	LIMIT $3
	`

	GetStatusByApiKey = `
	SELECT id, user_id, is_active FROM api_keys WHERE id = $1
	`
)
