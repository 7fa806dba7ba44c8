package entities

type ApiKey struct {
	ApiKey   string `db:"id"`
	UserID   string `db:"user_id"`
	IsActive bool   `db:"is_active"`
}
