package domain

import "time"

// Idempotency records the outcome of a previously processed request, keyed by
// (user_id, scope, key). Scope is the matched route template, so the same
// client key may be reused across unrelated endpoints. A replayed request
// gets the original resource back without repeating side effects such as a
// remote search and catalogue ingestion.
type Idempotency struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	UserID     int64     `gorm:"not null;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope      string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_user_scope_key,priority:2"`
	Key        string    `gorm:"column:idem_key;type:varchar(128);not null;uniqueIndex:ux_user_scope_key,priority:3"`
	ResourceID string    `gorm:"type:varchar(64);not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer valid at now.
func (i Idempotency) Expired(now time.Time) bool { return !now.Before(i.ExpiresAt) }
