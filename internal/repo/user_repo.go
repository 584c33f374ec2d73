// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (exported here as ErrNotFound).
//   - SetAdmin on an unknown user is a silent no-op.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UserWithSearches is a user row joined with the number of remote searches
// the user has issued.
type UserWithSearches struct {
	domain.User
	SearchCount int64 `json:"search_count"`
}

// UpsertUser inserts the user or, when the id already exists, refreshes the
// handle and display name. The administrator flag and registration time of an
// existing user are never touched.
func UpsertUser(ctx context.Context, db *gorm.DB, id int64, handle, displayName string) (*domain.User, error) {
	u := &domain.User{
		ID:           id,
		Handle:       handle,
		DisplayName:  displayName,
		RegisteredAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"handle", "display_name"}),
		}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, db, id)
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SetAdmin sets the administrator flag. An unknown id affects no rows and is
// not an error.
func SetAdmin(ctx context.Context, db *gorm.DB, id int64, isAdmin bool) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_admin", isAdmin).Error
}

// IsAdmin reports the stored administrator flag. Unknown users are not admins.
func IsAdmin(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND is_admin = ?", id, true).
		Count(&n).Error
	return n > 0, err
}

// ListUsers returns every user with their remote search count, most recently
// registered first.
func ListUsers(ctx context.Context, db *gorm.DB) ([]UserWithSearches, error) {
	var out []UserWithSearches
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.*, COUNT(search_queries.id) AS search_count").
		Joins("LEFT JOIN search_queries ON search_queries.user_id = users.id").
		Group("users.id").
		Order("users.registered_at DESC, users.id DESC").
		Scan(&out).Error
	return out, err
}

// CountUsers returns the number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

// CountAdmins returns the number of users with the administrator flag set.
func CountAdmins(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", true).Count(&n).Error
	return n, err
}
