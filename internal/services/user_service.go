// Package services – UserService
//
// This file implements UserService, the registry of chat users and the
// single privilege check the service needs: an identity is privileged when
// it is listed in the configured administrator ids or carries the stored
// administrator flag.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/repo"
)

// UserRepo defines the repository contract required by UserService.
type UserRepo interface {
	// UpsertUser inserts the user or refreshes handle and display name.
	UpsertUser(ctx context.Context, db *gorm.DB, id int64, handle, displayName string) (*domain.User, error)

	// GetUser fetches a user by id (gorm.ErrRecordNotFound when absent).
	GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error)

	// SetAdmin sets the stored administrator flag; unknown ids are a no-op.
	SetAdmin(ctx context.Context, db *gorm.DB, id int64, isAdmin bool) error

	// IsAdmin reports the stored administrator flag.
	IsAdmin(ctx context.Context, db *gorm.DB, id int64) (bool, error)

	// ListUsers returns every user with their search count.
	ListUsers(ctx context.Context, db *gorm.DB) ([]repo.UserWithSearches, error)

	// CountUsers returns the number of users.
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)

	// CountAdmins returns the number of users flagged as administrators.
	CountAdmins(ctx context.Context, db *gorm.DB) (int64, error)
}

// UserCounts is the user part of the statistics screen.
type UserCounts struct {
	Users  int64 `json:"users"`
	Admins int64 `json:"admins"`
}

// UserService registers users and answers privilege checks.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo

	// AdminIDs are always privileged, whatever the stored flag says.
	AdminIDs map[int64]struct{}
	// MaxNameRunes caps stored handles and display names.
	MaxNameRunes int
}

// NewUserService constructs a UserService that treats adminIDs as privileged.
func NewUserService(db *gorm.DB, r UserRepo, adminIDs []int64) *UserService {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &UserService{DB: db, Repo: r, AdminIDs: ids, MaxNameRunes: 64}
}

// Register creates the user or refreshes its handle and display name.
func (s *UserService) Register(ctx context.Context, id int64, handle, displayName string) (*domain.User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	u, err := s.Repo.UpsertUser(ctx, s.DB, id, s.clip(handle), s.clip(strings.TrimSpace(displayName)))
	if err != nil {
		return nil, storageErr(ctx, "register user", "", err)
	}
	return u, nil
}

// SetAdmin grants or revokes the stored administrator flag. Unknown users
// are ignored.
func (s *UserService) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	if err := s.Repo.SetAdmin(ctx, s.DB, id, isAdmin); err != nil {
		return storageErr(ctx, "set admin", "", err)
	}
	return nil
}

// Get returns a registered user. A missing user is (nil, false, nil).
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, bool, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(ctx, "get user", "", err)
	}
	return u, true, nil
}

// IsPrivileged reports whether id may call administrative operations.
func (s *UserService) IsPrivileged(ctx context.Context, id int64) (bool, error) {
	if _, ok := s.AdminIDs[id]; ok {
		return true, nil
	}
	if id == 0 {
		return false, nil
	}
	ok, err := s.Repo.IsAdmin(ctx, s.DB, id)
	if err != nil {
		return false, storageErr(ctx, "is admin", "", err)
	}
	return ok, nil
}

// List returns every user with their remote search count.
func (s *UserService) List(ctx context.Context) ([]repo.UserWithSearches, error) {
	out, err := s.Repo.ListUsers(ctx, s.DB)
	if err != nil {
		return nil, storageErr(ctx, "list users", "", err)
	}
	if out == nil {
		out = []repo.UserWithSearches{}
	}
	return out, nil
}

// Counts returns the number of users and administrators.
func (s *UserService) Counts(ctx context.Context) (*UserCounts, error) {
	users, err := s.Repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, storageErr(ctx, "count users", "", err)
	}
	admins, err := s.Repo.CountAdmins(ctx, s.DB)
	if err != nil {
		return nil, storageErr(ctx, "count admins", "", err)
	}
	return &UserCounts{Users: users, Admins: admins}, nil
}

func (s *UserService) clip(v string) string {
	if s.MaxNameRunes > 0 && utf8.RuneCountInString(v) > s.MaxNameRunes {
		return string([]rune(v)[:s.MaxNameRunes])
	}
	return v
}
