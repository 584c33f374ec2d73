package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/repo"
)

// ----- Fake repo -----

type fakeUserRepo struct {
	upsertID     int64
	upsertHandle string
	upsertName   string
	upsertErr    error

	users map[int64]*domain.User

	setAdminID  int64
	setAdminVal bool
	setAdminErr error

	isAdminCalls int
	isAdmin      bool
	isAdminErr   error

	list    []repo.UserWithSearches
	listErr error

	countUsers  int64
	countAdmins int64
	countErr    error
}

func (r *fakeUserRepo) UpsertUser(ctx context.Context, db *gorm.DB, id int64, handle, displayName string) (*domain.User, error) {
	r.upsertID, r.upsertHandle, r.upsertName = id, handle, displayName
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	return &domain.User{ID: id, Handle: handle, DisplayName: displayName}, nil
}

func (r *fakeUserRepo) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SetAdmin(ctx context.Context, db *gorm.DB, id int64, isAdmin bool) error {
	r.setAdminID, r.setAdminVal = id, isAdmin
	return r.setAdminErr
}

func (r *fakeUserRepo) IsAdmin(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	r.isAdminCalls++
	return r.isAdmin, r.isAdminErr
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, db *gorm.DB) ([]repo.UserWithSearches, error) {
	return r.list, r.listErr
}

func (r *fakeUserRepo) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return r.countUsers, r.countErr
}

func (r *fakeUserRepo) CountAdmins(ctx context.Context, db *gorm.DB) (int64, error) {
	return r.countAdmins, r.countErr
}

// ----- Tests -----

func TestUserService_Register_NormalizesNames(t *testing.T) {
	fr := &fakeUserRepo{}
	svc := NewUserService(nil, fr, nil)
	svc.MaxNameRunes = 5

	u, err := svc.Register(context.Background(), 42, "  @typefan ", "  Élodie Dupont ")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if fr.upsertID != 42 || fr.upsertHandle != "typef" || fr.upsertName != "Élodi" {
		t.Fatalf("unexpected upsert args: %d %q %q", fr.upsertID, fr.upsertHandle, fr.upsertName)
	}
	if u.ID != 42 {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserService_Register_StorageError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewUserService(nil, &fakeUserRepo{upsertErr: boom}, nil)
	if _, err := svc.Register(context.Background(), 1, "a", "b"); !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
}

func TestUserService_IsPrivileged(t *testing.T) {
	ctx := context.Background()

	fr := &fakeUserRepo{}
	svc := NewUserService(nil, fr, []int64{100})
	ok, err := svc.IsPrivileged(ctx, 100)
	if err != nil || !ok {
		t.Fatalf("configured admin: ok=%v err=%v", ok, err)
	}
	if fr.isAdminCalls != 0 {
		t.Fatalf("configured admin must not hit the store")
	}

	ok, err = svc.IsPrivileged(ctx, 0)
	if err != nil || ok {
		t.Fatalf("anonymous: ok=%v err=%v", ok, err)
	}

	fr.isAdmin = true
	ok, err = svc.IsPrivileged(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("stored admin: ok=%v err=%v", ok, err)
	}

	fr.isAdminErr = errors.New("db down")
	if _, err := svc.IsPrivileged(ctx, 8); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestUserService_SetAdmin(t *testing.T) {
	fr := &fakeUserRepo{}
	svc := NewUserService(nil, fr, nil)
	if err := svc.SetAdmin(context.Background(), 9, true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	if fr.setAdminID != 9 || !fr.setAdminVal {
		t.Fatalf("unexpected args: %d %v", fr.setAdminID, fr.setAdminVal)
	}
}

func TestUserService_Get(t *testing.T) {
	fr := &fakeUserRepo{users: map[int64]*domain.User{3: {ID: 3, Handle: "x"}}}
	svc := NewUserService(nil, fr, nil)

	u, found, err := svc.Get(context.Background(), 3)
	if err != nil || !found || u.Handle != "x" {
		t.Fatalf("Get(3) = %+v %v %v", u, found, err)
	}
	u, found, err = svc.Get(context.Background(), 4)
	if err != nil || found || u != nil {
		t.Fatalf("Get(4) = %+v %v %v", u, found, err)
	}
}

func TestUserService_ListAndCounts(t *testing.T) {
	fr := &fakeUserRepo{countUsers: 3, countAdmins: 1}
	svc := NewUserService(nil, fr, nil)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", list)
	}

	c, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c.Users != 3 || c.Admins != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}

	fr.countErr = errors.New("x")
	if _, err := svc.Counts(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
