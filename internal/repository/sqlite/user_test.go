package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
)

// newTestDB opens a fresh in-memory database and closes it when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(MemoryPath)
	if err != nil {
		t.Fatalf("New(%q) error = %v", MemoryPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser is a test helper that creates a password user and fails the
// test if it errors.
func createTestUser(t *testing.T, db *DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "x",
		Name:         email,
		CurrentRole:  role,
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Email: "  Ada@Example.com ", Name: "Ada", Age: 36}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if u.ID == 0 {
		t.Error("CreateUser() did not set user.ID")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalised ada@example.com", u.Email)
	}
	if u.CurrentRole != model.RoleEntrepreneur {
		t.Errorf("CurrentRole = %q, want entrepreneur by default", u.CurrentRole)
	}
	if u.SparkCount != model.SparkWeeklyCap {
		t.Errorf("SparkCount = %d, want %d", u.SparkCount, model.SparkWeeklyCap)
	}
	if u.SparkResetAt.IsZero() || u.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestUserCreate_AssignsIncreasingIDs(t *testing.T) {
	db := newTestDB(t)
	a := createTestUser(t, db, "a@example.com", model.RoleInvestor)
	b := createTestUser(t, db, "b@example.com", model.RoleInvestor)
	if b.ID <= a.ID {
		t.Errorf("ids not increasing: %d then %d", a.ID, b.ID)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com", model.RolePartner)

	err := db.CreateUser(context.Background(), &model.User{Email: "DUP@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Field != "email" {
		t.Errorf("error field = %+v, want email", appErr)
	}
}

func TestUserCreate_EmptyEmailsDoNotCollide(t *testing.T) {
	db := newTestDB(t)
	for i := int64(1); i <= 2; i++ {
		gh := i
		if err := db.CreateUser(context.Background(), &model.User{GitHubID: &gh, Name: "gh"}); err != nil {
			t.Fatalf("CreateUser() #%d error = %v", i, err)
		}
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "get@example.com", model.RoleInvestor)

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Email != "get@example.com" {
		t.Errorf("Email = %q", found.Email)
	}
	if found.CurrentRole != model.RoleInvestor {
		t.Errorf("CurrentRole = %q, want investor", found.CurrentRole)
	}
	if found.PasswordHash != "x" {
		t.Errorf("PasswordHash = %q, want x", found.PasswordHash)
	}
	if found.GitHubID != nil {
		t.Errorf("GitHubID = %v, want nil", *found.GitHubID)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), 4242)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "mail@example.com", model.RolePartner)

	found, err := db.GetUserByEmail(context.Background(), "MAIL@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	if _, err := db.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUserUpsertGitHub_NewUser(t *testing.T) {
	db := newTestDB(t)
	gh := int64(55555)

	u := &model.User{GitHubID: &gh, Name: "octo", PhotoURL: "https://example.com/a.png"}
	if err := db.UpsertGitHubUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertGitHubUser() error = %v", err)
	}
	if u.ID == 0 {
		t.Fatal("UpsertGitHubUser() did not set ID")
	}
	if u.SparkCount != model.SparkWeeklyCap {
		t.Errorf("SparkCount = %d, want full quota", u.SparkCount)
	}
}

func TestUserUpsertGitHub_ExistingUserKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	gh := int64(66666)

	first := &model.User{GitHubID: &gh, Name: "original", Email: "old@example.com"}
	if err := db.UpsertGitHubUser(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := db.SetCurrentRole(ctx, first.ID, model.RolePartner); err != nil {
		t.Fatalf("SetCurrentRole: %v", err)
	}

	second := &model.User{GitHubID: &gh, Name: "renamed", Email: "new@example.com"}
	if err := db.UpsertGitHubUser(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed: got %d, want %d", second.ID, first.ID)
	}
	if second.Name != "renamed" || second.Email != "new@example.com" {
		t.Errorf("GitHub-owned fields not refreshed: %+v", second)
	}
	// role is ours, not GitHub's
	if second.CurrentRole != model.RolePartner {
		t.Errorf("CurrentRole = %q, want partner preserved", second.CurrentRole)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestUserUpsertGitHub_RequiresGitHubID(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertGitHubUser(context.Background(), &model.User{Name: "x"}); err == nil {
		t.Fatal("UpsertGitHubUser() without GitHubID should fail")
	}
}

// =========================================================================
// ROLE AND QUOTA TESTS
// =========================================================================

func TestUserSetCurrentRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "role@example.com", model.RoleEntrepreneur)

	if err := db.SetCurrentRole(ctx, u.ID, model.RoleInvestor); err != nil {
		t.Fatalf("SetCurrentRole() error = %v", err)
	}
	found, _ := db.GetUserByID(ctx, u.ID)
	if found.CurrentRole != model.RoleInvestor {
		t.Errorf("CurrentRole = %q, want investor", found.CurrentRole)
	}

	if err := db.SetCurrentRole(ctx, 999, model.RoleInvestor); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetCurrentRole(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestUserSetCurrentRole_RejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "check@example.com", model.RoleEntrepreneur)

	// the CHECK constraint refuses anything outside the enumeration
	if err := db.SetCurrentRole(context.Background(), u.ID, model.Role("mentor")); err == nil {
		t.Fatal("SetCurrentRole(mentor) should fail")
	}
}

func TestUserUpdateSparkQuota(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "quota@example.com", model.RoleEntrepreneur)

	resetAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := db.UpdateSparkQuota(ctx, u.ID, model.SparkQuota{Count: 1, ResetAt: resetAt}); err != nil {
		t.Fatalf("UpdateSparkQuota() error = %v", err)
	}

	found, _ := db.GetUserByID(ctx, u.ID)
	if found.SparkCount != 1 {
		t.Errorf("SparkCount = %d, want 1", found.SparkCount)
	}
	if !found.SparkResetAt.Equal(resetAt) {
		t.Errorf("SparkResetAt = %v, want %v", found.SparkResetAt, resetAt)
	}
}

func TestUserUpdateSparkQuota_RejectsOutOfRange(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "range@example.com", model.RoleEntrepreneur)

	for _, n := range []int{-1, model.SparkWeeklyCap + 1} {
		err := db.UpdateSparkQuota(context.Background(), u.ID, model.SparkQuota{Count: n, ResetAt: time.Now()})
		if err == nil {
			t.Errorf("UpdateSparkQuota(count=%d) should violate the CHECK constraint", n)
		}
	}
}

func TestUserUpdateDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "details@example.com", model.RoleInvestor)

	u.Name = "Grace"
	u.Age = 45
	u.Location = "Arlington"
	u.PhotoURL = "https://example.com/g.png"
	if err := db.UpdateUserDetails(ctx, u); err != nil {
		t.Fatalf("UpdateUserDetails() error = %v", err)
	}

	found, _ := db.GetUserByID(ctx, u.ID)
	if found.Name != "Grace" || found.Age != 45 || found.Location != "Arlington" || found.PhotoURL != "https://example.com/g.png" {
		t.Errorf("user = %+v", found)
	}
	if found.Email != "details@example.com" || found.CurrentRole != model.RoleInvestor {
		t.Errorf("UpdateUserDetails() touched email or role: %+v", found)
	}

	if err := db.UpdateUserDetails(ctx, &model.User{ID: 999}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUserDetails(unknown) error = %v, want ErrNotFound", err)
	}
}
