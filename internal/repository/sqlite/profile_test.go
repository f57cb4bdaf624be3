package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
)

// completeProfile returns a profile that the discovery query will show.
func completeProfile(userID int64, role model.Role) *model.Profile {
	p := model.NewProfile(userID, role)
	p.Title = "Title"
	p.Tagline = "Tagline"
	p.Bio = "Bio"
	p.Skills = []string{"go"}
	p.IsComplete = true
	p.CompletionPercentage = 100
	return p
}

func TestProfileEnsure_CreatesEmptyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "p@example.com", model.RoleInvestor)

	first, err := db.EnsureProfile(ctx, u.ID, model.RoleInvestor)
	if err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	if first.ID == 0 || first.IsComplete || first.CompletionPercentage != 0 {
		t.Errorf("fresh profile = %+v", first)
	}
	if first.Investor == nil {
		t.Fatal("fresh investor profile has no investor details")
	}
	if first.Entrepreneur != nil || first.Partner != nil {
		t.Error("fresh profile carries details of another role")
	}

	second, err := db.EnsureProfile(ctx, u.ID, model.RoleInvestor)
	if err != nil {
		t.Fatalf("EnsureProfile() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("EnsureProfile() created a second row: %d vs %d", second.ID, first.ID)
	}
}

func TestProfileGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "none@example.com", model.RolePartner)

	_, err := db.GetProfile(context.Background(), u.ID, model.RolePartner)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrNotFound", err)
	}
}

func TestProfileSave_RoundTripsDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "e@example.com", model.RoleEntrepreneur)

	p := completeProfile(u.ID, model.RoleEntrepreneur)
	p.Company = "Acme"
	p.Entrepreneur.Industry = "fintech"
	p.Entrepreneur.TeamSize = 4
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if p.ID == 0 {
		t.Error("SaveProfile() did not set ID")
	}

	got, err := db.GetProfile(ctx, u.ID, model.RoleEntrepreneur)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Company != "Acme" || len(got.Skills) != 1 || got.Skills[0] != "go" {
		t.Errorf("base fields = %+v", got.ProfileBase)
	}
	if got.Entrepreneur == nil || got.Entrepreneur.Industry != "fintech" || got.Entrepreneur.TeamSize != 4 {
		t.Errorf("details = %+v", got.Entrepreneur)
	}
	if !got.IsComplete || got.CompletionPercentage != 100 {
		t.Errorf("completeness not stored: %v %d", got.IsComplete, got.CompletionPercentage)
	}
}

func TestProfileSave_UpdateKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "upd@example.com", model.RolePartner)

	ensured, err := db.EnsureProfile(ctx, u.ID, model.RolePartner)
	if err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}

	p := completeProfile(u.ID, model.RolePartner)
	p.Partner.Availability = "full-time"
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if p.ID != ensured.ID {
		t.Errorf("SaveProfile() ID = %d, want %d", p.ID, ensured.ID)
	}
	if !p.CreatedAt.Equal(ensured.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, ensured.CreatedAt)
	}
}

func TestProfileSave_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "bad@example.com", model.RolePartner)

	p := &model.Profile{UserID: u.ID, Role: "mentor"}
	if err := db.SaveProfile(context.Background(), p); !errors.Is(err, apperror.ErrInvalidRole) {
		t.Errorf("SaveProfile() error = %v, want ErrInvalidRole", err)
	}
}

func TestProfileList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "many@example.com", model.RoleEntrepreneur)

	for _, r := range []model.Role{model.RoleEntrepreneur, model.RolePartner} {
		if _, err := db.EnsureProfile(ctx, u.ID, r); err != nil {
			t.Fatalf("EnsureProfile(%s) error = %v", r, err)
		}
	}

	profiles, err := db.ListProfiles(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len = %d, want 2", len(profiles))
	}
	if profiles[0].Role != model.RoleEntrepreneur || profiles[1].Role != model.RolePartner {
		t.Errorf("roles = %s, %s", profiles[0].Role, profiles[1].Role)
	}
}
