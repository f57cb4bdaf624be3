package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sakif/sparko/internal/auth"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/profile"
	"github.com/sakif/sparko/internal/repository/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testEnv wires every service against one database, the way server.go does.
type testEnv struct {
	db        *sqlite.DB
	profiles  *ProfileService
	discovery *DiscoveryService
	matches   *MatchService
	swipes    *SwipeService
	quota     *QuotaService
	auth      *AuthService
	tokens    *auth.TokenService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newTestEnvWithDB(t, db)
}

func newTestEnvWithDB(t *testing.T, db *sqlite.DB) *testEnv {
	t.Helper()
	logger := discardLogger()

	tokens, err := auth.NewTokenService("service-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	profiles := NewProfileService(db, db, profile.NewEvaluator(), logger)
	matches := NewMatchService(db, db, db, logger)
	return &testEnv{
		db:        db,
		profiles:  profiles,
		discovery: NewDiscoveryService(db, profiles, db, logger),
		matches:   matches,
		swipes:    NewSwipeService(db, matches, logger),
		quota:     NewQuotaService(db, logger),
		auth:      NewAuthService(db, db, tokens, auth.NewPasswordServiceWithCost(4), logger),
		tokens:    tokens,
	}
}

// setClock pins "now" for every time-aware service in the env.
func (e *testEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.swipes.now = clock
	e.quota.now = clock
}

// newUser creates a user acting in role.
func (e *testEnv) newUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Email:       fmt.Sprintf("%s@example.com", name),
		Name:        name,
		CurrentRole: role,
	}
	require.NoError(t, e.db.CreateUser(context.Background(), u))
	return u
}

// completeUser creates a user in role with a complete profile for it.
func (e *testEnv) completeUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u := e.newUser(t, name, role)
	e.completeProfile(t, u.ID, role)
	return u
}

func (e *testEnv) completeProfile(t *testing.T, userID int64, role model.Role) *model.Profile {
	t.Helper()
	p, err := e.profiles.Update(context.Background(), userID, role, fullProfile(role))
	require.NoError(t, err)
	require.True(t, p.IsComplete, "fixture profile for %s must be complete", role)
	return p
}

func fullProfile(role model.Role) *model.Profile {
	p := model.NewProfile(0, role)
	p.ProfileBase = model.ProfileBase{
		Title:   "Builder",
		Company: "Acme",
		Tagline: "We build things",
		Bio:     "A long time building things.",
		Skills:  []string{"go", "sql"},
	}
	switch role {
	case model.RoleEntrepreneur:
		*p.Entrepreneur = model.EntrepreneurDetails{
			ProjectDescription: "Robots", FundingStage: "seed", FundingAmount: "$1M", Industry: "agritech", TeamSize: 3,
		}
	case model.RoleInvestor:
		*p.Investor = model.InvestorDetails{
			InvestmentPreferences: []string{"seed"}, InvestmentRange: "$100k-$1M",
			ProfessionalBackground: "Operator", GeographicPreference: "EU",
		}
	case model.RolePartner:
		*p.Partner = model.PartnerDetails{
			Expertise: []string{"backend"}, Availability: "full-time",
			CollaborationType: "co-founder", DesiredRole: "CTO",
		}
	}
	return p
}

// setQuota overwrites a user's spark counter directly in storage.
func (e *testEnv) setQuota(t *testing.T, userID int64, q model.SparkQuota) {
	t.Helper()
	require.NoError(t, e.db.UpdateSparkQuota(context.Background(), userID, q))
}
