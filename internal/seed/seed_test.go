package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sparko/internal/auth"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/profile"
	"github.com/sakif/sparko/internal/repository/sqlite"
	"github.com/sakif/sparko/internal/service"
)

func TestSeed(t *testing.T) {
	db, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("seed-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	authSvc := service.NewAuthService(db, db, tokens, auth.NewPasswordServiceWithCost(4), logger)
	profiles := service.NewProfileService(db, db, profile.NewEvaluator(), logger)
	seeder := New(authSvc, profiles, logger)
	ctx := context.Background()

	n, err := seeder.Run(ctx, Accounts)
	require.NoError(t, err)
	assert.Equal(t, len(Accounts), n)

	// every demo account can sign in and holds a complete profile
	for _, a := range Accounts {
		res, err := authSvc.Login(ctx, a.Email, DemoPassword)
		require.NoError(t, err, a.Email)
		assert.Equal(t, a.Profile.Role, res.User.CurrentRole)
		assert.Equal(t, a.Location, res.User.Location)

		st, err := profiles.Lookup(ctx, res.User.ID, a.Profile.Role)
		require.NoError(t, err)
		assert.True(t, st.Complete, "%s profile incomplete", a.Email)
	}

	again, err := seeder.Run(ctx, Accounts)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestAccounts_CoverEveryRole(t *testing.T) {
	seen := map[model.Role]int{}
	for _, a := range Accounts {
		seen[a.Profile.Role]++
	}
	for _, r := range model.Roles {
		assert.Positive(t, seen[r], "no demo account for %s", r)
	}
}
