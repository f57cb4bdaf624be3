package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
)

func TestQuotaStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	a := env.newUser(t, "a", model.RoleEntrepreneur)
	env.setQuota(t, a.ID, model.SparkQuota{Count: 1, ResetAt: start})

	env.setClock(start.Add(2 * 24 * time.Hour))
	st, err := env.quota.Status(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, model.SparkWeeklyCap, st.Max)
	assert.False(t, st.WasReset)
	assert.True(t, st.ResetAt.Equal(start))
	assert.True(t, st.NextReset.Equal(start.Add(model.SparkResetPeriod)))

	// reading after the period refills and persists
	later := start.Add(8 * 24 * time.Hour)
	env.setClock(later)
	st, err = env.quota.Status(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, st.WasReset)
	assert.Equal(t, model.SparkWeeklyCap, st.Count)

	u, err := env.db.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SparkWeeklyCap, u.SparkCount)
	assert.True(t, u.SparkResetAt.Equal(later))
}

func TestQuotaReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	a := env.newUser(t, "a", model.RoleEntrepreneur)
	env.setQuota(t, a.ID, model.SparkQuota{Count: 0, ResetAt: start})

	env.setClock(start.Add(time.Hour))
	st, err := env.quota.Reset(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, st.WasReset)
	assert.Equal(t, 0, st.Count)
	assert.Equal(t, "Super sparks not ready for reset", st.Message)

	env.setClock(start.Add(model.SparkResetPeriod))
	st, err = env.quota.Reset(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, st.WasReset)
	assert.Equal(t, model.SparkWeeklyCap, st.Count)
	assert.Equal(t, "Super sparks reset successfully", st.Message)

	// a second request in the same instant is not a second refill
	st, err = env.quota.Reset(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, st.WasReset)
}

func TestQuotaStatus_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.quota.Status(context.Background(), 31337)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestQuotaStatus_StorageErrorIsWrapped(t *testing.T) {
	env := newTestEnv(t)
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	diskErr := errors.New("disk I/O error")
	quota := NewQuotaService(&flakyLedger{Ledger: env.db, fail: []error{diskErr}}, discardLogger())

	_, err := quota.Status(context.Background(), a.ID)
	assert.ErrorIs(t, err, diskErr)
	assert.ErrorContains(t, err, "service/quota: disk I/O error")
}
