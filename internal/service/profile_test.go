package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
)

func TestProfileLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	st, err := env.profiles.Lookup(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, ProfileStatus{}, st)

	_, err = env.profiles.Ensure(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	st, err = env.profiles.Lookup(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, ProfileStatus{Exists: true}, st)

	env.completeProfile(t, a.ID, model.RoleInvestor)
	st, err = env.profiles.Lookup(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, ProfileStatus{Exists: true, Complete: true}, st)
}

func TestProfileEnsure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	first, err := env.profiles.Get(ctx, a.ID, model.RolePartner)
	require.NoError(t, err)
	second, err := env.profiles.Get(ctx, a.ID, model.RolePartner)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotNil(t, second.Partner)
	assert.False(t, second.IsComplete)

	_, err = env.profiles.Ensure(ctx, a.ID, model.Role("mentor"))
	assert.ErrorIs(t, err, apperror.ErrInvalidRole)
	_, err = env.profiles.Ensure(ctx, 999, model.RolePartner)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProfileUpdate_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleInvestor)

	saved := env.completeProfile(t, a.ID, model.RoleInvestor)
	assert.Equal(t, 100, saved.CompletionPercentage)

	got, err := env.profiles.Get(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)

	want := fullProfile(model.RoleInvestor)
	want.UserID = a.ID
	want.Role = model.RoleInvestor
	want.IsComplete = true
	want.CompletionPercentage = 100
	ignore := cmpopts.IgnoreFields(model.Profile{}, "ID", "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(want, got, ignore); diff != "" {
		t.Errorf("stored profile mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileUpdate_CompletenessIsComputed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RolePartner)

	in := fullProfile(model.RolePartner)
	in.Partner.DesiredRole = ""
	in.IsComplete = true // ignored
	in.CompletionPercentage = 100

	p, err := env.profiles.Update(ctx, a.ID, model.RolePartner, in)
	require.NoError(t, err)
	assert.False(t, p.IsComplete)
	assert.Less(t, p.CompletionPercentage, 100)

	res, err := env.profiles.Completion(ctx, a.ID, model.RolePartner)
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.Equal(t, p.CompletionPercentage, res.Percentage)
}

func TestProfileUpdate_MissingDetailsStoredEmpty(t *testing.T) {
	env := newTestEnv(t)
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	in := &model.Profile{ProfileBase: model.ProfileBase{Title: "CEO"}}
	p, err := env.profiles.Update(context.Background(), a.ID, model.RoleEntrepreneur, in)
	require.NoError(t, err)
	require.NotNil(t, p.Entrepreneur)
	assert.False(t, p.IsComplete)
	assert.Greater(t, p.CompletionPercentage, 0)
}

func TestProfileUpdate_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	_, err := env.profiles.Update(ctx, a.ID, model.RoleEntrepreneur, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.profiles.Update(ctx, a.ID, model.RoleEntrepreneur, fullProfile(model.RoleInvestor))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.profiles.Update(ctx, a.ID, model.Role("mentor"), &model.Profile{})
	assert.ErrorIs(t, err, apperror.ErrInvalidRole)

	_, err = env.profiles.Update(ctx, 999, model.RoleEntrepreneur, fullProfile(model.RoleEntrepreneur))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProfileListAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	list, err := env.profiles.ListAll(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	env.completeProfile(t, a.ID, model.RoleEntrepreneur)
	_, err = env.profiles.Ensure(ctx, a.ID, model.RolePartner)
	require.NoError(t, err)

	list, err = env.profiles.ListAll(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSwitchRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.newUser(t, "a", model.RoleEntrepreneur)

	u, p, err := env.profiles.SwitchRole(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleInvestor, u.CurrentRole)
	assert.Equal(t, model.RoleInvestor, p.Role)

	stored, err := env.db.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleInvestor, stored.CurrentRole)

	// switching to the active role changes nothing
	u, again, err := env.profiles.SwitchRole(ctx, a.ID, model.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleInvestor, u.CurrentRole)
	assert.Equal(t, p.ID, again.ID)

	_, _, err = env.profiles.SwitchRole(ctx, a.ID, model.Role("ceo"))
	assert.ErrorIs(t, err, apperror.ErrInvalidRole)
}
