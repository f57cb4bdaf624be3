package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/profile"
	"github.com/sakif/sparko/internal/repository"
)

// ProfileStatus is what the matching core needs to know about a role
// profile: whether it exists and whether it is complete.
type ProfileStatus struct {
	Exists   bool
	Complete bool
}

// ProfileLookup is the read side of the profile directory, as consumed by
// discovery.
type ProfileLookup interface {
	Lookup(ctx context.Context, userID int64, role model.Role) (ProfileStatus, error)
}

var _ ProfileLookup = (*ProfileService)(nil)

// ProfileService is the profile directory: per-role profile records, their
// completeness, and the user's active role.
type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	eval     *profile.Evaluator
	logger   *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	eval *profile.Evaluator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
		eval:     eval,
		logger:   logger,
	}
}

// Lookup reports whether userID has a profile for role and whether it is
// complete. A missing profile is not an error.
func (s *ProfileService) Lookup(ctx context.Context, userID int64, role model.Role) (ProfileStatus, error) {
	p, err := s.profiles.GetProfile(ctx, userID, role)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return ProfileStatus{}, nil
		}
		return ProfileStatus{}, fmt.Errorf("service/profile: looking up %s profile: %w", role, err)
	}
	return ProfileStatus{Exists: true, Complete: p.IsComplete}, nil
}

// Ensure returns the user's profile for role, creating an empty one on
// first access.
func (s *ProfileService) Ensure(ctx context.Context, userID int64, role model.Role) (*model.Profile, error) {
	if !role.Valid() {
		return nil, apperror.InvalidRole(string(role))
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.profiles.EnsureProfile(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("service/profile: ensuring %s profile: %w", role, err)
	}
	return p, nil
}

// Get is Ensure under the name the HTTP layer uses.
func (s *ProfileService) Get(ctx context.Context, userID int64, role model.Role) (*model.Profile, error) {
	return s.Ensure(ctx, userID, role)
}

// ListAll returns every profile the user holds.
func (s *ProfileService) ListAll(ctx context.Context, userID int64) ([]model.Profile, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListProfiles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return profiles, nil
}

// Update replaces the user's role profile with in. The update is a full
// record: fields left empty are stored empty. Completeness is recomputed
// from the stored fields, never taken from the caller.
func (s *ProfileService) Update(ctx context.Context, userID int64, role model.Role, in *model.Profile) (*model.Profile, error) {
	if in == nil {
		return nil, apperror.ValidationFailed("profile", "profile body is required")
	}
	if !role.Valid() {
		return nil, apperror.InvalidRole(string(role))
	}
	if in.Role != "" && in.Role != role {
		return nil, apperror.ValidationFailed("role",
			fmt.Sprintf("body role %q does not match path role %q", in.Role, role))
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	p := *in
	p.ID = 0
	p.UserID = userID
	p.Role = role
	p.CreatedAt, p.UpdatedAt = time.Time{}, time.Time{}
	if err := s.eval.CheckShape(&p); err != nil {
		return nil, err
	}
	if isMissingDetails(&p) {
		fresh := model.NewProfile(userID, role)
		p.Entrepreneur, p.Investor, p.Partner = fresh.Entrepreneur, fresh.Investor, fresh.Partner
	}

	res := s.eval.Apply(&p)
	if err := s.profiles.SaveProfile(ctx, &p); err != nil {
		s.logger.Error("failed to save profile",
			slog.Int64("userID", userID),
			slog.String("role", string(role)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: saving %s profile: %w", role, err)
	}

	s.logger.Info("profile updated",
		slog.Int64("userID", userID),
		slog.String("role", string(role)),
		slog.Int("completion", res.Percentage),
		slog.Bool("complete", res.Complete),
	)
	return &p, nil
}

// Completion scores the user's role profile without changing it.
func (s *ProfileService) Completion(ctx context.Context, userID int64, role model.Role) (profile.Result, error) {
	p, err := s.Ensure(ctx, userID, role)
	if err != nil {
		return profile.Result{}, err
	}
	return s.eval.Evaluate(p), nil
}

// SwitchRole makes role the user's active role and lazily creates its
// profile. Switching to the role already active is a no-op.
func (s *ProfileService) SwitchRole(ctx context.Context, userID int64, role model.Role) (*model.User, *model.Profile, error) {
	if !role.Valid() {
		return nil, nil, apperror.InvalidRole(string(role))
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if user.CurrentRole != role {
		if err := s.users.SetCurrentRole(ctx, userID, role); err != nil {
			return nil, nil, fmt.Errorf("service/profile: switching role: %w", err)
		}
		s.logger.Info("role switched",
			slog.Int64("userID", userID),
			slog.String("from", string(user.CurrentRole)),
			slog.String("to", string(role)),
		)
		user.CurrentRole = role
	}

	p, err := s.profiles.EnsureProfile(ctx, userID, role)
	if err != nil {
		return nil, nil, fmt.Errorf("service/profile: ensuring %s profile: %w", role, err)
	}
	return user, p, nil
}

// isMissingDetails reports whether the detail record selected by p.Role is
// nil. CheckShape has already rejected records of the wrong role.
func isMissingDetails(p *model.Profile) bool {
	switch p.Role {
	case model.RoleEntrepreneur:
		return p.Entrepreneur == nil
	case model.RoleInvestor:
		return p.Investor == nil
	case model.RolePartner:
		return p.Partner == nil
	}
	return false
}
