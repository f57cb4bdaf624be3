package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

// DiscoveryPageSize is how many candidates one discovery call returns.
const DiscoveryPageSize = 10

const (
	msgCompleteProfile = "Complete your profile to start swiping"
	msgNoMoreProfiles  = "No more profiles"
)

// placeholderPhotos back candidates who never uploaded a photo.
var placeholderPhotos = []string{
	"1494790108755-2616b612b786",
	"1472099645785-5658abf4ff4e",
	"1438761681033-6461ffad8d80",
	"1507003211169-0a1dd7228f2d",
	"1489424731084-a5d8b219a5bb",
	"1560250097-0b93528c311a",
}

// PlaceholderPhoto returns the stand-in photo for userID. The choice is a
// function of the id, so a candidate keeps the same face across calls.
func PlaceholderPhoto(userID int64) string {
	n := int64(len(placeholderPhotos))
	i := userID % n
	if i < 0 {
		i += n
	}
	return "https://images.unsplash.com/photo-" + placeholderPhotos[i] + "?w=400&h=400&fit=crop&crop=face"
}

// DiscoveryResult is one page of candidates. An incomplete requester gets
// an empty page with ProfileIncomplete set instead of an error.
type DiscoveryResult struct {
	Profiles          []model.Candidate `json:"profiles"`
	CurrentRole       model.Role        `json:"currentRole,omitempty"`
	TargetRole        model.Role        `json:"targetRole,omitempty"`
	ProfileIncomplete bool              `json:"profileIncomplete,omitempty"`
	Message           string            `json:"message"`
}

// DiscoveryService lists profiles a user can swipe on next.
type DiscoveryService struct {
	users     repository.UserRepository
	profiles  ProfileLookup
	discovery repository.DiscoveryRepository
	logger    *slog.Logger
}

func NewDiscoveryService(
	users repository.UserRepository,
	profiles ProfileLookup,
	discovery repository.DiscoveryRepository,
	logger *slog.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		users:     users,
		profiles:  profiles,
		discovery: discovery,
		logger:    logger,
	}
}

// Discover returns up to DiscoveryPageSize complete profiles of the role
// userID's current role pairs with, skipping anyone already swiped on in
// that role pairing.
func (s *DiscoveryService) Discover(ctx context.Context, userID int64) (*DiscoveryResult, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := user.CurrentRole
	target, err := model.TargetRole(current)
	if err != nil {
		return nil, err
	}

	status, err := s.profiles.Lookup(ctx, userID, current)
	if err != nil {
		return nil, fmt.Errorf("service/discovery: %w", err)
	}
	if !status.Complete {
		return &DiscoveryResult{
			Profiles:          []model.Candidate{},
			ProfileIncomplete: true,
			Message:           msgCompleteProfile,
		}, nil
	}

	candidates, err := s.discovery.ListCandidates(ctx, repository.CandidateQuery{
		UserID:     userID,
		SwiperRole: current,
		TargetRole: target,
		Limit:      DiscoveryPageSize,
	})
	if err != nil {
		s.logger.Error("failed to list candidates",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/discovery: listing candidates: %w", err)
	}

	for i := range candidates {
		if candidates[i].User.PhotoURL == "" {
			candidates[i].User.PhotoURL = PlaceholderPhoto(candidates[i].User.ID)
		}
	}

	res := &DiscoveryResult{
		Profiles:    candidates,
		CurrentRole: current,
		TargetRole:  target,
		Message:     msgNoMoreProfiles,
	}
	if len(candidates) > 0 {
		res.Message = fmt.Sprintf("Swipe right to connect with %ss", target)
	}

	s.logger.Debug("discovery served",
		slog.Int64("userID", userID),
		slog.String("role", string(current)),
		slog.Int("candidates", len(candidates)),
	)
	return res, nil
}
