package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

// MatchList is a user's matches in their current role.
type MatchList struct {
	Matches     []model.MatchView `json:"matches"`
	CurrentRole model.Role        `json:"currentRole"`
}

// MatchService owns match creation, match listing and the chat gate.
type MatchService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	matches  repository.MatchRepository
	logger   *slog.Logger
}

func NewMatchService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		users:    users,
		profiles: profiles,
		matches:  matches,
		logger:   logger,
	}
}

// EnsureMatch returns the match between a and b, creating it inside tx if
// it does not exist yet. The argument order does not matter. created is
// false when the match already existed.
//
// A concurrent transaction that committed the same pair first makes
// InsertMatch fail with apperror.ErrStorageConflict; the caller retries the
// whole transaction and the retry finds the row through FindMatch.
func (s *MatchService) EnsureMatch(ctx context.Context, tx repository.LedgerTx, a, b model.Participant) (m *model.Match, created bool, err error) {
	if a.UserID == b.UserID {
		return nil, false, apperror.ValidationFailed("user_id", "a user cannot match with themselves")
	}
	pair := model.NewMatchPair(a, b)

	existing, err := tx.FindMatch(ctx, pair)
	if err != nil {
		return nil, false, fmt.Errorf("service/match: finding match: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	m = &model.Match{
		User1ID:   pair.User1.UserID,
		User1Role: pair.User1.Role,
		User2ID:   pair.User2.UserID,
		User2Role: pair.User2.Role,
	}
	if err := tx.InsertMatch(ctx, m); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// ListMatches returns userID's matches in their current role, each seen
// from userID's side. Matches whose other profile no longer exists are left
// out.
func (s *MatchService) ListMatches(ctx context.Context, userID int64) (*MatchList, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matches.ListMatchesFor(ctx, model.Participant{UserID: userID, Role: user.CurrentRole})
	if err != nil {
		return nil, fmt.Errorf("service/match: listing matches: %w", err)
	}

	views := make([]model.MatchView, 0, len(matches))
	for i := range matches {
		v, err := s.view(ctx, &matches[i], userID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				s.logger.Warn("skipping match with missing counterpart",
					slog.String("matchID", matches[i].ID),
					slog.Int64("userID", userID),
				)
				continue
			}
			return nil, err
		}
		views = append(views, *v)
	}

	return &MatchList{Matches: views, CurrentRole: user.CurrentRole}, nil
}

// GetMatch returns one match as userID sees it. Non-participants get
// apperror.ErrNotFound, the same as for a match that doesn't exist.
func (s *MatchService) GetMatch(ctx context.Context, userID int64, matchID string) (*model.MatchView, error) {
	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, m, userID)
}

// IsUnlocked reports whether chat is open for the match.
func (s *MatchService) IsUnlocked(ctx context.Context, matchID string) (bool, error) {
	m, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return false, err
	}
	return m.ChatUnlocked, nil
}

// UnlockChat opens chat on a match. Either participant may do it, and doing
// it twice is harmless.
func (s *MatchService) UnlockChat(ctx context.Context, userID int64, matchID string) (*model.Match, error) {
	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if m.ChatUnlocked {
		return m, nil
	}

	if err := s.matches.SetChatUnlocked(ctx, matchID); err != nil {
		return nil, fmt.Errorf("service/match: unlocking chat: %w", err)
	}
	m.ChatUnlocked = true

	s.logger.Info("chat unlocked",
		slog.String("matchID", matchID),
		slog.Int64("userID", userID),
	)
	return m, nil
}

func (s *MatchService) participantMatch(ctx context.Context, userID int64, matchID string) (*model.Match, error) {
	if matchID == "" {
		return nil, apperror.ValidationFailed("id", "match id is required")
	}
	m, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasUser(userID) {
		return nil, apperror.NotFound("match", matchID)
	}
	return m, nil
}

// view enriches m with the other participant's public fields and their
// profile for the role they matched in.
func (s *MatchService) view(ctx context.Context, m *model.Match, userID int64) (*model.MatchView, error) {
	other, ok := m.Other(userID)
	if !ok {
		return nil, apperror.NotFound("match", m.ID)
	}

	u, err := s.users.GetUserByID(ctx, other.UserID)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetProfile(ctx, other.UserID, other.Role)
	if err != nil {
		return nil, err
	}

	return &model.MatchView{
		MatchID: m.ID,
		User: model.PublicUser{
			ID:       u.ID,
			Name:     u.Name,
			Age:      u.Age,
			Location: u.Location,
			PhotoURL: u.PhotoURL,
			Role:     other.Role,
		},
		Profile:      p,
		ChatUnlocked: m.ChatUnlocked,
		CreatedAt:    m.CreatedAt,
	}, nil
}
