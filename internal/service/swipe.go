package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

const (
	msgSwipeRecorded = "Swipe recorded successfully"
	msgItsAMatch     = "It's a match!"
)

// SwipeResult is the outcome of one swipe.
type SwipeResult struct {
	Matched         bool         `json:"matched"`
	SuperSparkCount int          `json:"superSparkCount"`
	Message         string       `json:"message"`
	Match           *model.Match `json:"matchDetails,omitempty"`
}

// SwipeService records swipes and detects mutual likes.
//
// Each swipe is a single ledger transaction:
//
//	load both users → resolve target role → reject duplicates →
//	lazy quota reset → spend a super spark → append swipe →
//	look for the reciprocal positive swipe → EnsureMatch
//
// Nothing is written unless every step succeeds.
type SwipeService struct {
	ledger  repository.Ledger
	matches *MatchService
	logger  *slog.Logger
	now     func() time.Time
}

func NewSwipeService(ledger repository.Ledger, matches *MatchService, logger *slog.Logger) *SwipeService {
	return &SwipeService{
		ledger:  ledger,
		matches: matches,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Swipe records userID's action on targetID, acting in userID's current
// role against the role it pairs with.
func (s *SwipeService) Swipe(ctx context.Context, userID, targetID int64, rawAction string) (*SwipeResult, error) {
	if targetID <= 0 {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}
	if rawAction == "" {
		return nil, apperror.ValidationFailed("action", "action is required")
	}
	action, err := model.ParseAction(rawAction)
	if err != nil {
		return nil, err
	}
	if targetID == userID {
		return nil, apperror.ValidationFailed("user_id", "you cannot swipe on yourself")
	}

	res, err := s.record(ctx, userID, targetID, action)
	if errors.Is(err, apperror.ErrStorageConflict) {
		// The losing side of a race retries once; the rerun sees whatever
		// the winner committed (its match, or its swipe as a duplicate).
		s.logger.Warn("swipe conflicted, retrying",
			slog.Int64("userID", userID),
			slog.Int64("targetID", targetID),
		)
		res, err = s.record(ctx, userID, targetID, action)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("swipe recorded",
		slog.Int64("userID", userID),
		slog.Int64("targetID", targetID),
		slog.String("action", string(action)),
		slog.Bool("matched", res.Matched),
	)
	return res, nil
}

func (s *SwipeService) record(ctx context.Context, userID, targetID int64, action model.Action) (*SwipeResult, error) {
	var res *SwipeResult

	err := s.ledger.InTx(ctx, func(tx repository.LedgerTx) error {
		user, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := tx.GetUserByID(ctx, targetID); err != nil {
			return err
		}

		current := user.CurrentRole
		target, err := model.TargetRole(current)
		if err != nil {
			return err
		}
		key := model.SwipeKey{
			SwiperID:   userID,
			SwipedID:   targetID,
			SwiperRole: current,
			SwipedRole: target,
		}

		dup, err := tx.HasSwipe(ctx, key)
		if err != nil {
			return err
		}
		if dup {
			return apperror.DuplicateSwipe()
		}

		quota := user.Quota()
		dirty := quota.MaybeReset(s.now())
		if action == model.ActionSuperSpark {
			if err := quota.Consume(); err != nil {
				return err
			}
			dirty = true
		}
		if dirty {
			if err := tx.UpdateSparkQuota(ctx, userID, quota); err != nil {
				return err
			}
		}

		if err := tx.InsertSwipe(ctx, &model.Swipe{SwipeKey: key, Action: action}); err != nil {
			return err
		}

		res = &SwipeResult{SuperSparkCount: quota.Count, Message: msgSwipeRecorded}
		if !action.Positive() {
			return nil
		}

		back, err := tx.FindPositiveSwipe(ctx, key.Reverse())
		if err != nil {
			return err
		}
		if back == nil {
			return nil
		}

		m, created, err := s.matches.EnsureMatch(ctx, tx,
			model.Participant{UserID: userID, Role: current},
			model.Participant{UserID: targetID, Role: target},
		)
		if err != nil {
			return err
		}
		res.Matched = true
		res.Match = m
		res.Message = msgItsAMatch
		if created {
			s.logger.Info("match created",
				slog.String("matchID", m.ID),
				slog.Int64("user1", m.User1ID),
				slog.Int64("user2", m.User2ID),
			)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("service/swipe: %w", err)
	}
	return res, nil
}
