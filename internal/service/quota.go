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

// QuotaStatus describes a user's super spark allowance.
type QuotaStatus struct {
	Count     int       `json:"superSparkCount"`
	Max       int       `json:"maxSuperSparks"`
	WasReset  bool      `json:"wasReset"`
	ResetAt   time.Time `json:"lastReset"`
	NextReset time.Time `json:"nextReset"`
	Message   string    `json:"message"`
}

// QuotaService exposes the weekly super spark counter outside of swiping.
type QuotaService struct {
	ledger repository.Ledger
	logger *slog.Logger
	now    func() time.Time
}

func NewQuotaService(ledger repository.Ledger, logger *slog.Logger) *QuotaService {
	return &QuotaService{
		ledger: ledger,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Status returns the current allowance, applying a due weekly refill.
func (s *QuotaService) Status(ctx context.Context, userID int64) (*QuotaStatus, error) {
	return s.refresh(ctx, userID)
}

// Reset asks for the weekly refill. It only refills when a full period has
// passed since the last one; otherwise the status explains when it will.
func (s *QuotaService) Reset(ctx context.Context, userID int64) (*QuotaStatus, error) {
	st, err := s.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.WasReset {
		st.Message = "Super sparks reset successfully"
	} else {
		st.Message = "Super sparks not ready for reset"
	}
	return st, nil
}

func (s *QuotaService) refresh(ctx context.Context, userID int64) (*QuotaStatus, error) {
	var st *QuotaStatus
	err := s.ledger.InTx(ctx, func(tx repository.LedgerTx) error {
		user, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		q := user.Quota()
		reset := q.MaybeReset(s.now())
		if reset {
			if err := tx.UpdateSparkQuota(ctx, userID, q); err != nil {
				return err
			}
		}

		st = &QuotaStatus{
			Count:     q.Count,
			Max:       model.SparkWeeklyCap,
			WasReset:  reset,
			ResetAt:   q.ResetAt,
			NextReset: q.NextReset(),
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("service/quota: %w", err)
	}

	if st.WasReset {
		s.logger.Info("super sparks replenished",
			slog.Int64("userID", userID),
			slog.Int("count", st.Count),
		)
	}
	return st, nil
}
