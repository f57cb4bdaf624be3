package model

import (
	"time"

	"github.com/sakif/sparko/internal/apperror"
)

const (
	// SparkWeeklyCap is how many super sparks a user gets per period.
	SparkWeeklyCap = 3
	// SparkResetPeriod is how long a user waits between replenishments.
	SparkResetPeriod = 7 * 24 * time.Hour
)

// SparkQuota is the per-user super spark counter. It is durable user state:
// the rules below are pure, and callers persist the result inside the same
// transaction as whatever consumed it.
//
// Replenishment is lazy. Nothing ticks in the background; MaybeReset is
// evaluated whenever the quota is checked.
type SparkQuota struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// MaybeReset refills the quota when at least SparkResetPeriod has elapsed
// since ResetAt. It reports whether the quota changed.
func (q *SparkQuota) MaybeReset(now time.Time) bool {
	if now.Sub(q.ResetAt) < SparkResetPeriod {
		return false
	}
	q.Count = SparkWeeklyCap
	q.ResetAt = now
	return true
}

// NextReset is the earliest time MaybeReset will refill the quota.
func (q SparkQuota) NextReset() time.Time {
	return q.ResetAt.Add(SparkResetPeriod)
}

// Consume spends one spark.
func (q *SparkQuota) Consume() error {
	if q.Count <= 0 {
		return apperror.QuotaExhausted()
	}
	q.Count--
	return nil
}
