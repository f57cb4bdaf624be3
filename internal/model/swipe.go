package model

import (
	"time"

	"github.com/sakif/sparko/internal/apperror"
)

// Action is a swipe decision.
type Action string

const (
	ActionLike       Action = "like"
	ActionSkip       Action = "skip"
	ActionSuperSpark Action = "super_spark"
)

// ParseAction validates a swipe action coming from a client. The match is
// exact: no trimming, no case folding.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	switch a {
	case ActionLike, ActionSkip, ActionSuperSpark:
		return a, nil
	}
	return "", apperror.InvalidAction(s)
}

// Positive reports whether the action counts towards a match.
// Skips never do.
func (a Action) Positive() bool {
	return a == ActionLike || a == ActionSuperSpark
}

// SwipeKey identifies a directed, role-scoped swipe. The ledger holds at most
// one swipe per key.
type SwipeKey struct {
	SwiperID   int64 `json:"swiperId"`
	SwipedID   int64 `json:"swipedId"`
	SwiperRole Role  `json:"swiperRole"`
	SwipedRole Role  `json:"swipedRole"`
}

// Reverse is the key the other user would have swiped under.
func (k SwipeKey) Reverse() SwipeKey {
	return SwipeKey{
		SwiperID:   k.SwipedID,
		SwipedID:   k.SwiperID,
		SwiperRole: k.SwipedRole,
		SwipedRole: k.SwiperRole,
	}
}

// Swipe is an immutable ledger entry. Swipes are never updated or deleted.
type Swipe struct {
	ID string `json:"id"`
	SwipeKey
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}
