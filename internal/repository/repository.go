// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite is the production implementation.
package repository

import (
	"context"

	"github.com/sakif/sparko/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser inserts or refreshes a user keyed by GitHubID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	SetCurrentRole(ctx context.Context, id int64, role model.Role) error
	// UpdateUserDetails writes the user-editable fields: name, age,
	// location and photo URL.
	UpdateUserDetails(ctx context.Context, user *model.User) error
}

type ProfileRepository interface {
	// GetProfile returns apperror.ErrNotFound when the user has no profile
	// for role.
	GetProfile(ctx context.Context, userID int64, role model.Role) (*model.Profile, error)
	// EnsureProfile returns the profile for (userID, role), creating an
	// empty one first if none exists.
	EnsureProfile(ctx context.Context, userID int64, role model.Role) (*model.Profile, error)
	SaveProfile(ctx context.Context, p *model.Profile) error
	ListProfiles(ctx context.Context, userID int64) ([]model.Profile, error)
}

// CandidateQuery selects discoverable profiles for one user.
type CandidateQuery struct {
	UserID     int64
	SwiperRole model.Role
	TargetRole model.Role
	Limit      int
}

type DiscoveryRepository interface {
	// ListCandidates returns complete TargetRole profiles that UserID has not
	// yet swiped on as SwiperRole, ordered by profile id.
	ListCandidates(ctx context.Context, q CandidateQuery) ([]model.Candidate, error)
}

type MatchRepository interface {
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	ListMatchesFor(ctx context.Context, p model.Participant) ([]model.Match, error)
	SetChatUnlocked(ctx context.Context, id string) error
}

// LedgerTx is the view of storage available inside one swipe transaction.
// Everything done through it commits or rolls back together.
type LedgerTx interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	UpdateSparkQuota(ctx context.Context, userID int64, q model.SparkQuota) error

	HasSwipe(ctx context.Context, key model.SwipeKey) (bool, error)
	// InsertSwipe appends to the ledger. A second swipe with the same key
	// fails with apperror.ErrDuplicateSwipe.
	InsertSwipe(ctx context.Context, s *model.Swipe) error
	// FindPositiveSwipe returns the like or super_spark stored under key,
	// or nil if there is none.
	FindPositiveSwipe(ctx context.Context, key model.SwipeKey) (*model.Swipe, error)

	// FindMatch returns nil when no match exists for pair.
	FindMatch(ctx context.Context, pair model.MatchPair) (*model.Match, error)
	// InsertMatch fails with apperror.ErrStorageConflict if a match for the
	// same pair was committed concurrently.
	InsertMatch(ctx context.Context, m *model.Match) error
}

type Ledger interface {
	// InTx runs fn in a single transaction, committing when fn returns nil
	// and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}
