package model

import "time"

// User represents a registered account.
//
// IDs are SQLite INTEGER PRIMARY KEYs. Matches order their two participants
// by this id, so it must stay numeric.
//
// Email and GitHubID are both optional because a user can sign in with either
// a password or GitHub. The DB keeps each one UNIQUE when present.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email,omitempty"`
	GitHubID     *int64    `json:"githubId,omitempty"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Age          int       `json:"age,omitempty"`
	Location     string    `json:"location,omitempty"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	CurrentRole  Role      `json:"currentRole"`
	SparkCount   int       `json:"superSparkCount"`
	SparkResetAt time.Time `json:"superSparkResetAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Quota returns the user's super spark state as a value the quota rules can
// operate on.
func (u *User) Quota() SparkQuota {
	return SparkQuota{Count: u.SparkCount, ResetAt: u.SparkResetAt}
}

// SetQuota writes q back onto the user.
func (u *User) SetQuota(q SparkQuota) {
	u.SparkCount = q.Count
	u.SparkResetAt = q.ResetAt
}

// PublicUser is the subset of a user shown to other users.
type PublicUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Location string `json:"location,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Role     Role   `json:"role"`
}
