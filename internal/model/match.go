package model

import "time"

// Participant is one side of a match: a user acting in a specific role.
type Participant struct {
	UserID int64
	Role   Role
}

// MatchPair is the canonical, unordered identity of a match. The side with
// the lower numeric user id is always User1, and each role travels with its
// own user. Two calls with the sides swapped yield the same pair.
type MatchPair struct {
	User1 Participant
	User2 Participant
}

// NewMatchPair canonicalises a and b.
func NewMatchPair(a, b Participant) MatchPair {
	if a.UserID < b.UserID {
		return MatchPair{User1: a, User2: b}
	}
	return MatchPair{User1: b, User2: a}
}

// Match records mutual consent between two users in a pair of roles.
type Match struct {
	ID           string    `json:"id"`
	User1ID      int64     `json:"user1Id"`
	User2ID      int64     `json:"user2Id"`
	User1Role    Role      `json:"user1Role"`
	User2Role    Role      `json:"user2Role"`
	ChatUnlocked bool      `json:"chatUnlocked"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Pair returns the canonical identity of m.
func (m *Match) Pair() MatchPair {
	return MatchPair{
		User1: Participant{UserID: m.User1ID, Role: m.User1Role},
		User2: Participant{UserID: m.User2ID, Role: m.User2Role},
	}
}

// HasUser reports whether userID is one of the two participants.
func (m *Match) HasUser(userID int64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Other returns the participant on the opposite side from userID.
// ok is false when userID is not part of the match.
func (m *Match) Other(userID int64) (p Participant, ok bool) {
	switch userID {
	case m.User1ID:
		return Participant{UserID: m.User2ID, Role: m.User2Role}, true
	case m.User2ID:
		return Participant{UserID: m.User1ID, Role: m.User1Role}, true
	}
	return Participant{}, false
}

// MatchView is a match as one participant sees it.
type MatchView struct {
	MatchID      string     `json:"matchId"`
	User         PublicUser `json:"user"`
	Profile      *Profile   `json:"profile"`
	ChatUnlocked bool       `json:"chatUnlocked"`
	CreatedAt    time.Time  `json:"createdAt"`
}
