// Package model defines the domain types shared by every layer: users and
// their roles, role profiles, swipes, matches and the super spark quota.
package model

import (
	"strings"

	"github.com/sakif/sparko/internal/apperror"
)

// Role is the hat a user is currently wearing. A user owns at most one
// profile per role and swipes as exactly one role at a time.
type Role string

const (
	RoleEntrepreneur Role = "entrepreneur"
	RoleInvestor     Role = "investor"
	RolePartner      Role = "partner"
)

// Roles lists every valid role in a fixed order.
var Roles = []Role{RoleEntrepreneur, RoleInvestor, RolePartner}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEntrepreneur, RoleInvestor, RolePartner:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts user input into a Role. Surrounding whitespace and case
// are ignored; anything outside the enumeration is apperror.ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperror.InvalidRole(s)
	}
	return r, nil
}

// TargetRole returns the role whose profiles a user with role r discovers and
// matches against. Entrepreneurs and investors pair with each other; partners
// pair with partners. An unknown role is a configuration error, never a
// silent default.
func TargetRole(r Role) (Role, error) {
	switch r {
	case RoleEntrepreneur:
		return RoleInvestor, nil
	case RoleInvestor:
		return RoleEntrepreneur, nil
	case RolePartner:
		return RolePartner, nil
	}
	return "", apperror.InvalidRole(string(r))
}
