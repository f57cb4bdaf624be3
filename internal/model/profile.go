package model

import "time"

// ProfileBase holds the fields every role profile shares. Each role record
// composes it rather than the profile being one wide bag of optional columns.
//
// The `validate` tags are the completeness schema: a profile is complete when
// its base and its role details both pass validation (see internal/profile).
type ProfileBase struct {
	Title   string   `json:"title" validate:"required"`
	Company string   `json:"company"`
	Tagline string   `json:"tagline" validate:"required"`
	Bio     string   `json:"bio" validate:"required"`
	Skills  []string `json:"skills" validate:"min=1,dive,required"`
}

// EntrepreneurDetails are the attributes of an entrepreneur profile.
type EntrepreneurDetails struct {
	ProjectDescription     string `json:"projectDescription" validate:"required"`
	FundingStage           string `json:"fundingStage" validate:"required"`
	FundingAmount          string `json:"fundingAmount" validate:"required"`
	Industry               string `json:"industry" validate:"required"`
	TeamSize               int    `json:"teamSize" validate:"gte=1"`
	LookingForInvestorType string `json:"lookingForInvestorType"`
}

// InvestorDetails are the attributes of an investor profile.
type InvestorDetails struct {
	InvestmentPreferences  []string `json:"investmentPreferences" validate:"min=1,dive,required"`
	InvestmentRange        string   `json:"investmentRange" validate:"required"`
	PastInvestments        string   `json:"pastInvestments"`
	ProfessionalBackground string   `json:"professionalBackground" validate:"required"`
	GeographicPreference   string   `json:"geographicPreference" validate:"required"`
	ValueAddServices       string   `json:"valueAddServices"`
}

// PartnerDetails are the attributes of a co-founder/partner profile.
type PartnerDetails struct {
	Expertise          []string `json:"expertise" validate:"min=1,dive,required"`
	Availability       string   `json:"availability" validate:"required"`
	CollaborationType  string   `json:"collaborationType" validate:"required"`
	DesiredRole        string   `json:"desiredRole" validate:"required"`
	EquityExpectation  string   `json:"equityExpectation"`
	LocationPreference string   `json:"locationPreference"`
}

// Profile is a tagged variant: Role says which one of the detail pointers is
// populated. The other two are always nil.
type Profile struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
	Role   Role  `json:"role"`
	ProfileBase

	Entrepreneur *EntrepreneurDetails `json:"entrepreneur,omitempty"`
	Investor     *InvestorDetails     `json:"investor,omitempty"`
	Partner      *PartnerDetails      `json:"partner,omitempty"`

	IsComplete           bool      `json:"isComplete"`
	CompletionPercentage int       `json:"completionPercentage"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewProfile returns an empty profile for role with the matching detail
// record allocated.
func NewProfile(userID int64, role Role) *Profile {
	p := &Profile{UserID: userID, Role: role}
	switch role {
	case RoleEntrepreneur:
		p.Entrepreneur = &EntrepreneurDetails{}
	case RoleInvestor:
		p.Investor = &InvestorDetails{}
	case RolePartner:
		p.Partner = &PartnerDetails{}
	}
	return p
}

// Details returns the populated role record, or nil if the profile's Role is
// not valid.
func (p *Profile) Details() any {
	switch p.Role {
	case RoleEntrepreneur:
		return p.Entrepreneur
	case RoleInvestor:
		return p.Investor
	case RolePartner:
		return p.Partner
	}
	return nil
}

// Candidate is a discoverable profile together with the owner's public
// fields.
type Candidate struct {
	User    PublicUser `json:"user"`
	Profile Profile    `json:"profile"`
}
