// Package seed fills a database with demo accounts, one complete profile
// each, so discovery has someone to show on a fresh install.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/service"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

// Account is one demo user and the profile for their role.
type Account struct {
	Name     string
	Email    string
	Age      int
	Location string
	PhotoURL string
	Profile  *model.Profile
}

func photo(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=400"
}

func entrepreneur(base model.ProfileBase, d model.EntrepreneurDetails) *model.Profile {
	p := model.NewProfile(0, model.RoleEntrepreneur)
	p.ProfileBase, *p.Entrepreneur = base, d
	return p
}

func investor(base model.ProfileBase, d model.InvestorDetails) *model.Profile {
	p := model.NewProfile(0, model.RoleInvestor)
	p.ProfileBase, *p.Investor = base, d
	return p
}

func partner(base model.ProfileBase, d model.PartnerDetails) *model.Profile {
	p := model.NewProfile(0, model.RolePartner)
	p.ProfileBase, *p.Partner = base, d
	return p
}

// Accounts is the demo data set.
var Accounts = []Account{
	{
		Name: "Sarah Chen", Email: "sarah.chen@example.com", Age: 28, Location: "San Francisco, CA",
		PhotoURL: photo("1494790108755-2616b612b786"),
		Profile: entrepreneur(model.ProfileBase{
			Title: "AI Startup Founder", Company: "NeuralFlow",
			Tagline: "Building the future of conversational AI",
			Bio:     "AI entrepreneur with 5+ years in machine learning. Previously led AI initiatives at Google and Microsoft.",
			Skills:  []string{"Machine Learning", "Product Strategy", "Team Leadership"},
		}, model.EntrepreneurDetails{
			ProjectDescription: "Conversational AI platform for customer support teams",
			FundingStage:       "Series A", FundingAmount: "$2M", Industry: "AI", TeamSize: 8,
			LookingForInvestorType: "Series A investors",
		}),
	},
	{
		Name: "David Kim", Email: "david.kim@example.com", Age: 45, Location: "Palo Alto, CA",
		PhotoURL: photo("1472099645785-5658abf4ff4e"),
		Profile: investor(model.ProfileBase{
			Title: "Managing Partner", Company: "TechVentures Capital",
			Tagline: "Investing in the next generation of tech startups",
			Bio:     "15+ years in venture capital with a focus on enterprise software and AI. Led investments in 50+ startups.",
			Skills:  []string{"Venture Capital", "Due Diligence", "Strategic Planning"},
		}, model.InvestorDetails{
			InvestmentPreferences: []string{"AI", "SaaS"}, InvestmentRange: "$1M-$10M",
			PastInvestments: "50+ startups", ProfessionalBackground: "Former enterprise software executive",
			GeographicPreference: "US West Coast", ValueAddServices: "Go-to-market and hiring",
		}),
	},
	{
		Name: "Emily Rodriguez", Email: "emily.rodriguez@example.com", Age: 32, Location: "Austin, TX",
		PhotoURL: photo("1438761681033-6461ffad8d80"),
		Profile: entrepreneur(model.ProfileBase{
			Title: "HealthTech Founder", Company: "MediConnect",
			Tagline: "Connecting patients with care, anywhere",
			Bio:     "Former nurse turned founder, building telemedicine for rural communities.",
			Skills:  []string{"Healthcare", "Operations", "Fundraising"},
		}, model.EntrepreneurDetails{
			ProjectDescription: "Telemedicine platform for underserved rural clinics",
			FundingStage:       "Seed", FundingAmount: "$750K", Industry: "HealthTech", TeamSize: 5,
		}),
	},
	{
		Name: "Michael Zhang", Email: "michael.zhang@example.com", Age: 38, Location: "New York, NY",
		PhotoURL: photo("1507003211169-0a1dd7228f2d"),
		Profile: investor(model.ProfileBase{
			Title: "Angel Investor", Company: "Zhang Ventures",
			Tagline: "Backing fintech founders from day one",
			Bio:     "Ex-Goldman fintech operator. Writes first checks into payments and infrastructure companies.",
			Skills:  []string{"Fintech", "Mentoring", "Financial Modeling"},
		}, model.InvestorDetails{
			InvestmentPreferences: []string{"Fintech", "Infrastructure"}, InvestmentRange: "$50K-$500K",
			ProfessionalBackground: "Investment banking and fintech operations",
			GeographicPreference:   "North America",
		}),
	},
	{
		Name: "Lisa Johnson", Email: "lisa.johnson@example.com", Age: 35, Location: "Seattle, WA",
		PhotoURL: photo("1489424731084-a5d8b219a5bb"),
		Profile: partner(model.ProfileBase{
			Title: "Full-Stack Engineer", Company: "Freelance",
			Tagline: "Looking for a mission to build for",
			Bio:     "Ten years shipping web products at startups. Wants a technical co-founder role.",
			Skills:  []string{"Go", "React", "Cloud Architecture"},
		}, model.PartnerDetails{
			Expertise: []string{"Backend", "DevOps"}, Availability: "Full-time",
			CollaborationType: "Co-founder", DesiredRole: "CTO", EquityExpectation: "10-20%",
		}),
	},
	{
		Name: "Alex Thompson", Email: "alex.thompson@example.com", Age: 26, Location: "Boston, MA",
		PhotoURL: photo("1560250097-0b93528c311a"),
		Profile: entrepreneur(model.ProfileBase{
			Title: "Climate Tech Founder", Company: "GreenGrid",
			Tagline: "Making every building a power plant",
			Bio:     "MIT energy systems graduate building software for distributed solar.",
			Skills:  []string{"Energy Systems", "Python", "Sales"},
		}, model.EntrepreneurDetails{
			ProjectDescription: "Software that coordinates rooftop solar into virtual power plants",
			FundingStage:       "Pre-seed", FundingAmount: "$300K", Industry: "Climate", TeamSize: 3,
		}),
	},
	{
		Name: "Jennifer Lee", Email: "jennifer.lee@example.com", Age: 41, Location: "Los Angeles, CA",
		PhotoURL: photo("1494790108755-2616b612b786"),
		Profile: investor(model.ProfileBase{
			Title: "Partner", Company: "Horizon Growth",
			Tagline: "Consumer brands with staying power",
			Bio:     "Built and sold two consumer brands before joining Horizon.",
			Skills:  []string{"Consumer", "Brand Strategy", "Board Governance"},
		}, model.InvestorDetails{
			InvestmentPreferences: []string{"Consumer", "Marketplaces"}, InvestmentRange: "$2M-$15M",
			ProfessionalBackground: "Two-time founder", GeographicPreference: "US",
		}),
	},
	{
		Name: "Ryan Patel", Email: "ryan.patel@example.com", Age: 30, Location: "Chicago, IL",
		PhotoURL: photo("1472099645785-5658abf4ff4e"),
		Profile: partner(model.ProfileBase{
			Title: "Growth Marketer", Company: "Independent",
			Tagline: "From zero to the first 10k users",
			Bio:     "Led growth at two B2B SaaS startups through Series B.",
			Skills:  []string{"Growth", "SEO", "Analytics"},
		}, model.PartnerDetails{
			Expertise: []string{"Marketing", "Growth"}, Availability: "Part-time",
			CollaborationType: "Advisor", DesiredRole: "Head of Growth",
		}),
	},
}

// Seeder creates the demo accounts through the regular services, so the
// demo data obeys every rule real sign-ups do.
type Seeder struct {
	auth     *service.AuthService
	profiles *service.ProfileService
	logger   *slog.Logger
}

func New(auth *service.AuthService, profiles *service.ProfileService, logger *slog.Logger) *Seeder {
	return &Seeder{auth: auth, profiles: profiles, logger: logger}
}

// Run creates every account in accounts. Accounts whose email already
// exists are skipped, so running it twice is harmless. It returns how many
// accounts were created.
func (s *Seeder) Run(ctx context.Context, accounts []Account) (int, error) {
	created := 0
	for _, a := range accounts {
		role := a.Profile.Role
		res, err := s.auth.Register(ctx, service.RegisterInput{
			Email:    a.Email,
			Password: DemoPassword,
			Name:     a.Name,
			Role:     string(role),
		})
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("demo account exists, skipping", slog.String("email", a.Email))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed: registering %s: %w", a.Email, err)
		}

		age, location, photoURL := a.Age, a.Location, a.PhotoURL
		if _, err := s.auth.UpdateAccount(ctx, res.User.ID, service.AccountUpdate{
			Age: &age, Location: &location, PhotoURL: &photoURL,
		}); err != nil {
			return created, fmt.Errorf("seed: updating %s: %w", a.Email, err)
		}

		p, err := s.profiles.Update(ctx, res.User.ID, role, a.Profile)
		if err != nil {
			return created, fmt.Errorf("seed: saving %s profile of %s: %w", role, a.Email, err)
		}
		if !p.IsComplete {
			s.logger.Warn("demo profile is incomplete",
				slog.String("email", a.Email),
				slog.Int("completion", p.CompletionPercentage),
			)
		}
		created++
	}
	return created, nil
}
