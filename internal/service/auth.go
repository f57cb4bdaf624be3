// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, and return
// apperror kinds rather than HTTP statuses.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/auth"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

// AuthService handles registration, login and account lookups.
type AuthService struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		profiles:  profiles,
		tokens:    tokens,
		passwords: passwords,
		validate:  validator.New(),
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued token so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterInput is the body of a password registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"max=100"`
	Role     string `json:"role"`
}

// AccountUpdate carries the user-editable account fields. Nil fields are
// left unchanged.
type AccountUpdate struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Age      *int    `json:"age" validate:"omitempty,gte=18,lte=120"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	PhotoURL *string `json:"photo_url" validate:"omitempty,url"`
}

// Register creates a password account in the requested role (entrepreneur
// by default), creates that role's empty profile and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	role := model.RoleEntrepreneur
	if in.Role != "" {
		r, err := model.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		CurrentRole:  role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if _, err := s.profiles.EnsureProfile(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("service/auth: creating %s profile for user %d: %w", role, user.ID, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("role", string(role)),
	)
	return s.issue(user)
}

// Login checks an email and password. Unknown email and wrong password give
// the same error so the response doesn't reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("failed login", slog.Int64("userID", user.ID))
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return s.issue(user)
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: create the user
// on first sign-in, refresh the GitHub-owned fields afterwards, then issue
// a token.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := ghUser.ToUser()
	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}
	if _, err := s.profiles.EnsureProfile(ctx, user.ID, user.CurrentRole); err != nil {
		return nil, fmt.Errorf("service/auth: creating %s profile for user %d: %w", user.CurrentRole, user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(user)
}

// GetUserByID returns the account behind an authenticated request.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "user id must be positive")
	}
	return s.users.GetUserByID(ctx, id)
}

// UpdateAccount applies the non-nil fields of in to the user's account.
func (s *AuthService) UpdateAccount(ctx context.Context, id int64, in AccountUpdate) (*model.User, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		user.Age = *in.Age
	}
	if in.Location != nil {
		user.Location = strings.TrimSpace(*in.Location)
	}
	if in.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}

	if err := s.users.UpdateUserDetails(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating user %d: %w", id, err)
	}
	return user, nil
}

// ValidateToken returns the user id a token was issued to.
func (s *AuthService) ValidateToken(tokenStr string) (int64, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return 0, fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// validateStruct turns the first validator failure into a ValidationFailed
// naming the offending JSON field.
func (s *AuthService) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("service/auth: validating input: %w", err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.ValidationFailed(field, field+" is required")
	case "email":
		return apperror.ValidationFailed(field, "email address is not valid")
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf("%s fails the %q rule", field, fe.Tag()))
	}
}
