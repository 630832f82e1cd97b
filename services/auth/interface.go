package auth

import (
	"context"
	"time"

	userRepo "tenantdesk/database/repository/user"
	"tenantdesk/models"
	"tenantdesk/services/featureflag"
	"tenantdesk/services/organization"

	"github.com/go-redis/redis/v8"
)

type AuthService interface {
	Register(ctx context.Context, req models.UserRegistrationRequest) (*AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error)
	SSOLoginURL(ctx context.Context, state string) (string, error)
	SSOCallback(ctx context.Context, code string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// DefaultAuthService is the production implementation. Cache may be nil.
type DefaultAuthService struct {
	Users         userRepo.UserRepository
	Organizations organization.OrganizationService
	IdP           IdentityProvider
	Flags         featureflag.Checker
	Cache         *redis.Client
	TokenTTL      time.Duration
}

// AuthResponse contains the user's ID, token, and additional details.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Slug  string `json:"slug,omitempty"`
	// Organization is set when sign-in created or joined an organization.
	Organization *models.Organization `json:"organization,omitempty"`
}
