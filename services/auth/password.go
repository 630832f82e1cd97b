package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasLower  = regexp.MustCompile(`[a-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
	hasSymbol = regexp.MustCompile(`[\W_]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	switch {
	case len(pw) < 8:
		return fmt.Errorf("password must be at least 8 characters long")
	case !hasUpper.MatchString(pw):
		return fmt.Errorf("password must include at least one uppercase letter")
	case !hasLower.MatchString(pw):
		return fmt.Errorf("password must include at least one lowercase letter")
	case !hasNumber.MatchString(pw):
		return fmt.Errorf("password must include at least one number")
	case !hasSymbol.MatchString(pw):
		return fmt.Errorf("password must include at least one symbol")
	}
	return nil
}

// Register creates a password account and its personal organization.
func (s *DefaultAuthService) Register(ctx context.Context, req models.UserRegistrationRequest) (*AuthResponse, error) {
	addr := utils.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if !utils.IsEmail(addr) {
		return nil, utils.NewInvalidError("%q is not a valid email address", req.Email)
	}
	if name == "" {
		return nil, utils.NewInvalidError("name is required")
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, utils.NewInvalidError("%s", err.Error())
	}

	if _, err := s.Users.GetByEmail(ctx, addr); err == nil {
		return nil, utils.NewConflictError("a user with this email already exists")
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, fmt.Errorf("Register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash password: %w", err)
	}

	user := &models.User{Email: addr, Name: name, PasswordHash: string(hash)}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}
	org, err := s.Organizations.CreateOrganization(ctx, user, name)
	if err != nil {
		return nil, fmt.Errorf("Register: personal organization: %w", err)
	}
	if _, err := s.Organizations.AcceptPendingInvitations(ctx, user); err != nil {
		utils.GetLogger().Warn("failed to accept pending invitations", zap.String("userId", user.ID), zap.Error(err))
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Organization = org
	utils.GetLogger().Info("user registered", zap.String("userId", user.ID), zap.String("slug", user.Slug))
	return resp, nil
}

// Login verifies a password and starts a new session.
func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error) {
	user, err := s.Users.GetByEmail(ctx, utils.NormalizeEmail(req.Email))
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewUnauthorizedError("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if user.Deleted || user.PasswordHash == "" {
		return nil, utils.NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewUnauthorizedError("invalid email or password")
	}
	return s.issueToken(ctx, user)
}

// createUser assigns an id and a unique slug, then inserts the user.
func (s *DefaultAuthService) createUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = uuid.New().String()
	user.CreatedAt, user.UpdatedAt = now, now

	slugSource := user.Name
	if utils.GenerateSlug(slugSource) == "" {
		slugSource = strings.SplitN(user.Email, "@", 2)[0]
	}
	_, err := utils.CreateWithUniqueSlug(ctx, slugSource, s.Users.ListSlugsWithPrefix, func(slug string) error {
		user.Slug = slug
		return s.Users.Create(ctx, user)
	})
	if err != nil {
		return fmt.Errorf("createUser: %w", err)
	}
	return nil
}
