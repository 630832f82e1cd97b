package userRepo

import (
	"context"

	"tenantdesk/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address. Returns utils.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIdpID retrieves a user by the identity provider's subject ID.
	GetByIdpID(ctx context.Context, idpID string) (*models.User, error)
	// GetByTokenHash retrieves the user owning a session token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	// GetByIDs retrieves several users at once.
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// ListSlugsWithPrefix returns every user slug starting with prefix.
	ListSlugsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// Create inserts a new user record. Unique violations wrap utils.ErrDuplicateKey.
	Create(ctx context.Context, user *models.User) error
	// Update modifies an existing user record.
	Update(ctx context.Context, user *models.User) error
	// SetTokenHash stores (or clears, with "") the active session token hash.
	SetTokenHash(ctx context.Context, id, tokenHash string) error
}
