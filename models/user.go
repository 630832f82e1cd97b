// models/user.go
package models

import "time"

// User represents an account that can belong to one or more organizations.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Slug         string    `bson:"slug" json:"slug"`
	IdpID        string    `bson:"idpId,omitempty" json:"idpId,omitempty"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	TokenHash    string    `bson:"tokenHash,omitempty" json:"-"`
	ProfileImage string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Deleted      bool      `bson:"deleted" json:"deleted"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	// NotificationMethod is the user's preferred delivery method when a
	// notification instruction does not name one.
	NotificationMethod *DeliveryMethod `bson:"notificationMethod,omitempty" json:"notificationMethod,omitempty"`
}

// UserRegistrationRequest is the payload for password sign-up.
type UserRegistrationRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the payload for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SSOProfile is the identity returned by the identity provider after a
// successful code exchange.
type SSOProfile struct {
	IdpID            string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
}

// FullName joins the first and last name reported by the identity provider.
func (p SSOProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
