package models

import "time"

// Organization is the tenant boundary. Everything else hangs off it.
type Organization struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Slug      string    `bson:"slug" json:"slug"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	IdpOrgID  string    `bson:"idpOrgId,omitempty" json:"idpOrgId,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// SlackAccessToken is set when the organization installs the Slack app and
	// cleared when Slack reports the installation is gone.
	SlackAccessToken string `bson:"slackAccessToken,omitempty" json:"-"`
	SlackTeamName    string `bson:"slackTeamName,omitempty" json:"slackTeamName,omitempty"`

	DefaultNotificationMethod *DeliveryMethod `bson:"defaultNotificationMethod,omitempty" json:"defaultNotificationMethod,omitempty"`
}

// HasSlack reports whether the organization has a usable Slack installation.
func (o *Organization) HasSlack() bool {
	return o != nil && o.SlackAccessToken != ""
}

// CreateOrganizationRequest is the payload for creating an organization.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// AccessRole is the role a user holds inside an organization.
type AccessRole string

const (
	RoleOwner  AccessRole = "OWNER"
	RoleMember AccessRole = "MEMBER"
)

// UserOrganizationAccess links a user to an organization.
type UserOrganizationAccess struct {
	ID             string     `bson:"id" json:"id"`
	UserID         string     `bson:"userId" json:"userId"`
	OrganizationID string     `bson:"organizationId" json:"organizationId"`
	Role           AccessRole `bson:"role" json:"role"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
}

// InvitationStatus tracks an invitation through acceptance.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
)

// UserOrganizationInvitation is an outstanding invite for an email address.
type UserOrganizationInvitation struct {
	ID             string           `bson:"id" json:"id"`
	OrganizationID string           `bson:"organizationId" json:"organizationId"`
	Email          string           `bson:"email" json:"email"`
	InviterID      string           `bson:"inviterId" json:"inviterId"`
	Role           AccessRole       `bson:"role" json:"role"`
	Status         InvitationStatus `bson:"status" json:"status"`
	CreatedAt      time.Time        `bson:"createdAt" json:"createdAt"`
	AcceptedAt     *time.Time       `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
}

// InviteRequest is the payload for inviting a user by email.
type InviteRequest struct {
	Email string     `json:"email" binding:"required"`
	Role  AccessRole `json:"role"`
}

// Member is a user as seen from inside an organization.
type Member struct {
	UserID string     `json:"userId"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   AccessRole `json:"role"`
}
