package models

import "time"

// EnvironmentType separates real traffic from everything else. Only
// PRODUCTION notifications are ever delivered.
type EnvironmentType string

const (
	EnvironmentProduction  EnvironmentType = "PRODUCTION"
	EnvironmentDevelopment EnvironmentType = "DEVELOPMENT"
)

// Valid reports whether t is a known environment type.
func (t EnvironmentType) Valid() bool {
	return t == EnvironmentProduction || t == EnvironmentDevelopment
}

// OrganizationEnvironment is a named environment inside an organization.
// Slugs are unique per organization.
type OrganizationEnvironment struct {
	ID             string          `bson:"id" json:"id"`
	OrganizationID string          `bson:"organizationId" json:"organizationId"`
	Name           string          `bson:"name" json:"name"`
	Slug           string          `bson:"slug" json:"slug"`
	Type           EnvironmentType `bson:"type" json:"type"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
}

// CreateEnvironmentRequest is the payload for creating an environment.
type CreateEnvironmentRequest struct {
	Name string          `json:"name" binding:"required"`
	Type EnvironmentType `json:"type"`
}
