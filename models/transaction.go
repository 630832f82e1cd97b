package models

import "time"

// Action is an organization-defined operation that transactions are run
// against. DefaultDelivery holds a raw JSON delivery policy, see
// notification.ParseDeliveryPolicy.
type Action struct {
	ID              string    `bson:"id" json:"id"`
	OrganizationID  string    `bson:"organizationId" json:"organizationId"`
	Name            string    `bson:"name" json:"name"`
	DefaultDelivery string    `bson:"defaultDelivery,omitempty" json:"defaultDelivery,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// Transaction is a single run of an action on behalf of a user.
type Transaction struct {
	ID             string          `bson:"id" json:"id"`
	OrganizationID string          `bson:"organizationId" json:"organizationId"`
	ActionID       string          `bson:"actionId" json:"actionId"`
	UserID         string          `bson:"userId" json:"userId"`
	Environment    EnvironmentType `bson:"environment" json:"environment"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
}

// CreateActionRequest is the payload for defining an action.
type CreateActionRequest struct {
	Name            string `json:"name" binding:"required"`
	DefaultDelivery string `json:"defaultDelivery"`
}

// CreateTransactionRequest is the payload for starting a transaction.
type CreateTransactionRequest struct {
	ActionID    string          `json:"actionId" binding:"required"`
	Environment EnvironmentType `json:"environment"`
}
