package models

import "time"

// DeliveryMethod is the channel a delivery is sent through.
type DeliveryMethod string

const (
	DeliveryEmail DeliveryMethod = "EMAIL"
	DeliverySlack DeliveryMethod = "SLACK"
)

// DeliveryMethods lists every method; dispatch handlers must cover all of them.
var DeliveryMethods = []DeliveryMethod{DeliveryEmail, DeliverySlack}

// Valid reports whether m is a known delivery method.
func (m DeliveryMethod) Valid() bool {
	for _, known := range DeliveryMethods {
		if m == known {
			return true
		}
	}
	return false
}

// MethodPtr is a convenience for optional method fields.
func MethodPtr(m DeliveryMethod) *DeliveryMethod {
	return &m
}

// DeliveryStatus is the lifecycle of a single delivery row.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

// NotificationInstruction asks for one delivery. An empty method is resolved
// at dispatch time.
type NotificationInstruction struct {
	Destination string          `bson:"destination" json:"destination"`
	Method      *DeliveryMethod `bson:"method,omitempty" json:"method,omitempty"`
}

// NotificationDelivery is one persisted delivery attempt. It is created
// PENDING and written exactly once to DELIVERED or FAILED.
type NotificationDelivery struct {
	ID             string          `bson:"id" json:"id"`
	NotificationID string          `bson:"notificationId" json:"notificationId"`
	Destination    string          `bson:"destination" json:"destination"`
	Method         *DeliveryMethod `bson:"method,omitempty" json:"method,omitempty"`
	Status         DeliveryStatus  `bson:"status" json:"status"`
	Error          string          `bson:"error,omitempty" json:"error,omitempty"`
	UserID         string          `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Notification is the logical message fanned out to its deliveries.
type Notification struct {
	ID             string                 `bson:"id" json:"id"`
	Message        string                 `bson:"message" json:"message"`
	Title          string                 `bson:"title,omitempty" json:"title,omitempty"`
	OrganizationID string                 `bson:"organizationId" json:"organizationId"`
	Environment    EnvironmentType        `bson:"environment" json:"environment"`
	TransactionID  string                 `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	IdempotencyKey string                 `bson:"idempotencyKey,omitempty" json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time              `bson:"createdAt" json:"createdAt"`
	Deliveries     []NotificationDelivery `bson:"-" json:"deliveries"`
}

// CreateNotificationRequest is the HTTP payload for recording a notification.
type CreateNotificationRequest struct {
	Message        string                    `json:"message" binding:"required"`
	Title          string                    `json:"title"`
	Environment    EnvironmentType           `json:"environment"`
	TransactionID  string                    `json:"transactionId"`
	Deliveries     []NotificationInstruction `json:"deliveries"`
	IdempotencyKey string                    `json:"idempotencyKey"`
}

// DeliveryFailure describes one failed delivery for the owner escalation
// message.
type DeliveryFailure struct {
	Destination string         `json:"destination"`
	Method      DeliveryMethod `json:"method,omitempty"`
	Error       string         `json:"error"`
}

// DeliveryTaskPayload is the queued unit of work for processing a notification.
type DeliveryTaskPayload struct {
	NotificationID string `json:"notificationId"`
}

// TransactionSignal is published to real-time subscribers of a transaction.
type TransactionSignal struct {
	TransactionID  string    `json:"transactionId"`
	NotificationID string    `json:"notificationId"`
	Title          string    `json:"title,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}
