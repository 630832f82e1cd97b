package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	notificationRepo "tenantdesk/database/repository/notification"
	organizationRepo "tenantdesk/database/repository/organization"
	transactionRepo "tenantdesk/database/repository/transaction"
	userRepo "tenantdesk/database/repository/user"
	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/services/featureflag"
	"tenantdesk/services/slack"

	"go.uber.org/zap"
)

// NotificationService records notifications and fans them out to their
// deliveries.
type NotificationService interface {
	Record(ctx context.Context, req RecordRequest) ([]models.NotificationInstruction, error)
	ProcessNotification(ctx context.Context, notificationID string) error
	ProcessDeliveries(ctx context.Context, n *models.Notification) error
	// FailNotification durably fails whatever is still PENDING when delivery
	// processing is given up.
	FailNotification(ctx context.Context, notificationID, cause string) error
	GetNotification(ctx context.Context, organizationID, notificationID string) (*models.Notification, error)
}

// DeliveryQueue hands a recorded notification to the background worker.
type DeliveryQueue interface {
	Enqueue(ctx context.Context, notificationID string) error
}

// Signaler publishes real-time events for transaction-bound notifications.
type Signaler interface {
	SignalTransaction(ctx context.Context, signal models.TransactionSignal) error
}

// RecordRequest describes one notification to record.
type RecordRequest struct {
	Message       string
	Title         string
	Organization  *models.Organization
	Environment   models.EnvironmentType
	TransactionID string
	// Deliveries, when non-empty, replaces the default owner delivery.
	Deliveries     []models.NotificationInstruction
	IdempotencyKey string
	CreatedAt      time.Time
}

// Deps are the collaborators of DefaultNotificationService. Signaler may be nil.
type Deps struct {
	Notifications notificationRepo.NotificationRepository
	Organizations organizationRepo.OrganizationRepository
	Users         userRepo.UserRepository
	Transactions  transactionRepo.TransactionRepository
	Email         email.Sender
	Slack         slack.Client
	Flags         featureflag.Checker
	Queue         DeliveryQueue
	Signaler      Signaler
	AppBaseURL    string
	Logger        *zap.Logger
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	notifications notificationRepo.NotificationRepository
	organizations organizationRepo.OrganizationRepository
	users         userRepo.UserRepository
	transactions  transactionRepo.TransactionRepository
	queue         DeliveryQueue
	signaler      Signaler
	appBaseURL    string
	logger        *zap.Logger

	methodHandlers map[models.DeliveryMethod]deliveryHandler

	// background tracks real-time signals still in flight.
	background sync.WaitGroup
	now        func() time.Time
}

func NewDefaultNotificationService(deps Deps) (*DefaultNotificationService, error) {
	if deps.Notifications == nil || deps.Organizations == nil || deps.Users == nil || deps.Transactions == nil {
		return nil, fmt.Errorf("notification service initialization error: repositories are required")
	}
	if deps.Email == nil || deps.Slack == nil || deps.Flags == nil || deps.Queue == nil {
		return nil, fmt.Errorf("notification service initialization error: email, slack, flags and queue are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &DefaultNotificationService{
		notifications: deps.Notifications,
		organizations: deps.Organizations,
		users:         deps.Users,
		transactions:  deps.Transactions,
		queue:         deps.Queue,
		signaler:      deps.Signaler,
		appBaseURL:    deps.AppBaseURL,
		logger:        logger.Named("notification"),
		now:           time.Now,
	}
	s.methodHandlers = map[models.DeliveryMethod]deliveryHandler{
		models.DeliveryEmail: &emailHandler{sender: deps.Email},
		models.DeliverySlack: &slackHandler{client: deps.Slack, flags: deps.Flags},
	}
	for _, m := range models.DeliveryMethods {
		if _, ok := s.methodHandlers[m]; !ok {
			return nil, fmt.Errorf("notification service initialization error: no handler for delivery method %s", m)
		}
	}
	return s, nil
}

// Close waits for outstanding real-time signals.
func (s *DefaultNotificationService) Close() {
	s.background.Wait()
}
