package repository

import (
	accessRepo "tenantdesk/database/repository/access"
	environmentRepo "tenantdesk/database/repository/environment"
	notificationRepo "tenantdesk/database/repository/notification"
	organizationRepo "tenantdesk/database/repository/organization"
	transactionRepo "tenantdesk/database/repository/transaction"
	userRepo "tenantdesk/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	UserRepository         = userRepo.UserRepository
	OrganizationRepository = organizationRepo.OrganizationRepository
	AccessRepository       = accessRepo.AccessRepository
	InvitationRepository   = accessRepo.InvitationRepository
	EnvironmentRepository  = environmentRepo.EnvironmentRepository
	TransactionRepository  = transactionRepo.TransactionRepository
	NotificationRepository = notificationRepo.NotificationRepository
)

// Repositories is every collection the application reads or writes.
type Repositories struct {
	Users         UserRepository
	Organizations OrganizationRepository
	Access        AccessRepository
	Invitations   InvitationRepository
	Environments  EnvironmentRepository
	Transactions  TransactionRepository
	Notifications NotificationRepository
}

// NewMongoRepositories builds the Mongo repositories on db, creating their
// indexes.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:         userRepo.NewMongoUserRepo(db),
		Organizations: organizationRepo.NewMongoOrganizationRepo(db),
		Access:        accessRepo.NewMongoAccessRepo(db),
		Invitations:   accessRepo.NewMongoInvitationRepo(db),
		Environments:  environmentRepo.NewMongoEnvironmentRepo(db),
		Transactions:  transactionRepo.NewMongoTransactionRepo(db),
		Notifications: notificationRepo.NewMongoNotificationRepo(db),
	}
}
