package handlers

import (
	"tenantdesk/services/auth"
	"tenantdesk/services/organization"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth and Orgs back the authentication and organization access middleware.
	Auth auth.AuthService
	Orgs organization.OrganizationService

	// Auth endpoints
	RegisterHandler    gin.HandlerFunc
	LoginHandler       gin.HandlerFunc
	SSOLoginHandler    gin.HandlerFunc
	SSOCallbackHandler gin.HandlerFunc
	LogoutHandler      gin.HandlerFunc
	MeHandler          gin.HandlerFunc

	// Organization endpoints
	CreateOrganizationHandler    gin.HandlerFunc
	ListOrganizationsHandler     gin.HandlerFunc
	GetOrganizationHandler       gin.HandlerFunc
	ListMembersHandler           gin.HandlerFunc
	InviteHandler                gin.HandlerFunc
	AcceptInvitationHandler      gin.HandlerFunc
	ConnectSlackHandler          gin.HandlerFunc
	DisconnectSlackHandler       gin.HandlerFunc
	ListSlackChannelsHandler     gin.HandlerFunc
	SetNotificationMethodHandler gin.HandlerFunc

	// Environment endpoints
	CreateEnvironmentHandler gin.HandlerFunc
	ListEnvironmentsHandler  gin.HandlerFunc

	// Action and transaction endpoints
	CreateActionHandler      gin.HandlerFunc
	CreateTransactionHandler gin.HandlerFunc
	GetTransactionHandler    gin.HandlerFunc

	// Notification endpoints
	RecordNotificationHandler gin.HandlerFunc
	GetNotificationHandler    gin.HandlerFunc
}

// NewHandlerBundle wires the per-area handlers into a bundle.
func NewHandlerBundle(
	authH *AuthHandler,
	orgH *OrganizationHandler,
	envH *EnvironmentHandler,
	txH *TransactionHandler,
	notifH *NotificationHandler,
) *HandlerBundle {
	return &HandlerBundle{
		Auth: authH.Auth,
		Orgs: orgH.Orgs,

		RegisterHandler:    authH.RegisterHandler,
		LoginHandler:       authH.LoginHandler,
		SSOLoginHandler:    authH.SSOLoginHandler,
		SSOCallbackHandler: authH.SSOCallbackHandler,
		LogoutHandler:      authH.LogoutHandler,
		MeHandler:          authH.MeHandler,

		CreateOrganizationHandler:    orgH.CreateOrganizationHandler,
		ListOrganizationsHandler:     orgH.ListOrganizationsHandler,
		GetOrganizationHandler:       orgH.GetOrganizationHandler,
		ListMembersHandler:           orgH.ListMembersHandler,
		InviteHandler:                orgH.InviteHandler,
		AcceptInvitationHandler:      orgH.AcceptInvitationHandler,
		ConnectSlackHandler:          orgH.ConnectSlackHandler,
		DisconnectSlackHandler:       orgH.DisconnectSlackHandler,
		ListSlackChannelsHandler:     orgH.ListSlackChannelsHandler,
		SetNotificationMethodHandler: orgH.SetNotificationMethodHandler,

		CreateEnvironmentHandler: envH.CreateEnvironmentHandler,
		ListEnvironmentsHandler:  envH.ListEnvironmentsHandler,

		CreateActionHandler:      txH.CreateActionHandler,
		CreateTransactionHandler: txH.CreateTransactionHandler,
		GetTransactionHandler:    txH.GetTransactionHandler,

		RecordNotificationHandler: notifH.RecordNotificationHandler,
		GetNotificationHandler:    notifH.GetNotificationHandler,
	}
}
