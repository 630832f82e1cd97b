package routes

import (
	"net/http"
	"time"

	"tenantdesk/handlers"
	"tenantdesk/middleware"
	"tenantdesk/models"
	"tenantdesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers sign-up, sign-in and SSO endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/login", hb.LoginHandler)
		api.GET("/sso/login", hb.SSOLoginHandler)
		api.GET("/sso/callback", hb.SSOCallbackHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		protected.POST("/logout", hb.LogoutHandler)
		protected.GET("/me", hb.MeHandler)
	}
}

// RegisterOrganizationRoutes registers organization endpoints and everything
// scoped under an organization slug.
func RegisterOrganizationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/orgs")
	api.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
	{
		api.POST("", hb.CreateOrganizationHandler)
		api.GET("", hb.ListOrganizationsHandler)

		org := api.Group("/:orgSlug")
		org.Use(middleware.OrgAccessMiddleware(hb.Orgs))
		org.GET("", hb.GetOrganizationHandler)
		org.GET("/members", hb.ListMembersHandler)

		org.GET("/environments", hb.ListEnvironmentsHandler)
		org.POST("/environments", hb.CreateEnvironmentHandler)

		org.POST("/actions", hb.CreateActionHandler)
		org.POST("/transactions", hb.CreateTransactionHandler)
		org.GET("/transactions/:id", hb.GetTransactionHandler)

		org.POST("/notifications", hb.RecordNotificationHandler)
		org.GET("/notifications/:id", hb.GetNotificationHandler)

		org.GET("/slack/channels", hb.ListSlackChannelsHandler)

		// Owner-only settings.
		owner := org.Group("")
		owner.Use(middleware.RequireOrgRole(models.RoleOwner))
		owner.POST("/invitations", hb.InviteHandler)
		owner.PUT("/slack", hb.ConnectSlackHandler)
		owner.DELETE("/slack", hb.DisconnectSlackHandler)
		owner.PUT("/settings/notification-method", hb.SetNotificationMethodHandler)
	}
}

// RegisterInvitationRoutes registers invitation acceptance.
func RegisterInvitationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/invitations")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		api.POST("/:id/accept", hb.AcceptInvitationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// periodic dependency monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm tenantdesk"})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterOrganizationRoutes(r, hb)
	RegisterInvitationRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
