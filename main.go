package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenantdesk/config"
	"tenantdesk/cron"
	"tenantdesk/database"
	"tenantdesk/database/repository"
	"tenantdesk/handlers"
	"tenantdesk/middleware"
	"tenantdesk/routes"
	"tenantdesk/services/auth"
	"tenantdesk/services/email"
	"tenantdesk/services/environment"
	"tenantdesk/services/featureflag"
	"tenantdesk/services/notification"
	"tenantdesk/services/organization"
	"tenantdesk/services/realtime"
	"tenantdesk/services/slack"
	"tenantdesk/services/tasks"
	"tenantdesk/services/transaction"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	database.InitDB()
	utils.InitCache()
	cache := utils.GetCacheClient()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	repos := repository.NewMongoRepositories(database.DB())

	// external collaborators.
	mailer, err := email.NewSMTPSender(config.AppConfig, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize email sender: %v", err)
	}
	slackClient := slack.NewAPIClient(config.AppConfig.SlackAPIURL, logger)
	flags := featureflag.NewRedisChecker(cache, config.DefaultFeatureFlags(), logger)

	queueClient := asynq.NewClient(cron.RedisOpt())
	defer queueClient.Close()

	// services.
	environmentService := &environment.DefaultEnvironmentService{
		Repo: repos.Environments,
	}
	organizationService := &organization.DefaultOrganizationService{
		Repo:         repos.Organizations,
		Access:       repos.Access,
		Invitations:  repos.Invitations,
		Users:        repos.Users,
		Environments: environmentService,
		Email:        mailer,
		Slack:        slackClient,
		AppBaseURL:   config.AppConfig.AppBaseURL,
	}
	authService := &auth.DefaultAuthService{
		Users:         repos.Users,
		Organizations: organizationService,
		IdP:           auth.NewOAuth2Provider(config.AppConfig),
		Flags:         flags,
		Cache:         cache,
		TokenTTL:      config.AppConfig.TokenTTL,
	}
	transactionService := &transaction.DefaultTransactionService{
		Repo: repos.Transactions,
	}
	notificationService, err := notification.NewDefaultNotificationService(notification.Deps{
		Notifications: repos.Notifications,
		Organizations: repos.Organizations,
		Users:         repos.Users,
		Transactions:  repos.Transactions,
		Email:         mailer,
		Slack:         slackClient,
		Flags:         flags,
		Queue:         tasks.NewAsynqQueue(queueClient),
		Signaler:      realtime.NewRedisSignaler(cache),
		AppBaseURL:    config.AppConfig.AppBaseURL,
		Logger:        logger,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	worker, err := cron.InitDeliveryWorker(notificationService, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start delivery worker: %v", err)
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, cache, database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAuthHandler(authService, config.IsProduction()),
		handlers.NewOrganizationHandler(organizationService),
		handlers.NewEnvironmentHandler(environmentService),
		handlers.NewTransactionHandler(transactionService),
		handlers.NewNotificationHandler(notificationService),
	)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	// Stop pulling new deliveries and let running ones finish.
	worker.Shutdown()
	notificationService.Close()

	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect from MongoDB: %v", err)
	}
	logger.Sugar().Info("main: server stopped gracefully")
}
