// File: keja/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keja/config"
	"keja/cron"
	"keja/database"
	bookingRepoPkg "keja/database/repository/booking"
	commissionRepoPkg "keja/database/repository/commission"
	propertyRepoPkg "keja/database/repository/property"
	subscriptionRepoPkg "keja/database/repository/subscription"
	"keja/handlers"
	"keja/middleware"
	"keja/routes"
	"keja/services/booking"
	"keja/services/notification"
	"keja/services/payment"
	"keja/services/subscription"
	"keja/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	if err := bookingRepoPkg.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}
	if err := subscriptionRepoPkg.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create subscription indexes: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	subscriptionRepo := subscriptionRepoPkg.NewMongoSubscriptionRepo()
	commissionRepo := commissionRepoPkg.NewMongoCommissionRepo()
	propertyRepo := propertyRepoPkg.NewMongoPropertyRepo()

	// Background task queue shared by the emitter and the lifecycle.
	queueClient := asynq.NewClient(cron.RedisOpts())
	defer queueClient.Close()

	// Services.
	subscriptionService := &subscription.DefaultSubscriptionService{
		Repo:          subscriptionRepo,
		Logger:        logger,
		PremiumAmount: 2000,
	}

	gateway := payment.NewDarajaClient(payment.Credentials{
		ConsumerKey:    config.AppConfig.MpesaConsumerKey,
		ConsumerSecret: config.AppConfig.MpesaSecret,
		Shortcode:      config.AppConfig.MpesaShortcode,
		Passkey:        config.AppConfig.MpesaPasskey,
		CallbackURL:    config.AppConfig.MpesaCallbackURL,
		Environment:    config.AppConfig.MpesaEnv,
	}, logger)

	emitter := &notification.DefaultEmitter{
		Client: queueClient,
		Logger: logger,
	}

	bookingService := &booking.DefaultBookingService{
		Repo:            bookingRepo,
		PropertyRepo:    propertyRepo,
		CommissionRepo:  commissionRepo,
		SubscriptionSvc: subscriptionService,
		Gateway:         gateway,
		Notifier:        emitter,
		Queue:           &cron.TaskClient{Client: queueClient},
		Logger:          logger,
	}

	// Background worker: notifications, payment initiation, stale sweeps.
	dispatcher := &notification.DefaultDispatcher{
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}
	cron.StartWorker(bookingService, dispatcher)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Handlers.
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(bookingService, gateway, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, commissionRepo)

	handlerBundle := &handlers.HandlerBundle{
		CreateBooking:        bookingHandler.CreateBooking,
		GetBooking:           bookingHandler.GetBooking,
		ListLandlordBookings: bookingHandler.ListLandlordBookings,
		ListTenantBookings:   bookingHandler.ListTenantBookings,
		DecideBooking:        bookingHandler.DecideBooking,
		CancelBooking:        bookingHandler.CancelBooking,

		InitiatePayment:    paymentHandler.InitiatePayment,
		WaitForPayment:     paymentHandler.WaitForPayment,
		MpesaCallback:      paymentHandler.MpesaCallback,
		QueryPaymentStatus: paymentHandler.QueryPaymentStatus,

		GetSubscription:    subscriptionHandler.GetSubscription,
		UpgradeTier:        subscriptionHandler.Upgrade,
		CancelSubscription: subscriptionHandler.Cancel,
		ListCommissions:    subscriptionHandler.ListCommissions,
		CommissionSummary:  subscriptionHandler.CommissionSummary,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
