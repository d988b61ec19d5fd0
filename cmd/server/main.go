package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"skillswap/backend/internal/config"
	"skillswap/backend/internal/escalation"
	"skillswap/backend/internal/gateway"
	"skillswap/backend/internal/handler"
	"skillswap/backend/internal/pubsub"
	"skillswap/backend/internal/realtime"
	"skillswap/backend/internal/repository"
	"skillswap/backend/internal/service"
	"skillswap/backend/pkg/auth"
	"skillswap/backend/pkg/db"
	"skillswap/backend/pkg/helpers"
	"skillswap/backend/pkg/logger"
	"skillswap/backend/pkg/metrics"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.NewLogger("skillswap-api")
	log.Info("Starting SkillSwap API...")

	cfg := config.Load()

	database, err := db.NewConnection(db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Database,
		ConnectRetries: cfg.Database.ConnectRetries,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()
	log.Info("Database connected")

	schemaGuard := db.NewSchemaGuard(database.DB)
	if err := schemaGuard.Validate(context.Background(), []db.Table{
		{Name: "users", Columns: []db.Column{
			{Name: "id", DataType: "bigint"},
			{Name: "external_id", DataType: "varchar"},
			{Name: "total_credits", DataType: "bigint"},
			{Name: "skill_coins", DataType: "bigint"},
		}},
		{Name: "sessions", Columns: []db.Column{
			{Name: "id", DataType: "bigint"},
			{Name: "teacher_id", DataType: "bigint"},
			{Name: "learner_id", DataType: "bigint"},
			{Name: "status", DataType: "varchar"},
		}},
		{Name: "ledger_entries", Columns: []db.Column{
			{Name: "id", DataType: "varchar"},
			{Name: "payment_ref", DataType: "varchar"},
		}},
		{Name: "suspicious_activity_incidents", Columns: []db.Column{
			{Name: "id", DataType: "bigint"},
			{Name: "warning_count", DataType: "int"},
		}},
	}); err != nil {
		log.WithError(err).Warn("Schema validation warning")
	}

	serviceMetrics := metrics.NewMetrics("api")
	idGen := helpers.NewIDGenerator()
	validator := helpers.NewCustomValidator()

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	ledgerRepo := repository.NewLedgerRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)
	notifRepo := repository.NewNotificationRepository(database.DB)
	incidentRepo := repository.NewIncidentRepository(database.DB)
	postRepo := repository.NewPostRepository(database.DB)
	orderRepo := repository.NewPaymentOrderRepository(database.DB)

	// Event publisher is optional: without Redis, escalation events stay local.
	var publisher escalation.Publisher
	var redisPub *pubsub.RedisPublisher
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisPub, err = pubsub.NewRedisPublisher(ctx, cfg.Redis.URL, cfg.Escalation.EventChannel, log)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, escalation events will not be published")
		} else {
			defer redisPub.Close()
			publisher = redisPub
		}
	}

	// Services
	userService := service.NewUserService(userRepo, cfg.Ledger.SignupBonus, cfg.Ledger.WelcomeMessage)
	ledgerService := service.NewLedgerService(ledgerRepo, idGen, cfg.Ledger.SkillCoinRate)
	sessionService := service.NewSessionService(sessionRepo)
	emailService := service.NewEmailService(service.NewLogEmailChannel(log))
	scheduler := service.NewScheduler()
	defer scheduler.Stop()

	// Realtime hub and escalation engine
	hub := realtime.NewHub(serviceMetrics, log)
	engine := escalation.NewEngine(incidentRepo, hub, publisher, idGen, serviceMetrics, log)

	bookingService := service.NewBookingService(
		sessionRepo,
		userRepo,
		notifRepo,
		ledgerService,
		emailService,
		scheduler,
		engine,
		service.BookingTimers{
			ReminderLead:    cfg.Booking.ReminderLead,
			AutoDeleteDelay: cfg.Booking.AutoDeleteDelay,
		},
		log,
	)
	hub.SetObserver(bookingService)

	notificationService := service.NewNotificationService(notifRepo)
	postService := service.NewPostService(postRepo)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:     cfg.Gateway.BaseURL,
		MerchantID:  cfg.Gateway.MerchantID,
		CallbackURL: cfg.Gateway.CallbackURL,
	})
	paymentService, err := service.NewPaymentService(orderRepo, gatewayClient, ledgerService, cfg.Gateway.CreditPrice, log)
	if err != nil {
		log.WithError(err).Fatal("Invalid payment configuration")
	}

	tokenValidator := auth.NewTokenValidator(cfg.Identity.JWTSecret, cfg.Identity.Issuer)

	router := handler.NewRouter(handler.RouterDeps{
		TokenValidator: tokenValidator,
		Users:          userService,
		Wallet:         handler.NewWalletHandler(ledgerService, userService),
		UserH:          handler.NewUserHandler(userService),
		Sessions:       handler.NewSessionHandler(sessionService, bookingService),
		Notifications:  handler.NewNotificationHandler(notificationService),
		Posts:          handler.NewPostHandler(postService),
		Payments:       handler.NewPaymentHandler(paymentService, cfg.Gateway.FrontendURL),
		Detections:     handler.NewDetectionHandler(engine, validator),
		WS:             handler.NewWSHandler(hub, sessionService),
		Logger:         log,
		Metrics:        serviceMetrics,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Report pool stats alongside request metrics.
	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-poolCtx.Done():
				return
			case <-ticker.C:
				stats := database.DB.Stats()
				serviceMetrics.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
			}
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Shutdown error")
		}
	}()

	log.WithField("port", cfg.Server.HTTPPort).Info("SkillSwap API started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Failed to serve")
	}
	log.Info("Shutdown complete")
}
