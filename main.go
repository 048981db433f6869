// File: bookline/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"bookline/config"
	"bookline/cron"
	"bookline/database"
	appointmentRepo "bookline/database/repository/appointment"
	reliabilityRepo "bookline/database/repository/reliability"
	slotRepo "bookline/database/repository/slot"
	"bookline/handlers"
	"bookline/middleware"
	"bookline/routes"
	"bookline/services/booking"
	"bookline/services/conversation"
	"bookline/services/guard"
	ai "bookline/services/intelligence"
	"bookline/services/intent"
	"bookline/services/messenger"
	"bookline/services/reminder"
	"bookline/services/session"
	"bookline/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	loc := config.Location()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitGuardCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	reliability := reliabilityRepo.NewMongoReliabilityRepo()

	for name, ensure := range map[string]func() error{
		"slots":        slots.EnsureIndexes,
		"appointments": appointments.EnsureIndexes,
		"reliability":  reliability.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// Outbound transport with typing-delay shaping.
	var transport messenger.Messenger
	if config.AppConfig.OutboundWebhookURL != "" {
		transport = messenger.NewHTTPSender(config.AppConfig.OutboundWebhookURL)
	} else {
		logger.Warn("main: no outbound webhook configured, using log transport")
		transport = messenger.LogSender{}
	}
	typing := &messenger.TypingSender{
		Transport: transport,
		MinDelay:  time.Duration(config.AppConfig.TypingDelayMinMs) * time.Millisecond,
		MaxDelay:  time.Duration(config.AppConfig.TypingDelayMaxMs) * time.Millisecond,
	}

	// Reminder queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := reminder.NewScheduler(asynqClient, config.AppConfig.ReminderLeadMin, loc)

	// services.
	sessions := session.NewStore(utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionIdleMin)*time.Minute)

	gatekeeper := &guard.Guard{
		Reliability:    reliability,
		Cache:          utils.GetGuardCacheClient(),
		BlockThreshold: config.AppConfig.NoShowBlockCount,
	}

	bookingManager := &booking.Manager{
		Appointments: appointments,
		Blocked:      slots,
		Reminders:    reminderScheduler,
		StepMin:      config.AppConfig.SlotStepMin,
		Loc:          loc,
	}

	var aiClient ai.Client
	if config.AppConfig.GeminiAPIKey != "" {
		aiClient = ai.NewGeminiClient(config.AppConfig.GeminiAPIKey)
	} else {
		logger.Warn("main: no Gemini API key configured, intent routing is rules-only")
	}

	engine := &conversation.Engine{
		Slots:         slots,
		Appointments:  appointments,
		Sessions:      sessions,
		Router:        intent.NewRouter(aiClient),
		Guard:         gatekeeper,
		Booking:       bookingManager,
		Messenger:     typing,
		Loc:           loc,
		DisclosureMin: config.AppConfig.DisclosureWindowMin,
	}

	// Reminder delivery: queue worker plus the catch-up sweep.
	reminderSender := &reminder.Sender{
		Appointments: appointments,
		Slots:        slots,
		Sessions:     sessions,
		Messenger:    typing,
		Loc:          loc,
	}
	cron.InitReminderWorker(reminderSender)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := &reminder.Sweeper{
		Due:      appointments,
		Sender:   reminderSender,
		LeadMin:  config.AppConfig.ReminderLeadMin,
		Interval: time.Duration(config.AppConfig.ReminderSweepSec) * time.Second,
		Loc:      loc,
	}
	go sweeper.Run(sweepCtx)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Webhook:      handlers.NewWebhookHandler(engine),
		Admin:        handlers.NewAdminHandler(appointments, reliability, gatekeeper, sessions, typing),
		Slots:        handlers.NewSlotHandler(slots),
		Availability: handlers.NewAvailabilityHandler(slots, bookingManager, loc),
	}

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

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
