package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"booking-api/internal/app"
	"booking-api/internal/audit"
	"booking-api/internal/availability"
	"booking-api/internal/booking"
	"booking-api/internal/calendar"
	"booking-api/internal/config"
	"booking-api/internal/notify"
	"booking-api/internal/server"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		logger.Fatal("failed to read calendar credentials", zap.Error(err))
	}
	gateway, err := calendar.NewGoogle(ctx, creds, cfg.CalendarID)
	if err != nil {
		logger.Fatal("failed to build calendar gateway", zap.Error(err))
	}

	var recorder audit.Recorder = audit.Nop{}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()
		recorder = audit.NewPGRecorder(pool)
	}

	notifier := notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.OwnerEmail)

	availSvc := availability.NewService(gateway, cfg.Policy(), cfg.Rule(), logger)
	bookSvc := booking.NewService(gateway, availSvc, cfg.Policy(), cfg.Rule(), notifier, recorder, logger)

	appInstance := &app.App{
		Availability: availSvc,
		Booking:      bookSvc,
		Mailer:       notifier,
		OwnerEmail:   cfg.OwnerEmail,
		Timeout:      cfg.CalendarTimeout,
		Log:          logger,
	}

	router := gin.Default()
	appInstance.Routes(router)

	server.Run(router, cfg.Port)
}
