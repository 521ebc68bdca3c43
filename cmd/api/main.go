package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventplanner/config"
	_ "eventplanner/docs"
	"eventplanner/internal/adapters/assets"
	"eventplanner/internal/adapters/auth"
	"eventplanner/internal/adapters/email"
	delivery "eventplanner/internal/delivery/http"
	"eventplanner/internal/delivery/http/controllers"
	"eventplanner/internal/delivery/http/middleware"
	"eventplanner/internal/realtime"
	"eventplanner/internal/repository/postgres"
	"eventplanner/internal/services"
)

const (
	serviceTimeout    = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
	bcryptCost        = 12
)

// @title Event Planner API
// @version 1.0
// @description Collaborative event planning backend: events, collaborations, invitations, RSVPs, and realtime updates.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	collabRepo := postgres.NewCollaborationRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)

	hasher := auth.NewBcryptHasher(bcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	emailService := services.NewEmailService(mailer, renderer, logger)

	assetStore := assets.NewStore(cfg.AssetProvider, cfg.AssetBaseDir, logger)
	hub := realtime.NewHub(logger)

	userService := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry, logger, serviceTimeout)
	eventService := services.NewEventService(eventRepo, collabRepo, assetStore, logger, serviceTimeout)
	membershipService := services.NewMembershipService(eventRepo, collabRepo, invitationRepo, userRepo,
		hub, emailService, cfg.InviteLinkBaseURL, logger, serviceTimeout)
	attendanceService := services.NewAttendanceService(eventRepo, collabRepo, invitationRepo, rsvpRepo,
		userRepo, hub, logger, serviceTimeout)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, userService),
		Event:         controllers.NewEventController(logger, eventService),
		Collaboration: controllers.NewCollaborationController(logger, membershipService),
		Invitation:    controllers.NewInvitationController(logger, membershipService),
		RSVP:          controllers.NewRSVPController(logger, attendanceService),
	}, verifier, realtime.Handler(hub, verifier, eventService), logger)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
