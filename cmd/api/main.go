// @title Event Management API
// @version 1.0
// @description Events, categories, RSVPs and role-based administration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventmanager/config"
	_ "eventmanager/docs"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/adapters/email"
	delivery "eventmanager/internal/delivery/http"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/domain"
	"eventmanager/internal/repository/memory"
	"eventmanager/internal/repository/postgres"
	"eventmanager/internal/services"
)

type repositories struct {
	users        domain.UserRepository
	groups       domain.GroupRepository
	categories   domain.CategoryRepository
	events       domain.EventRepository
	participants domain.ParticipantRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.Region,
			AccessKeyID:        cfg.Email.AccessKeyID,
			SecretAccessKey:    cfg.Email.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("mailer", "err", err)
		os.Exit(1)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("email templates", "err", err)
		os.Exit(1)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewJWTAuthority(cfg.JWTSecret, cfg.JWTExpiry)
	activation := auth.NewActivationTokens(cfg.ActivationSecret, cfg.ActivationTokenTTL)
	resets := auth.NewPasswordResetTokens(cfg.ActivationSecret, cfg.PasswordResetTTL)
	emailSvc := services.NewEmailService(mailer, renderer, logger)

	if err := bootstrap(ctx, cfg.Bootstrap, services.NewSeeder(
		repos.users, repos.groups, repos.categories, repos.events, hasher, logger,
	)); err != nil {
		logger.Error("bootstrap", "err", err)
		os.Exit(1)
	}

	authSvc := services.NewAuthService(repos.users, repos.groups, hasher, tokens, activation, resets, emailSvc, cfg.SiteURL, logger)
	eventSvc := services.NewEventService(repos.events, repos.categories, repos.participants)
	rsvpSvc := services.NewRSVPService(repos.events, repos.participants, repos.users, emailSvc, cfg.NotifyTimeout, logger)
	dashboardSvc := services.NewDashboardService(repos.events, repos.users, repos.categories, repos.groups)

	handler := delivery.NewHandler(delivery.HandlerConfig{
		Logger:         logger,
		Verifier:       tokens,
		Identity:       services.NewIdentityProvider(repos.users, repos.groups),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, delivery.Controllers{
		Auth:     controllers.NewAuthController(logger, authSvc),
		Event:    controllers.NewEventController(logger, eventSvc),
		Category: controllers.NewCategoryController(logger, services.NewCategoryService(repos.categories)),
		RSVP:     controllers.NewRSVPController(logger, rsvpSvc),
		User:     controllers.NewUserController(logger, services.NewUserService(repos.users, repos.groups)),
		Admin:    controllers.NewAdminController(logger, services.NewGroupService(repos.groups), dashboardSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ContextTimeout,
		ReadTimeout:       2 * cfg.ContextTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ContextTimeout+cfg.NotifyTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// bootstrap creates the configured administrator and the optional sample
// catalogue. Both steps are safe to repeat on every start.
func bootstrap(ctx context.Context, cfg config.BootstrapConfig, seeder *services.Seeder) error {
	if cfg.AdminUsername != "" {
		if _, err := seeder.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}
	if cfg.SeedSampleData {
		return seeder.SeedSampleData(ctx)
	}
	return nil
}

// openRepositories builds the repositories for the configured storage driver.
// The returned close func releases the database pool, if any.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, func(), error) {
	if cfg.StorageDriver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			groups:       store.Groups(),
			categories:   store.Categories(),
			events:       store.Events(),
			participants: store.Participants(),
		}, func() {}, nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 3*cfg.ContextTimeout)
	defer cancel()
	db, err := postgres.Open(openCtx, cfg.DBUrl)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(openCtx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &repositories{
		users:        postgres.NewUserRepository(db),
		groups:       postgres.NewGroupRepository(db),
		categories:   postgres.NewCategoryRepository(db),
		events:       postgres.NewEventRepository(db),
		participants: postgres.NewParticipantRepository(db),
	}, func() { closeDB(db, logger) }, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("close database", "err", err)
	}
}
