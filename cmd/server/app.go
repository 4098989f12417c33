package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"invitationadmin/config"
	"invitationadmin/internal/adapters/auth"
	"invitationadmin/internal/adapters/email"
	httpdelivery "invitationadmin/internal/delivery/http"
	"invitationadmin/internal/delivery/http/controllers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/lib/sl"
	"invitationadmin/internal/repository/postgres"
	"invitationadmin/internal/services"
	"invitationadmin/internal/slug"
)

const shutdownTimeout = 15 * time.Second

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
}

func newApp(ctx context.Context) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := config.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", sl.Err(err))
	}
}

func (a *app) migrateUp(cmd *cobra.Command) error {
	if err := postgres.Migrate(cmd.Context(), a.db); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	a.logger.Info("migrations applied")
	return nil
}

func (a *app) migrateDown(cmd *cobra.Command) error {
	if err := postgres.MigrateDown(cmd.Context(), a.db); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	a.logger.Info("latest migration rolled back")
	return nil
}

func (a *app) migrationStatus(cmd *cobra.Command) error {
	return postgres.MigrationStatus(cmd.Context(), a.db)
}

func (a *app) createAdmin(cmd *cobra.Command, emailAddr, password, name string) error {
	svc := services.NewAdminAuthService(
		postgres.NewAdminUserRepository(a.db),
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(a.cfg.AdminJWTSecret),
		a.cfg.AdminTokenExpiry,
		a.logger,
		a.cfg.RequestTimeout,
	)
	admin, err := svc.CreateAdmin(cmd.Context(), emailAddr, password, name)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger := a.cfg, a.logger
	if migrate {
		if err := postgres.Migrate(ctx, a.db); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}

	// Repositories
	invitationRepo := postgres.NewInvitationRepository(a.db)
	templateRepo := postgres.NewTemplateRepository(a.db)
	userRepo := postgres.NewUserRepository(a.db)
	resellerRepo := postgres.NewResellerRepository(a.db)
	guestRepo := postgres.NewGuestRepository(a.db)
	adminRepo := postgres.NewAdminUserRepository(a.db)
	analyticsRepo := postgres.NewAnalyticsRepository(a.db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mail.AWSRegion,
			AccessKeyID:     cfg.Mail.AWSAccessKeyID,
			SecretAccessKey: cfg.Mail.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	logger.Info("mailer configured",
		slog.String("provider", cfg.Mail.Provider),
		sl.Secret("aws_access_key_id", cfg.Mail.AWSAccessKeyID),
	)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	hasher := auth.NewBcryptHasher(0)

	// Services
	tracker := services.NewViewTracker(invitationRepo, analyticsRepo, logger, cfg.ViewTrackerBuffer, cfg.RequestTimeout)
	tracker.Start()
	defer tracker.Close()

	invitationService := services.NewInvitationService(
		invitationRepo,
		templateRepo,
		slug.NewGenerator(invitationRepo, logger),
		tracker,
		logger,
		services.InvitationOptions{Timeout: cfg.RequestTimeout, RequireCompleteOnPublish: cfg.PublishRequireComplete},
	)
	userService := services.NewUserService(services.UserDeps{
		Users:        userRepo,
		Resellers:    resellerRepo,
		Hasher:       hasher,
		Tokens:       auth.NewJWTIssuer(cfg.JWTSecret),
		TokenExpiry:  cfg.TokenExpiry,
		EmailService: emailService,
		Logger:       logger,
		Timeout:      cfg.RequestTimeout,
	})
	adminService := services.NewAdminAuthService(adminRepo, hasher, auth.NewJWTIssuer(cfg.AdminJWTSecret), cfg.AdminTokenExpiry, logger, cfg.RequestTimeout)
	guestService := services.NewGuestService(services.GuestDeps{
		Guests:        guestRepo,
		Invitations:   invitationRepo,
		Analytics:     analyticsRepo,
		EmailService:  emailService,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
		Timeout:       cfg.RequestTimeout,
	})
	templateService := services.NewTemplateService(templateRepo, cfg.RequestTimeout)
	resellerService := services.NewResellerService(resellerRepo, logger, cfg.RequestTimeout)

	// HTTP
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cookies := controllers.CookieOptions{Secure: cfg.CookieSecure}

	// Each side also verifies the other secret so a valid token with the wrong role gets 403, not 401.
	userTokens := auth.NewJWTVerifier(cfg.JWTSecret)
	adminTokens := auth.NewJWTVerifier(cfg.AdminJWTSecret)
	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:            logger,
		Metrics:           middleware.NewMetrics(reg),
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		AuthRateLimit:     cfg.AuthRateLimit,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Ping:              a.db.PingContext,
		UserTokens:        auth.NewMultiVerifier(userTokens, adminTokens),
		AdminTokens:       auth.NewMultiVerifier(adminTokens, userTokens),
		Users:             controllers.NewUserController(logger, userService, cookies, cfg.TokenExpiry),
		AdminAuth:         controllers.NewAdminAuthController(logger, adminService, cookies),
		Invitations:       controllers.NewInvitationController(logger, invitationService),
		AdminInvitations:  controllers.NewAdminInvitationController(logger, invitationService),
		Guests:            controllers.NewGuestController(logger, guestService),
		Public:            controllers.NewPublicController(logger, invitationService, guestService),
		Templates:         controllers.NewTemplateController(logger, templateService),
		Resellers:         controllers.NewResellerController(logger, resellerService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr), slog.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
