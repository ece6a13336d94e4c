package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventboard/config"
	"eventboard/internal/adapters/auth"
	"eventboard/internal/adapters/email"
	"eventboard/internal/adapters/storage"
	deliveryhttp "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/domain"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

// @title eventboard API
// @version 1.0
// @description Events feed backend: create, list, update and delete events with their flyers and photos.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := postgres.Open(startCtx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(startCtx, db); err != nil {
		return err
	}

	store, assetsDir, err := newMediaStore(cfg.Media)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mail.SESRegion,
			AccessKeyID:     cfg.Mail.SESAccessKeyID,
			SecretAccessKey: cfg.Mail.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRepo := postgres.NewEventRepository(db)
	mediaService := services.NewMediaService(store, logger)
	eventService := services.NewEventService(eventRepo, mediaService, logger, services.EventServiceOptions{
		Location:       cfg.Location,
		ContextTimeout: cfg.ContextTimeout,
		Email:          emailService,
		AnnounceTo:     cfg.Mail.AnnounceTo,
		MediaBaseURL:   cfg.Media.BaseURL,
	})

	eventController := controllers.NewEventController(logger, eventService, cfg.Media.BaseURL, cfg.Media.MaxUploadBytes)
	handler := deliveryhttp.NewRouter(eventController, auth.NewJWTVerifier(cfg.JWTSecret), logger, deliveryhttp.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		AssetsDir:      assetsDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "media_backend", cfg.Media.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// newMediaStore builds the configured store. The returned directory is non-empty for the local backend.
func newMediaStore(cfg config.MediaConfig) (domain.MediaStore, string, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3Store(storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		}), "", nil
	}
	local, err := storage.NewLocalStore(cfg.Root)
	if err != nil {
		return nil, "", err
	}
	return local, local.Root(), nil
}
