// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/admission"
	"github.com/eventnav/program-service/internal/assistant"
	"github.com/eventnav/program-service/internal/auth"
	"github.com/eventnav/program-service/internal/cache"
	"github.com/eventnav/program-service/internal/config"
	"github.com/eventnav/program-service/internal/database"
	"github.com/eventnav/program-service/internal/handler"
	"github.com/eventnav/program-service/internal/jobs"
	"github.com/eventnav/program-service/internal/logger"
	"github.com/eventnav/program-service/internal/repository"
	"github.com/eventnav/program-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	if err := database.Migrate(cfg.Database, log); err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCache, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
	if err != nil {
		return err
	}
	defer func() { _ = redisCache.Close() }()

	// Repositories.
	eventRepo := repository.NewEventRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	speakerRepo := repository.NewSpeakerRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	zoneRepo := repository.NewZoneRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)

	// Admission core.
	admissionStore := repository.NewAdmissionStore(pool)
	controller := admission.NewController(admissionStore, log)

	// Services.
	catalogSvc := service.NewCatalogService(eventRepo, sessionRepo, speakerRepo, locationRepo, zoneRepo, moduleRepo, newsRepo, redisCache, log)
	regSvc := service.NewRegistrationService(controller, regRepo, sessionRepo, redisCache, log)

	var llm assistant.LLM
	if client := assistant.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens); client != nil {
		llm = client
	} else {
		log.Warn("no OpenAI key configured, assistant runs degraded")
	}
	assistantSvc := service.NewAssistantService(eventRepo, sessionRepo, speakerRepo, locationRepo, knowledgeRepo, llm, cfg.OpenAI.RatePerMin, log)

	// Identity.
	validator := auth.NewTelegramValidator(cfg.Telegram.BotToken, cfg.Telegram.MaxAge)
	admin := auth.NewAdminAuth(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.SecretKey, cfg.Admin.TokenExpiry)

	// Background maintenance.
	scheduler := jobs.NewScheduler(eventRepo, sessionRepo, regSvc, assistantSvc, log)
	if err := scheduler.Start(cfg.Jobs.ReconcileSpec, cfg.Jobs.KnowledgeSpec); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := handler.NewRouter(handler.Deps{
		Catalog:      handler.NewCatalogHandler(catalogSvc),
		Registration: handler.NewRegistrationHandler(regSvc),
		Assistant:    handler.NewAssistantHandler(assistantSvc),
		Auth:         handler.NewAuthHandler(validator, userRepo, admin, log),
		Validator:    validator,
		Users:        userRepo,
		Admin:        admin,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
