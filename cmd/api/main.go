package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/project-planner/internal/config"
	"github.com/fairyhunter13/project-planner/internal/generator"
	"github.com/fairyhunter13/project-planner/internal/handler"
	"github.com/fairyhunter13/project-planner/internal/logging"
	"github.com/fairyhunter13/project-planner/internal/metrics"
	"github.com/fairyhunter13/project-planner/internal/repository"
	"github.com/fairyhunter13/project-planner/internal/server"
	"github.com/fairyhunter13/project-planner/internal/service"
	appvalidator "github.com/fairyhunter13/project-planner/internal/validator"
	"github.com/fairyhunter13/project-planner/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Log)

	if cfg.Generator.APIKey == "" {
		log.Warn().Msg("GENERATOR_API_KEY is empty; generation requests will fail upstream")
	}
	if cfg.Auth.AdminKey == "" {
		log.Info().Msg("AUTH_ADMIN_KEY is empty; coupon admin routes are disabled")
	}

	ctx := context.Background()

	pool, err := database.Open(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	validate := appvalidator.New()
	gen := generator.NewOpenAIGenerator(cfg.Generator)

	couponRepo := repository.NewCouponRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	creationRepo := repository.NewCreationRepository(pool)

	couponService := service.NewCouponService(pool, couponRepo, redemptionRepo, accountRepo, cfg.Tokens.InitialGrant, m)
	generationService := service.NewGenerationService(pool, accountRepo, creationRepo, gen, cfg.Tokens.InitialGrant, m)

	app := server.New(server.Deps{
		Health:    handler.NewHealthHandler(pool, gen),
		Coupons:   handler.NewCouponHandler(couponService, validate),
		Planner:   handler.NewPlannerHandler(generationService, validate),
		Gatherer:  reg,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		AdminKey:  cfg.Auth.AdminKey,
		AccessLog: true,
	})

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// The pool outlives the server so in-flight requests can finish their transactions.
	pool.Close()
	log.Info().Msg("server stopped")
}
