package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/memory"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/manufactura-api/internal/interfaces/http"
	"github.com/jhoicas/manufactura-api/pkg/config"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.MigrateOnStart {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		runner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
		txRunner, repos = runner, runner.Repos()
	}

	minThreshold := decimal.Zero
	if cfg.Ledger.DefaultMinThreshold != "" {
		minThreshold, err = decimal.NewFromString(cfg.Ledger.DefaultMinThreshold)
		if err != nil {
			log.Fatal().Err(err).Msg("LEDGER_DEFAULT_MIN_THRESHOLD inválido")
		}
	}

	metrics := inventory.NewMetrics(prometheus.DefaultRegisterer)
	ledger := inventory.NewLedger(txRunner, repos, inventory.Options{
		Logger:               log,
		Metrics:              metrics,
		RetryMaxAttempts:     cfg.Ledger.RetryMaxAttempts,
		RetryInitialInterval: cfg.Ledger.RetryInitialInterval,
		DefaultMinThreshold:  minThreshold,
	})
	outboundSvc := outbound.NewService(txRunner, ledger, repos, log)
	productionSvc := production.NewService(txRunner, ledger, repos, production.Options{
		SyntheticOutboundNote: cfg.Ledger.SyntheticOutboundNote,
		Logger:                log,
	})

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		Ledger:      ledger,
		Outbound:    outboundSvc,
		Production:  productionSvc,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Logger:      log,
		Gatherer:    prometheus.DefaultGatherer,
		AppName:     cfg.App.Name,
		SwaggerFile: "./docs/swagger.json",
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
