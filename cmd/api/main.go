package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/application/stock"
	policy "github.com/jhoicas/purchases-api/internal/domain/purchase"
	"github.com/jhoicas/purchases-api/internal/infrastructure/kafka"
	infrapdf "github.com/jhoicas/purchases-api/internal/infrastructure/pdf"
	"github.com/jhoicas/purchases-api/internal/infrastructure/postgres"
	"github.com/jhoicas/purchases-api/internal/infrastructure/redisx"
	httpRouter "github.com/jhoicas/purchases-api/internal/interfaces/http"
	"github.com/jhoicas/purchases-api/pkg/config"
	"github.com/jhoicas/purchases-api/pkg/jwt"
	"github.com/jhoicas/purchases-api/pkg/logger"
	"github.com/jhoicas/purchases-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := tracing.Setup(ctx, cfg.Otel, cfg.App.Name, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Tablas y los cinco estados canónicos; GET /purchases/statuses solo lee.
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	purchaseRepo := postgres.NewPurchaseRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Purchases.LockTimeout)

	placeOrderUC := purchase.NewPlaceOrderUseCase(txRunner, log)
	lifecycleUC := purchase.NewLifecycleUseCase(
		txRunner, purchaseRepo,
		postgres.NewArchiveRepository(pool),
		postgres.NewStatusRepository(pool),
		log,
	).WithPolicies(
		policy.Transitions(cfg.Purchases.StrictTransitions),
		policy.Restock(cfg.Purchases.RestockOnCancel),
	)

	// Redis opcional: sin REDIS_ADDR no hay caché ni deduplicación por Idempotency-Key
	if cfg.Redis.Enabled() {
		rdb, err := redisx.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		placeOrderUC.WithIdempotency(redisx.NewIdempotencyStore(rdb))
		lifecycleUC.WithCache(redisx.NewPurchaseCache(rdb, log))
	}

	// Kafka opcional: los eventos se publican después del commit
	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.App.Name, 256, log)
		producer.Start()
		placeOrderUC.WithEvents(producer)
		lifecycleUC.WithEvents(producer)
	}

	verifier, err := jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}

	receiptUC := purchase.NewReceiptUseCase(lifecycleUC, infrapdf.NewReceiptGenerator(cfg.App.Name))
	stockUC := stock.NewStockUseCase(postgres.NewStockRepository(pool))

	log.Info().
		Dur("lock_timeout", cfg.Purchases.LockTimeout).
		Bool("strict_transitions", cfg.Purchases.StrictTransitions).
		Bool("restock_on_cancel", cfg.Purchases.RestockOnCancel).
		Bool("redis", cfg.Redis.Enabled()).
		Bool("kafka", cfg.Kafka.Enabled()).
		Msg("compras configuradas")

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.TraceContext())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Purchases API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		PlaceOrder:      placeOrderUC,
		Lifecycle:       lifecycleUC,
		Receipt:         receiptUC,
		StockUC:         stockUC,
		Verifier:        verifier,
		Log:             log,
		OrdersPerMinute: cfg.HTTP.OrdersPerMinute,
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

	// Después de cerrar HTTP ya no llegan eventos nuevos; se vacía la cola pendiente
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("apagado de tracing")
	}

	log.Info().Msg("aplicación detenida")
}
