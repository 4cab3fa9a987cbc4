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
	"github.com/jhoicas/perecederos-api/internal/application/inventory"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/cache"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/memory"
	"github.com/jhoicas/perecederos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/perecederos-api/internal/interfaces/http"
	"github.com/jhoicas/perecederos-api/pkg/config"
	"github.com/jhoicas/perecederos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.New()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos = postgres.NewTxRunner(pool), postgres.ReposFor(pool)
	}

	var productReader repository.ProductReader = repos.Products
	if cfg.Cache.CatalogSize > 0 {
		pc, err := cache.NewProductCache(repos.Products, cfg.Cache.CatalogSize, cfg.Cache.CatalogTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("caché de catálogo")
		}
		productReader = pc
	}

	catalogUC := inventory.NewCatalogUseCase(txRunner, repos.Products, productReader, log.Named("catalog"))
	ledgerUC := inventory.NewBatchLedgerUseCase(txRunner, repos.Batches, productReader, log.Named("batches"))
	deductionUC := inventory.NewDeductionUseCase(txRunner, repos.Balances, productReader, log.Named("deductions"))
	stockUC := inventory.NewStockUseCase(txRunner, repos.Stock, productReader, log.Named("stock"))
	journalUC := inventory.NewJournalUseCase(txRunner, repos.Operations)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Perecederos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:    catalogUC,
		Ledger:     ledgerUC,
		Deductions: deductionUC,
		Stock:      stockUC,
		Journal:    journalUC,
		JWTSecret:  cfg.JWT.Secret,
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
