package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/txservice/internal/config"
	"github.com/congo-pay/txservice/internal/journal"
	"github.com/congo-pay/txservice/internal/metrics"
	"github.com/congo-pay/txservice/internal/middleware"
	"github.com/congo-pay/txservice/internal/notification"
	"github.com/congo-pay/txservice/internal/processor"
	"github.com/congo-pay/txservice/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Registry receives the processor metrics and backs GET /metrics. Nil
	// selects a fresh registry carrying the Go and process collectors.
	Registry *prometheus.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
		d.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	var eventJournal journal.Journal
	if d.DB != nil {
		pg, err := journal.NewPostgresJournal(context.Background(), d.DB)
		if err != nil {
			return err
		}
		eventJournal = pg
	} else {
		eventJournal = journal.NewInMemory()
	}

	proc := processor.New(processor.Options{
		Journal:  eventJournal,
		Notifier: notification.NewLoggerNotifier(d.Logger),
		Metrics:  metrics.NewPrometheus(d.Registry),
		Logger:   d.Logger,
	})
	txHandler := transaction.NewHandler(proc)

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"serverTime": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.RateLimit(d.Cache, d.Cfg.RateLimitPerMinute)
	RegisterTransactionRoutes(app, txHandler, rateLimiter)
	if d.Cfg.AdminEnabled {
		RegisterAdminRoutes(app, txHandler)
		d.Logger.Warn("admin reset endpoint enabled")
	}

	return nil
}
