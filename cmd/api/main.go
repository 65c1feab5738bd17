package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmintake/docs"
	"pharmintake/internal/config"
	"pharmintake/internal/database"
	"pharmintake/internal/database/migration"
	"pharmintake/internal/gemini"
	handlers "pharmintake/internal/http/handler"
	"pharmintake/internal/http/middleware"
	"pharmintake/internal/logger"
	"pharmintake/internal/otel"
	"pharmintake/internal/repository/postgres"
	"pharmintake/internal/service"
	"pharmintake/internal/sheets"
	"pharmintake/internal/storage"
)

// bodyLimit admits four attachments at the 5 MB cap plus the text fields.
const bodyLimit = 4*int(service.MaxFileSize) + 4<<20

// @title Pharmacy Intake API
// @version 1.0
// @description Customer intake for insured pharmacy orders.
// @BasePath /
func main() {
	cfg := config.Load()
	loc := cfg.Log.Location()
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Location: loc})
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "failed to initialize tracing", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	sink, pinger, closeSink, err := newSink(ctx, cfg, log)
	if err != nil {
		fatal(log, "failed to initialize sink", err)
	}
	defer closeSink()

	completer, err := gemini.New(cfg.Classifier)
	if err != nil {
		fatal(log, "failed to initialize classifier", err)
	}
	if cfg.Classifier.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set; prescriptions will be delivered without analysis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		fatal(log, "failed to register pipeline metrics", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "failed to register http metrics", err)
	}

	svc := service.NewSubmissionService(
		service.NewPrescriptionClassifier(completer, cfg.Classifier.Language),
		sink,
		service.WithMetrics(metrics),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(loc))
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, pinger, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server starting", "addr", addr, "sink", cfg.Sink.Kind, "classifier_model", cfg.Classifier.Model)
	if err := app.Listen(addr); err != nil {
		fatal(log, "failed to start server", err)
	}
}

// newSink builds the configured delivery backend. The returned Pinger is nil when the
// backend has nothing to probe; the close func is always non-nil.
func newSink(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (service.Sink, handlers.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Sink.Kind {
	case config.SinkSheet:
		c, err := sheets.New(cfg.Sink.Sheet)
		if err != nil {
			return nil, nil, noop, err
		}
		return c, nil, noop, nil

	case config.SinkS3:
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("object storage: %w", err)
		}
		return service.NewObjectSink(objStore, ""), nil, noop, nil

	case config.SinkPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		closeDB := func() { _ = db.Close() }
		return service.NewRecordSink(postgres.NewSubmissionPostgres(db)), db, closeDB, nil
	}

	return nil, nil, noop, errors.New("unknown SINK_KIND " + cfg.Sink.Kind)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
