package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	// Instrumentation
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/jupiterclapton/reelfeed/config"
	"github.com/jupiterclapton/reelfeed/internal/adapters/primary/events"
	"github.com/jupiterclapton/reelfeed/internal/adapters/primary/rest"
	"github.com/jupiterclapton/reelfeed/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/reelfeed/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/reelfeed/internal/adapters/secondary/socialgraph"
	"github.com/jupiterclapton/reelfeed/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	slog.Info("🚀 Starting Reelfeed", "env", cfg.Env, "http_port", cfg.HTTPPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Postgres (catalogue + historique)
	pgCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		slog.Error("Invalid postgres config", "error", err)
		os.Exit(1)
	}
	pgCfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		slog.Error("Unable to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		slog.Error("Unable to connect to Postgres", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Postgres")

	catalog := repository.NewPostgresCatalog(pool, cfg.Recommendation.Popularity)
	history := repository.NewPostgresHistory(pool)
	users := repository.NewPostgresUserDirectory(pool)

	// 4. Infrastructure: Redis (cache de batchs)
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		panic(err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Redis")

	batchCache := repository.NewRedisBatchCache(rdb, cfg.Recommendation.BatchTTL)

	// 5. Infrastructure: Neo4j (graphe social)
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		slog.Error("Unable to create Neo4j driver", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		slog.Error("Unable to connect to Neo4j", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Neo4j")

	graph := socialgraph.NewNeo4jGraph(driver)

	// 6. Infrastructure: Event Broker NATS
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	slog.Info("✅ Connected to NATS")

	publisher := eventbroker.NewNatsPublisher(nc)

	// 7. Initialisation du Core
	scorer := services.NewCollaborativeScorer(history, cfg.Recommendation)
	recommendations := services.NewRecommendationService(scorer, catalog, history, batchCache, publisher, cfg.Recommendation)
	feed := services.NewFeedService(catalog, history, users, graph, cfg.Recommendation)

	// 8. Consumers NATS (Driving Adapter - Async) : prefetch + invalidation
	handler := events.NewEventHandler(recommendations)
	if err := handler.Subscribe(nc); err != nil {
		slog.Error("Failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	slog.Info("👂 Listening for events (NATS)")

	// 9. Serveur HTTP (Driving Adapter - Sync)
	api := rest.NewServer(feed, recommendations)
	corsHandler := cors.Default().Handler(api.Router())
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(corsHandler, "reelfeed-http"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("📡 Reelfeed HTTP listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	slog.Info("👋 Server exited")
}

// --- Helpers ---

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("reelfeed"),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
