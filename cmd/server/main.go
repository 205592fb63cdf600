package main

import (
	"context"
	"courier-route-service/internal/adapters/cache"
	"courier-route-service/internal/adapters/directions"
	"courier-route-service/internal/adapters/distance"
	"courier-route-service/internal/adapters/feed"
	"courier-route-service/internal/adapters/renderer"
	"courier-route-service/internal/adapters/repositories"
	"courier-route-service/internal/api"
	"courier-route-service/internal/config"
	"courier-route-service/internal/platform/db"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"courier-route-service/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// feedSource is a change source that pushes into the watcher.
type feedSource interface {
	Start() error
	Stop() error
}

// main is the application composition root.
// It wires concrete adapters (Postgres or the websocket feed, a render sink,
// optional ORS geometry) behind ports and starts the HTTP server.
func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.LogLevel, cfg.LogPretty)
	zerolog.DefaultContextLogger = &logger
	if !envFound {
		logger.Info().Msg("No .env file found (using environment variables)")
	}

	roster, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("roster")
	}
	if roster.Len() == 0 {
		logger.Info().Msg("roster is empty, every courier with a position gets a route")
	}

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("database")
		}
		defer database.Close()
	}

	sink, closeSink, err := buildRenderer(cfg, database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("renderer")
	}
	defer closeSink()

	orchestrator := services.NewRouteOrchestrator(sink, distance.Haversine, roster, logger)
	clock := ports.SystemClock{Location: cfg.Location}

	var (
		source   ports.SnapshotSource
		upstream feedSource
		watcher  *services.RouteWatcher
	)
	notify := func() { watcher.Notify() }

	if database != nil {
		source = repositories.NewPostgresSnapshotRepository(database)
		upstream = feed.NewPgNotifyListener(cfg.DatabaseURL, repositories.SnapshotChannel, notify, logger)
	} else {
		store := feed.NewSnapshotStore()
		source = store
		upstream = feed.NewWebsocketFeed(cfg.FeedURL, store, notify, logger)
	}

	watcher = services.NewRouteWatcher(source, clock, orchestrator, cfg.Debounce, cfg.ReevaluateInterval, logger)
	if err := watcher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("route watcher")
	}
	if err := upstream.Start(); err != nil {
		logger.Fatal().Err(err).Msg("change feed")
	}

	router := api.NewRouter(api.Deps{
		Routes:   orchestrator,
		Notifier: watcher,
		Roster:   roster,
		Distance: distance.Haversine,
		Clock:    clock,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("sink", cfg.RenderSink).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := upstream.Stop(); err != nil {
		logger.Error().Err(err).Msg("change feed stop")
	}
	if err := watcher.Stop(); err != nil {
		logger.Error().Err(err).Msg("route watcher stop")
	}
}

// buildRenderer selects the render sink and, with an ORS key, wraps it so
// drawn routes carry road geometry. Geometry is cached in Postgres when a
// database is configured.
func buildRenderer(cfg *config.Config, database *sql.DB, logger zerolog.Logger) (ports.RouteRenderer, func(), error) {
	var (
		sink    ports.RouteRenderer
		closeFn = func() {}
	)

	switch cfg.RenderSink {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		pub, err := renderer.NewRedisPublisher(client, cfg.RedisChannel)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		sink = pub
		closeFn = func() { _ = client.Close() }

	case "mqtt":
		client, err := renderer.ConnectMQTT(cfg.MQTTBroker, "courier-routes-"+uuid.NewString()[:8], 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		pub, err := renderer.NewMQTTPublisher(client, cfg.MQTTTopic, 1)
		if err != nil {
			client.Disconnect(250)
			return nil, nil, err
		}
		sink = pub
		closeFn = func() { client.Disconnect(250) }

	default:
		sink = renderer.NewLogRenderer(logger)
	}

	if cfg.ORSAPIKey == "" {
		return sink, closeFn, nil
	}

	var geometryCache directions.GeometryCache
	if database != nil {
		geometryCache = cache.NewSQLGeometryCache(database)
	}
	provider, err := directions.NewORSDirections(cfg.ORSAPIKey, geometryCache)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return renderer.NewDirectionsRenderer(sink, provider, logger), closeFn, nil
}
