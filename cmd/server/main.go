package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"idres/internal/events"
	"idres/internal/export"
	identityhandler "idres/internal/identity/handler"
	identitymetrics "idres/internal/identity/metrics"
	identityservice "idres/internal/identity/service"
	"idres/internal/identity/store"
	jwttoken "idres/internal/jwt_token"
	"idres/internal/platform/config"
	"idres/internal/platform/httpserver"
	"idres/internal/platform/logger"
	"idres/internal/platform/metrics"
	"idres/internal/platform/middleware"
	"idres/internal/platform/postgres"
	"idres/internal/platform/redis"
	"idres/internal/profile"
	"idres/internal/ratelimit"
	httptransport "idres/internal/transport/http"
	"idres/internal/workspace"
	"idres/pkg/platform/circuit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var cleanup closers
	defer cleanup.closeAll(log)

	checks := map[string]httptransport.Check{}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		cleanup.add("redis", redisClient.Close)
		checks["redis"] = redisClient.Health
	}

	st, err := openStore(ctx, cfg, redisClient, checks, &cleanup)
	if err != nil {
		return err
	}
	publisher, err := openPublisher(ctx, cfg.Events)
	if err != nil {
		return err
	}
	cleanup.add("publisher", publisher.Close)

	session, err := identityservice.Open(ctx, st,
		identityservice.WithLogger(log),
		identityservice.WithPublisher(publisher),
		identityservice.WithMetrics(identitymetrics.New()),
	)
	if err != nil {
		return err
	}
	log.Info("identity configuration loaded",
		"session_id", session.ID(),
		"store", cfg.Store.Kind,
		"fields", len(session.Config().Fields),
	)

	envStore := workspace.NewEnvStore(cfg.EnvFile)
	watcher, err := workspace.NewWatcher(envStore,
		workspace.WithWatcherLogger(log),
		workspace.WithWatcherPublisher(publisher),
	)
	if err != nil {
		return err
	}
	workspaceService := workspace.NewService(envStore, watcher)

	breaker := circuit.New("profile-api")
	watcher.Subscribe(func(ctx context.Context, change workspace.Change) {
		if slices.Contains(change.Keys, workspace.KeyAccessToken) || slices.Contains(change.Keys, workspace.KeySpaceID) {
			breaker.Reset()
			log.InfoContext(ctx, "profile api credentials changed, circuit reset")
		}
	})
	profiles := profile.NewClient(cfg.Profile.BaseURL, workspaceService, cfg.Profile.Timeout,
		profile.WithBreaker(breaker),
		profile.WithLogger(log),
	)

	exportOpts := []export.Option{export.WithLogger(log)}
	if cfg.Export.S3Bucket != "" {
		dest, err := export.NewS3Destination(ctx, cfg.Export.S3Bucket, cfg.Export.S3Region, cfg.Export.S3Endpoint)
		if err != nil {
			return err
		}
		exportOpts = append(exportOpts, export.WithUploader(dest, cfg.Export.S3Prefix))
	}
	exports := export.NewService(workspaceService, profiles, export.NewTwilioNotifier(workspaceService), exportOpts...)

	var validator middleware.JWTValidator
	if cfg.Auth.JWTSigningKey != "" {
		validator = jwttoken.NewJWTServiceAdapter(
			jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, jwttoken.APIAudience),
		)
	} else {
		log.Warn("IDRES_JWT_SIGNING_KEY is empty, API authentication disabled")
	}

	var limitStore ratelimit.Store = ratelimit.NewInMemory()
	if redisClient != nil {
		limitStore = ratelimit.NewRedis(redisClient.Client)
	}
	limiter := ratelimit.NewLimiter(limitStore, log, ratelimit.NewMetrics())
	profileLimit := ratelimit.Class{Name: "profile", Requests: cfg.RateLimit.Profile, Window: cfg.RateLimit.Window}
	exportLimit := ratelimit.Class{Name: "export", Requests: cfg.RateLimit.Export, Window: cfg.RateLimit.Window}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: metrics.New(),
		Auth:    validator,
		Checks:  checks,
		APIs: []httptransport.Registrar{
			identityhandler.New(session, log),
			workspace.NewHandler(workspaceService, log, cfg.Auth.AdminToken),
			httptransport.Limited(profile.NewHandler(profiles, log), limiter.Middleware(profileLimit)),
			httptransport.Limited(export.NewHandler(exports, log), limiter.Middleware(exportLimit)),
		},
	})
	srv := httpserver.New(cfg.HTTPAddr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting idres", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return session.Close(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, checks map[string]httptransport.Check, cleanup *closers) (store.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return store.NewInMemory(), nil
	case config.StoreFile:
		return store.NewFile(cfg.Store.Path), nil
	case config.StoreRedis:
		return store.NewRedis(redisClient.Client), nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		cleanup.add("postgres", db.Close)
		if err := postgres.Migrate(db); err != nil {
			return nil, err
		}
		checks["postgres"] = db.PingContext
		return store.NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}
}

func openPublisher(ctx context.Context, cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Kind {
	case config.EventsNone:
		return &events.NoopPublisher{}, nil
	case config.EventsNATS:
		return events.NewNATSPublisher(cfg.NATSURL)
	case config.EventsKafka:
		dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return events.NewKafkaPublisher(dialCtx, cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Kind)
	}
}

// closers runs in reverse registration order.
type closers []namedCloser

type namedCloser struct {
	name  string
	close func() error
}

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, namedCloser{name: name, close: fn})
}

func (c closers) closeAll(log *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].close(); err != nil {
			log.Warn("failed to close resource", "resource", c[i].name, "error", err)
		}
	}
}
