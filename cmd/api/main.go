package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"arttimeline/internal/artwork"
	"arttimeline/internal/auth"
	"arttimeline/internal/cache"
	"arttimeline/internal/collection"
	"arttimeline/internal/config"
	"arttimeline/internal/logger"
	"arttimeline/internal/metrics"
	"arttimeline/internal/platform/mailer"
	"arttimeline/internal/platform/metmuseum"
	"arttimeline/internal/timeline"
	"arttimeline/internal/user"
)

const cleanupInterval = 10 * time.Minute

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("arttimeline-api", "info")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New("arttimeline-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DBDSN, log)
	defer dbPool.Close()

	m := metrics.New()

	store, closeStore := openCacheStore(ctx, cfg, dbPool, log)
	defer closeStore()

	metClient := metmuseum.NewClient(metmuseum.Options{
		BaseURL:   cfg.MetBaseURL,
		UserAgent: cfg.MetUserAgent,
		Timeout:   cfg.MetTimeout,
		RPS:       cfg.MetRPS,
		Recorder:  m,
	})

	fetcher := artwork.NewFetcher(metClient, store, m, artwork.FetcherConfig{
		ObjectTTL:   cfg.CacheObjectTTL,
		NegativeTTL: cfg.CacheNegativeTTL,
		SearchTTL:   cfg.CacheSearchTTL,
	}, logger.Component(log, "artwork"))

	curator := timeline.NewCurator(fetcher, timeline.CuratorConfig{
		BatchSize:  cfg.CurateBatchSize,
		BatchPause: cfg.CurateBatchPause,
	}, logger.Component(log, "curator"))
	timelineService := timeline.NewService(curator,
		cache.NewBucket(store, timeline.PeriodNamespace, cfg.CachePeriodTTL, m),
		m, logger.Component(log, "timeline"))

	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	blacklistRepo := auth.NewBlacklistPostgresRepo(dbPool, cfg.DBTimeout)
	go runCleanup(ctx, log, "token_blacklist", cleanupInterval, blacklistRepo.CleanupExpired)

	authService := auth.NewService(auth.Config{
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		OTPTTL:         cfg.OTPTTL,
	}, userService, blacklistRepo, newMailer(cfg, log), logger.Component(log, "auth"))

	collectionService := collection.NewService(collection.NewPostgresRepo(dbPool, cfg.DBTimeout))

	a := &app{
		cfg:        cfg,
		log:        log,
		metrics:    m,
		db:         dbPool,
		blacklist:  blacklistRepo,
		artworks:   artwork.NewHTTPHandler(fetcher),
		timeline:   timeline.NewHTTPHandler(timelineService, cfg.CurateLimit, logger.Component(log, "timeline")),
		auth:       auth.NewHTTPHandler(authService, logger.Component(log, "auth")),
		collection: collection.NewHTTPHandler(collectionService, logger.Component(log, "collection")),
	}

	httpServer := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      a.routes(ctx),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.AppAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.AppAddr).Msg("cannot listen")
	}
	log.Info().Str("addr", cfg.AppAddr).Str("cache_driver", cfg.CacheDriver).Msg("starting server")
	if err := runServer(ctx, httpServer, ln, 10*time.Second, log); err != nil {
		log.Error().Err(err).Msg("server error")
		return
	}
	log.Info().Msg("server stopped")
}

// runServer serves on ln until ctx is done, then drains in-flight requests
// for up to grace. It returns only after draining has finished.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, log zerolog.Logger) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

func mustOpenDB(ctx context.Context, dsn string, log zerolog.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatal().Err(err).Str("dsn", config.RedactDSN(dsn)).Msg("cannot ping database")
	}
	log.Info().Msg("database connection OK")
	return pool
}

// openCacheStore builds the store selected by CACHE_DRIVER and starts its
// expiry loop.
func openCacheStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger) (cache.Store, func()) {
	clog := logger.Component(log, "cache")
	switch cfg.CacheDriver {
	case config.CacheDriverPostgres:
		s := cache.NewPostgresStore(pool, cfg.DBTimeout)
		go runCleanup(ctx, clog, "api_cache", cleanupInterval, s.CleanupExpired)
		return s, func() {}
	case config.CacheDriverSQLite:
		s, err := cache.OpenSQLite(cfg.CacheSQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CacheSQLitePath).Msg("cannot open sqlite cache")
		}
		go runCleanup(ctx, clog, "sqlite_cache", cleanupInterval, s.CleanupExpired)
		return s, func() { _ = s.Close() }
	default:
		s := cache.NewMemory()
		go s.RunSweeper(ctx, time.Minute)
		return s, func() {}
	}
}

func newMailer(cfg *config.Config, log zerolog.Logger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, codes are written to the log")
		return mailer.NewLogMailer(logger.Component(log, "mailer"))
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func runCleanup(ctx context.Context, log zerolog.Logger, name string, every time.Duration, fn func(context.Context) (int64, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := fn(ctx)
			if err != nil {
				log.Warn().Err(err).Str("table", name).Msg("cleanup failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Str("table", name).Msg("expired rows removed")
			}
		}
	}
}
