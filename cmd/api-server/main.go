package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/api"
	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/db"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/patient"
	redisclient "github.com/hackgods/clinic-office-scheduling/internal/redis"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load error")
	}

	log := logging.New(cfg.LogLevel, cfg.IsDev())
	log.WithFields(logrus.Fields{
		"env":       cfg.Env,
		"http_port": cfg.HTTPPort,
		"store":     cfg.StoreBackend,
		"tz":        cfg.Location.String(),
		"version":   version,
	}).Info("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store      clinic.Store
		storeCheck api.Check
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := openPostgres(rootCtx, cfg, log)
		if err != nil {
			log.WithError(err).Fatal("postgres setup error")
		}
		defer pool.Close()
		store = clinic.NewPgStore(pool, cfg.Location)
		storeCheck = pool.Ping
	default:
		store = clinic.NewMemoryStore()
		log.Warn("using in-memory store, records are lost on restart")
	}

	var (
		locker    appointment.Locker
		lockCheck api.Check
	)
	if cfg.UseRedis() {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.WithError(err).Fatal("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("error closing redis")
			}
		}()
		log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
		locker = redisclient.NewLocker(rdb, cfg.LockTTL)
		lockCheck = redisCheck(rdb)
	} else {
		locker = appointment.NewLocalLocker()
		log.Info("redis not configured, booking locks are in-process")
	}

	v := validate.New()
	router := api.NewRouter(api.RouterConfig{
		Appointments: appointment.NewService(store, locker, v, log, cfg),
		Patients:     patient.NewService(store, v, log, cfg),
		Catalog:      patient.DefaultCatalog(),
		Health:       api.NewHealthHandler(storeCheck, lockCheck, cfg.Env, version),
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("http server error")
		}
	}

	log.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// openPostgres connects and brings the schema up to date before serving.
func openPostgres(ctx context.Context, cfg config.Config, log *logrus.Logger) (*pgxpool.Pool, error) {
	m, err := db.NewMigrator(cfg.PostgresDSN, log.WithField("component", "migrate"))
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil {
		_ = m.Close()
		return nil, err
	}
	if err := m.Close(); err != nil {
		log.WithError(err).Warn("close migrator")
	}

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.Location)
	if err != nil {
		return nil, err
	}
	log.Info("connected to Postgres")
	return pool, nil
}

func redisCheck(rdb *redis.Client) api.Check {
	return func(ctx context.Context) error {
		return redisclient.Ping(ctx, rdb)
	}
}
