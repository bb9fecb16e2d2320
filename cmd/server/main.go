package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"vision-fit-guide/backend/internal/api"
	"vision-fit-guide/backend/internal/auth"
	"vision-fit-guide/backend/internal/cache"
	"vision-fit-guide/backend/internal/config"
	"vision-fit-guide/backend/internal/notify"
	"vision-fit-guide/backend/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (env FITGUIDE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	repo, err := openRepository(cfg.Store)
	if err != nil {
		logrus.Fatalf("open store: %v", err)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close store")
		}
	}()

	guard := openGuard(cfg.Cache)

	var sender notify.Sender = notify.LogSender{}
	client, err := notify.NewClient(notify.Config{
		APIKey:  cfg.Email.ResendAPIKey,
		BaseURL: cfg.Email.ResendBaseURL,
		Timeout: cfg.Email.Timeout.Duration,
	})
	switch {
	case errors.Is(err, notify.ErrDisabled):
		logrus.Info("RESEND_API_KEY not set - lead emails will be logged only")
	case err != nil:
		logrus.Fatalf("email client: %v", err)
	default:
		logrus.WithField("internal_to", cfg.Email.InternalTo).Info("lead emails enabled")
		sender = notify.WithFallback(client, sender)
	}

	if len(cfg.Email.InternalTo) == 0 {
		logrus.Warn("INTERNAL_EMAIL_TO is empty - new leads will not be announced internally")
	}
	notifier := notify.NewNotifier(sender, notify.NotifierConfig{
		From:        cfg.Email.From,
		InternalTo:  cfg.Email.InternalTo,
		ScheduleURL: cfg.Email.ScheduleURL,
	})

	server, err := api.NewServer(api.Config{
		Repository:  repo,
		StoreDriver: cfg.Store.Driver,
		Notifier:    notifier,
		Guard:       guard,
		Auth: auth.NewService(auth.Config{
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
			Secret:   cfg.Admin.JWTSecret,
			TokenTTL: cfg.Admin.TokenTTL.Duration,
		}),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.Infof("starting vision fit guide backend on :%s (store=%s)", cfg.Server.Port, cfg.Store.Driver)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func openRepository(cfg config.StoreConfig) (store.Repository, error) {
	if cfg.Driver == store.DriverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logrus.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")
		return repo, nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := store.Open(cfg.DBPath, false)
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", cfg.DBPath).Info("opened SQLite store")
	return db, nil
}

// openGuard connects to Redis when configured. An unreachable Redis disables
// duplicate detection instead of stopping the server.
func openGuard(cfg config.CacheConfig) cache.SubmissionGuard {
	if cfg.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set - duplicate submission detection disabled")
		return cache.NopGuard{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable - duplicate submission detection disabled")
		_ = client.Close()
		return cache.NopGuard{}
	}
	logrus.WithFields(logrus.Fields{"addr": cfg.RedisAddr, "ttl": cfg.DedupeTTL.Duration}).Info("duplicate submission detection enabled")
	return cache.NewSubmissionGuard(client, cfg.DedupeTTL.Duration)
}
