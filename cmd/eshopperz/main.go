package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"eshopperz/api"
	"eshopperz/config"
	"eshopperz/identity"
	"eshopperz/mail"
	"eshopperz/migrations"
	"eshopperz/seed"
	"eshopperz/store"
)

const (
	shutdownTimeout      = 15 * time.Second
	verificationTokenTTL = 24 * time.Hour
	sessionTTL           = 24 * time.Hour
	mailQueueSize        = 100
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_DIR"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := cfg.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("failed to create logger")
	}

	db, err := sqlx.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to open DB")
	}

	version, err := migrations.Migrate(cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to migrate")
	}
	log.WithField("version", version).Info("schema migrated")

	st := store.New(db)

	redisStorage := newRedisStorage(cfg, log)

	mailer := newMailer(cfg, log)

	ids := identity.NewService(
		st,
		identity.NewVerificationTokens(redisStorage.Conn(), verificationTokenTTL),
		identity.NewTokenManager(identity.TokenConfig{
			Key:    cfg.JWT.Key,
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.TokenTTL(),
		}),
		identity.NewPasswordHasher(0),
		mailer,
		cfg.PublicURL,
		log,
	)

	if cfg.Seed {
		if err := seed.Run(context.Background(), ids, st, log); err != nil {
			log.WithError(err).Fatal("failed to seed")
		}
	}

	sessions := session.New(session.Config{
		Storage:        redisStorage,
		Expiration:     sessionTTL,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.TLSCert != "",
		CookieSameSite: "Lax",
	})

	ws := api.NewApp(log)
	api.NewServer(st, ids, sessions, log).Routes(ws)

	if cfg.UIDir != "" {
		api.ServeUI(ws, cfg.UIDir)
	}

	go func() {
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = ws.ListenTLS(cfg.BindAddr, cfg.TLSCert, cfg.TLSKey)
		} else {
			err = ws.Listen(cfg.BindAddr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start web server")
		}
	}()

	log.WithField("addr", cfg.BindAddr).Info("web server started")

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout,
		map[string]gfshutdown.Operation{
			"web server": func(ctx context.Context) error {
				if err := ws.ShutdownWithContext(ctx); err != nil {
					return err
				}
				if err := mailer.Close(); err != nil {
					log.WithError(err).Error("failed to close mailer")
				}
				if err := redisStorage.Close(); err != nil {
					log.WithError(err).Error("failed to close redis")
				}
				return db.Close()
			},
		},
	)

	code := <-wait
	log.WithField("code", code).Info("exited")
	os.Exit(code)
}

func newRedisStorage(cfg *config.Config, log *logrus.Logger) *redis.Storage {
	host, port, err := cfg.RedisHostPort()
	if err != nil {
		log.WithError(err).Fatal("invalid redis address")
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.DB,
	})
}

// newMailer prefers the Kafka outbox, then direct SMTP, then the log.
func newMailer(cfg *config.Config, log *logrus.Logger) mail.Sender {
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		log.WithField("topic", cfg.Kafka.MailTopic).Info("mail goes through kafka")
		return mail.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.MailTopic, log)
	case cfg.Email.SMTPHost != "":
		log.WithField("host", cfg.Email.SMTPHost).Info("mail goes through smtp")
		return mail.NewQueue(mail.NewSMTPSender(smtpConfig(cfg)), mailQueueSize, log)
	default:
		log.Warn("no mail transport configured, mail is only logged")
		return mail.NewLogSender(log)
	}
}

func smtpConfig(cfg *config.Config) mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}
}
