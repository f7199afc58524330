package main

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"eshopperz/config"
	"eshopperz/identity"
	"eshopperz/mail"
	"eshopperz/migrations"
	"eshopperz/seed"
	"eshopperz/store"
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
	defer db.Close()

	if _, err := migrations.Migrate(cfg.PostgresDSN); err != nil {
		log.WithError(err).Fatal("failed to migrate")
	}

	st := store.New(db)

	// seeded accounts are created verified, so no verification tokens are
	// issued and no mail is sent
	ids := identity.NewService(
		st,
		nil,
		identity.NewTokenManager(identity.TokenConfig{
			Key:    cfg.JWT.Key,
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.TokenTTL(),
		}),
		identity.NewPasswordHasher(0),
		mail.NewLogSender(log),
		cfg.PublicURL,
		log,
	)

	if err := seed.Run(context.Background(), ids, st, log); err != nil {
		log.WithError(err).Fatal("failed to seed")
	}

	log.Info("seed complete")
}
