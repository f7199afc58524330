package main

import (
	"context"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"eshopperz/config"
	"eshopperz/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_DIR"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := cfg.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("failed to create logger")
	}

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka.brokers (KAFKA_BROKERS) is required")
	}
	if cfg.Email.SMTPHost == "" {
		log.Fatal("email.smtp_host (EMAIL_SMTP_HOST) is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.MailTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := mail.Relay(ctx, reader, sender, log); err != nil {
			log.WithError(err).Fatal("mail relay stopped")
		}
	}()

	log.WithFields(logrus.Fields{
		"topic":    cfg.Kafka.MailTopic,
		"group_id": cfg.Kafka.GroupID,
	}).Info("mail relay started")

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mail relay": func(ctx context.Context) error {
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
					return ctx.Err()
				}
				return reader.Close()
			},
		},
	)

	code := <-wait
	log.WithField("code", code).Info("exited")
	os.Exit(code)
}
