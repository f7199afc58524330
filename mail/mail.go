// Package mail delivers outbound email: directly over SMTP, through a Kafka
// outbox relayed by cmd/eshopperz-mailer, or to the log in development.
package mail

import (
	"context"
	"errors"
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, m Message) error
	Close() error
}
