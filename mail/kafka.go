package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaSender writes messages to a topic; the write is asynchronous so Send
// never waits for the broker.
type KafkaSender struct {
	w *kafka.Writer
}

func NewKafkaSender(brokers []string, topic string, log logrus.FieldLogger) *KafkaSender {
	return &KafkaSender{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.WithError(err).WithField("count", len(msgs)).Error("failed to publish mail")
			}
		},
	}}
}

func (s *KafkaSender) Send(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	return s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.To),
		Value: payload,
	})
}

func (s *KafkaSender) Close() error {
	return s.w.Close()
}

// MessageReader is the subset of *kafka.Reader used by Relay.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Relay delivers every message read from r through to until ctx is done.
// Offsets are committed after delivery; undecodable messages are skipped.
func Relay(ctx context.Context, r MessageReader, to Sender, log logrus.FieldLogger) error {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var m Message
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			log.WithError(err).WithField("offset", msg.Offset).Warn("skipping malformed mail")
		} else if err := to.Send(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// Uncommitted, so the next fetch after a restart retries it.
			return fmt.Errorf("deliver mail at offset %d: %w", msg.Offset, err)
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}
