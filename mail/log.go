package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender only logs messages. Used when no SMTP server or broker is
// configured.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.log.WithFields(logrus.Fields{
		"to":      m.To,
		"subject": m.Subject,
	}).Info(m.Body)
	return nil
}

func (s *LogSender) Close() error {
	return nil
}
