package notify

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type senderChain struct {
	primary  Sender
	fallback Sender
}

// WithFallback returns a sender that uses primary whenever it is enabled and the
// fallback otherwise. A primary delivery error is returned as is so callers can
// report it.
func WithFallback(primary, fallback Sender) Sender {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &senderChain{primary: primary, fallback: fallback}
}

func (c *senderChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	return c.fallback != nil && c.fallback.Enabled()
}

func (c *senderChain) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	if c.primary != nil && c.primary.Enabled() {
		return c.primary.Send(ctx, msg)
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Send(ctx, msg)
	}
	return "", ErrDisabled
}

const logIDPrefix = "log_"

// LogSender writes messages to the application log instead of delivering them.
type LogSender struct{}

func (LogSender) Enabled() bool { return true }

func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := logIDPrefix + uuid.NewString()
	logrus.WithFields(logrus.Fields{
		"id":      id,
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
		"bytes":   len(msg.HTML) + len(msg.Text),
	}).Info("email logged (delivery disabled)")
	return id, nil
}

// IsLogged reports whether id came from LogSender rather than a real delivery.
func IsLogged(id string) bool {
	return strings.HasPrefix(id, logIDPrefix)
}
