// Package natsbus publishes engine notifications to NATS.
//
// Every notification goes to the subject
//
//	{prefix}.{game_id}.{kind}
//
// so observers can follow one game with "{prefix}.{game_id}.>" or one kind
// of event across games with "{prefix}.*.trick_taken".
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"hearts/internal/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Message is the JSON body of a published notification.
type Message struct {
	GameID      string    `json:"game_id"`
	Kind        string    `json:"kind"`
	Text        string    `json:"text,omitempty"`
	Recipients  []string  `json:"recipients,omitempty"`
	Payload     any       `json:"payload,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher implements ports.EventPublisher on a NATS connection.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// New wraps an open connection. prefix defaults to "hearts".
func New(nc *nats.Conn, prefix string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = "hearts"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{nc: nc, prefix: prefix, logger: logger.Named("natsbus"), now: time.Now}
}

// Connect dials url with reconnect logging.
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("hearts-engine"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject a notification of kind for gameID goes to.
func (p *Publisher) Subject(gameID, kind string) string {
	return p.prefix + "." + token(gameID) + "." + token(kind)
}

// Publish implements ports.EventPublisher. nats buffers outgoing messages,
// so this never waits on subscribers.
func (p *Publisher) Publish(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.GameID == "" || n.Kind == "" {
		return errors.New("notification needs game id and kind")
	}

	data, err := json.Marshal(Message{
		GameID:      n.GameID,
		Kind:        n.Kind,
		Text:        n.Text,
		Recipients:  n.Recipients,
		Payload:     n.Payload,
		PublishedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := p.Subject(n.GameID, n.Kind)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("published", zap.String("subject", subject))
	return nil
}

// token strips characters that carry meaning in NATS subjects.
func token(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
