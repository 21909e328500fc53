package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/retry"
)

// invalidation is the message published on the invalidation subject.
type invalidation struct {
	Origin string    `json:"origin"`
	Reason string    `json:"reason"`
	SentAt time.Time `json:"sent_at"`
}

// Broadcaster shares cache invalidations between instances over a NATS
// subject. Messages an instance published itself are ignored on receipt.
type Broadcaster struct {
	conn    *nats.Conn
	subject string
	origin  string
	logger  *slog.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

// NewBroadcaster connects to the NATS server at url.
func NewBroadcaster(url, subject string, logger *slog.Logger) (*Broadcaster, error) {
	if logger == nil {
		logger = slog.Default()
	}
	origin := uuid.NewString()
	conn, err := nats.Connect(url,
		nats.Name("mdxsite-"+origin[:8]),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", slog.String("url", url), logfields.Subject(subject))
	return &Broadcaster{conn: conn, subject: subject, origin: origin, logger: logger}, nil
}

// ConnectBroadcaster retries NewBroadcaster according to policy. NATS
// handles reconnects itself once the first connection succeeds.
func ConnectBroadcaster(ctx context.Context, url, subject string, policy retry.Policy, logger *slog.Logger) (*Broadcaster, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var b *Broadcaster
	err := retry.Do(ctx, policy, func(context.Context) error {
		var err error
		b, err = NewBroadcaster(url, subject, logger)
		return err
	}, func(attempt int, wait time.Duration, err error) {
		logger.Warn("NATS connection failed, retrying",
			slog.Int("attempt", attempt), logfields.Duration(wait), logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Origin returns the id stamped on published messages.
func (b *Broadcaster) Origin() string { return b.origin }

// Publish sends an invalidation for reason.
func (b *Broadcaster) Publish(ctx context.Context, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeInvalidation(b.origin, reason, time.Now())
	if err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Listen calls fn for each invalidation published by another instance.
func (b *Broadcaster) Listen(fn func(reason string)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return fmt.Errorf("already listening on %s", b.subject)
	}
	sub, err := b.conn.Subscribe(b.subject, func(msg *nats.Msg) {
		reason, ok := b.accept(msg.Data)
		if ok {
			fn(reason)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.subject, err)
	}
	b.sub = sub
	return nil
}

// accept decodes data and reports whether it came from another instance.
func (b *Broadcaster) accept(data []byte) (string, bool) {
	var msg invalidation
	if err := json.Unmarshal(data, &msg); err != nil {
		b.logger.Warn("Ignoring malformed invalidation", logfields.Subject(b.subject), logfields.Error(err))
		return "", false
	}
	if msg.Origin == b.origin {
		return "", false
	}
	b.logger.Debug("Received invalidation", slog.String("origin", msg.Origin), slog.String("reason", msg.Reason))
	return msg.Reason, true
}

// Close drains the subscription and closes the connection.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	return b.conn.Drain()
}

func encodeInvalidation(origin, reason string, at time.Time) ([]byte, error) {
	data, err := json.Marshal(invalidation{Origin: origin, Reason: reason, SentAt: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode invalidation: %w", err)
	}
	return data, nil
}
