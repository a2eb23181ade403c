package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultStreamName = "VISITPRICING"
	defaultMaxAge     = 72 * time.Hour
	setupTimeout      = 10 * time.Second
)

// Config holds NATS connection settings
type Config struct {
	URL        string
	Name       string // client connection name
	StreamName string
	// MaxAge bounds how long quote events stay in the stream
	MaxAge time.Duration
}

// DefaultConfig targets a local NATS server
func DefaultConfig() Config {
	return Config{
		URL:        nats.DefaultURL,
		Name:       "visit-pricing",
		StreamName: defaultStreamName,
		MaxAge:     defaultMaxAge,
	}
}

func (c Config) streamConfig() jetstream.StreamConfig {
	name := c.StreamName
	if name == "" {
		name = defaultStreamName
	}
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{subjectWildcard},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    maxAge,
		Replicas:  1,
	}
}

// Bus publishes quote events to a JetStream stream
type Bus struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// New connects to NATS and creates or updates the quote stream
func New(cfg Config) (*Bus, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	stream := cfg.streamConfig()
	if _, err := js.CreateOrUpdateStream(ctx, stream); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", stream.Name, err)
	}

	logger.Info("NATS event bus connected",
		zap.String("url", cfg.URL),
		zap.String("stream", stream.Name),
		zap.Duration("max_age", stream.MaxAge),
	)
	return &Bus{conn: nc, js: js}, nil
}

// Publish sends event to subject. The event ID doubles as the JetStream
// message ID so a retried publish is stored once.
func (b *Bus) Publish(ctx context.Context, subject string, event *Event) error {
	if b == nil || b.js == nil {
		return fmt.Errorf("publish to %s: event bus not connected", subject)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := b.js.Publish(ctx, subject, payload, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	logger.DebugContext(ctx, "event published",
		zap.String("subject", subject),
		zap.String("event_id", event.ID),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate),
	)
	return nil
}

// Close drains the connection so in-flight publishes complete
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		logger.Warn("NATS drain failed", zap.Error(err))
		return
	}
	logger.Info("NATS event bus closed")
}

// Connected reports whether the NATS connection is up
func (b *Bus) Connected() bool {
	return b != nil && b.conn != nil && b.conn.IsConnected()
}
