package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds connection settings for the NATS-backed channel.
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns settings suitable for local development.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSChannel implements Channel over core NATS pub/sub. Core NATS gives
// exactly the contract the channel promises: at-most-once delivery to
// currently connected subscribers, per-publisher FIFO within a subject, and
// silent drops when nobody listens.
type NATSChannel struct {
	nc *nats.Conn
}

// NewNATSChannel connects to NATS and returns a channel.
func NewNATSChannel(cfg NATSConfig) (*NATSChannel, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrChannelUnavailable, err)
	}
	return &NATSChannel{nc: nc}, nil
}

func roomSubject(roomID uuid.UUID) string {
	return fmt.Sprintf("rooms.%s.events", roomID)
}

func (c *NATSChannel) Publish(ctx context.Context, roomID uuid.UUID, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := c.nc.Publish(roomSubject(roomID), data); err != nil {
		return fmt.Errorf("%w: publish: %v", ErrChannelUnavailable, err)
	}
	return nil
}

func (c *NATSChannel) Subscribe(ctx context.Context, roomID uuid.UUID) (Subscription, error) {
	ns := &natsSubscription{ch: make(chan Envelope, 64)}

	sub, err := c.nc.Subscribe(roomSubject(roomID), func(msg *nats.Msg) {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("dropping malformed room event")
			return
		}
		ns.deliver(env)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe: %v", ErrChannelUnavailable, err)
	}
	ns.sub = sub
	return ns, nil
}

// Close drains the connection.
func (c *NATSChannel) Close() {
	c.nc.Close()
}

type natsSubscription struct {
	sub    *nats.Subscription
	ch     chan Envelope
	mu     sync.Mutex
	closed bool
}

func (s *natsSubscription) deliver(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- env:
	default:
		// Slow subscriber: drop rather than block the NATS callback.
		log.Warn().Str("room_id", env.RoomID).Msg("subscriber buffer full, dropping event")
	}
}

func (s *natsSubscription) C() <-chan Envelope {
	return s.ch
}

func (s *natsSubscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	return s.sub.Unsubscribe()
}
