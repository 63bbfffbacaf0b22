package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/cueroom/go/internal/api"
	"github.com/mcdev12/cueroom/go/internal/config"
	"github.com/mcdev12/cueroom/go/internal/displays"
	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/gateway"
	"github.com/mcdev12/cueroom/go/internal/playback"
	"github.com/mcdev12/cueroom/go/internal/rooms"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
	"github.com/mcdev12/cueroom/go/internal/timers"
)

// Services holds the wired dependency chain:
// infra clients → repositories → apps → playback gateway → HTTP surface.
type Services struct {
	Handler           *api.Handler
	WebSocketHandler  *gateway.WebSocketHandler
	ConnectionManager *gateway.ConnectionManager

	redisClient *redis.Client
	channel     *events.NATSChannel
}

func setupServices(cfg *config.Config, db *pgxpool.Pool, clock clockwork.Clock) (*Services, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := roomstate.NewRedisStore(redisClient, cfg.Redis.TTL)

	channel, err := events.NewNATSChannel(cfg.NATS)
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect event channel: %w", err)
	}

	timerRepo := timers.NewRepository(db)
	timerApp := timers.NewApp(timerRepo)

	roomRepo := rooms.NewRepository(db)
	roomApp := rooms.NewApp(roomRepo)

	displayRepo := displays.NewRepository(db)
	displayApp := displays.NewApp(displayRepo)

	gw := playback.NewGateway(store, channel, timerApp, clock)

	cm := gateway.NewConnectionManager(channel, gateway.DefaultConnectionConfig())
	wsHandler := gateway.NewWebSocketHandler(cm, store)

	handler := api.NewHandler(gw, timerApp, roomApp, displayApp)

	log.Info().
		Str("redis_addr", cfg.Redis.Addr).
		Str("nats_url", cfg.NATS.URL).
		Msg("services wired")

	return &Services{
		Handler:           handler,
		WebSocketHandler:  wsHandler,
		ConnectionManager: cm,
		redisClient:       redisClient,
		channel:           channel,
	}, nil
}

// Close releases infra clients. The pgx pool is owned by main.
func (s *Services) Close() {
	s.channel.Close()
	if err := s.redisClient.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis client")
	}
}
