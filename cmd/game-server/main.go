package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/app/rooms"
	"loser-pays/internal/broker"
	"loser-pays/internal/cache"
	"loser-pays/internal/channel"
	"loser-pays/internal/config"
	"loser-pays/internal/game"
	"loser-pays/internal/logging"
	"loser-pays/internal/mcpserver"
	"loser-pays/internal/store"
	httptransport "loser-pays/internal/transport/http"
	"loser-pays/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := waitReady(ctx, "postgres", cfg.Server.StartupRetries, st.Ping); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if cfg.Server.MigrateOnStart {
		if err := store.Migrate(cfg.Server.PostgresDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Msg("migrations applied")
	}

	redisOpts, err := redis.ParseURL(cfg.Server.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url failed")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	redisPing := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := waitReady(ctx, "redis", cfg.Server.StartupRetries, redisPing); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	rates, err := newRateSource(cfg.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("currency config invalid")
	}

	var b broker.Broker
	switch cfg.Server.BrokerBackend {
	case config.BackendMemory:
		b = broker.NewMemory()
		log.Warn().Msg("memory broker: rooms will not span processes")
	default:
		b = broker.NewRedis(ctx, rdb)
	}
	defer b.Close()

	var actions actionlog.Log
	switch cfg.Server.ActionLogBackend {
	case config.BackendBadger:
		bl, err := actionlog.OpenBadgerLog(cfg.Server.BadgerDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Server.BadgerDir).Msg("open badger action log failed")
		}
		defer bl.Close()
		actions = bl
	default:
		actions = actionlog.NewRedisLog(rdb)
	}

	manager := channel.NewManager(b)
	go manager.Run(ctx)

	roomSvc := rooms.NewService(st, cache.New(rdb, cfg.Server.CacheTTL), manager, actions)
	wsSrv := ws.NewServer(ws.Deps{
		Directory: st,
		Rooms:     roomSvc,
		Channels:  manager,
		Actions:   actions,
		Evaluator: game.NewEvaluator(actions, rates, game.NewRandomizer()),
		Rounds:    game.NewRounds(),
		Rates:     rates,
	})

	r := httptransport.NewRouter(httptransport.RouterDeps{
		Rooms: roomSvc,
		WS:    wsSrv,
		MCP:   mcpserver.New(roomSvc).Handler(),
		Health: map[string]httptransport.Pinger{
			"db":    st,
			"redis": httptransport.PingFunc(redisPing),
		},
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).
		Str("broker", cfg.Server.BrokerBackend).
		Str("action_log", cfg.Server.ActionLogBackend).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
	}
}
