package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hongjun500/duel-go/internal/config"
	"github.com/hongjun500/duel-go/internal/gateway"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

func main() {
	cfg := config.LoadGateway()
	log := logger.L().Sugar()

	registry := gateway.NewRegistry()
	var router *gateway.Router
	uplink := gateway.NewCoreLink(cfg.CoreAddr, cfg.OutBuffer, cfg.HeartbeatInterval, cfg.ReconnectBase, cfg.ReconnectMax, func(env *protocol.Envelope) {
		router.FromCore(env)
	})
	router = gateway.NewRouter(registry, uplink)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go uplink.Run(ctx)

	go func() {
		if err := observe.StartHTTP(cfg.MetricsAddr); err != nil {
			log.Warnw("metrics_http_failed", "err", err)
		}
	}()

	if err := gateway.NewServer(cfg, router).Start(ctx); err != nil && ctx.Err() == nil {
		log.Errorw("gateway_server_exit", "err", err)
		os.Exit(1)
	}
	log.Infow("gateway_shutdown")
}
