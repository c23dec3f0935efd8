package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hongjun500/duel-go/internal/config"
	"github.com/hongjun500/duel-go/internal/core"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/store"
	"github.com/hongjun500/duel-go/pkg/logger"
)

func main() {
	cfg := config.LoadCore()
	log := logger.L().Sugar()

	var (
		identity    store.IdentityStore
		leaderboard store.LeaderboardStore
		recorder    store.MatchRecorder
	)
	mem := store.NewMemory()
	identity, leaderboard, recorder = mem, mem, mem
	if cfg.PostgresDSN != "" {
		db, err := store.OpenSQL(cfg.PostgresDSN)
		if err != nil {
			log.Fatalw("postgres_open_failed", "err", err)
		}
		identity, leaderboard = db, db
		log.Infow("store_postgres")
	}
	if cfg.RedisAddr != "" {
		recorder = store.NewRedisRecorder(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		log.Infow("recorder_redis", "addr", cfg.RedisAddr, "stream", cfg.RedisStream)
	}

	sessions := core.NewSessionManager()
	matches := core.NewMatchEngine(core.MatchConfig{
		RoundTimeout:   cfg.RoundTimeout,
		AutoPickPolicy: cfg.AutoPickPolicy,
	}, sessions, recorder, identity)
	challenges := core.NewChallengeEngine(cfg.ChallengeTimeout, sessions, matches)
	matchmaker := core.NewMatchmaker(matches)
	auth := core.NewAuthService(identity, sessions, matches, challenges, matchmaker)
	lb := core.NewLeaderboardService(leaderboard)

	disp := core.NewDispatcher()
	core.NewHandlers(auth, sessions, matchmaker, matches, challenges, lb).RegisterAll(disp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 定时器失效时的兜底清扫
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalw("scheduler_init_failed", "err", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(challenges.Sweep),
	)
	if err != nil {
		log.Fatalw("sweep_job_failed", "err", err)
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	go func() {
		if err := observe.StartHTTP(cfg.MetricsAddr); err != nil {
			log.Warnw("metrics_http_failed", "err", err)
		}
	}()

	if err := core.NewServer(disp).Start(ctx, cfg.ListenAddr); err != nil && ctx.Err() == nil {
		log.Errorw("core_server_exit", "err", err)
		os.Exit(1)
	}
	log.Infow("core_shutdown")
}
