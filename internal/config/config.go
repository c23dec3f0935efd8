package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 回合超时缺牌时的补牌策略
const (
	AutoPickLowest = "lowest"
	AutoPickRandom = "random"
)

// Core 核心进程配置
type Core struct {
	ListenAddr  string // 网关链路监听地址
	MetricsAddr string

	PostgresDSN string // 空则使用内存身份/排行榜存储
	RedisAddr   string // 空则终局记录只落内存
	RedisDB     int
	RedisStream string

	RoundTimeout     time.Duration
	ChallengeTimeout time.Duration
	AutoPickPolicy   string
	OutBuffer        int
}

// Gateway 网关进程配置
type Gateway struct {
	ListenAddr  string // 客户端 WebSocket 监听地址
	WSPath      string
	CoreAddr    string // 核心后端地址
	MetricsAddr string

	OutBuffer         int
	HeartbeatInterval time.Duration
	ReconnectBase     time.Duration
	ReconnectMax      time.Duration
}

// LoadCore 从环境变量读取核心配置，存在 .env 时先加载
func LoadCore() *Core {
	_ = godotenv.Load()
	return &Core{
		ListenAddr:       getEnv("DUEL_CORE_ADDR", ":9090"),
		MetricsAddr:      getEnv("DUEL_CORE_METRICS_ADDR", ":9091"),
		PostgresDSN:      getEnv("DUEL_POSTGRES_DSN", ""),
		RedisAddr:        getEnv("DUEL_REDIS_ADDR", ""),
		RedisDB:          getEnvInt("DUEL_REDIS_DB", 0),
		RedisStream:      getEnv("DUEL_REDIS_STREAM", "duel:match_results"),
		RoundTimeout:     getEnvDuration("DUEL_ROUND_TIMEOUT", 10*time.Second),
		ChallengeTimeout: getEnvDuration("DUEL_CHALLENGE_TIMEOUT", 15*time.Second),
		AutoPickPolicy:   getEnv("DUEL_AUTOPICK_POLICY", AutoPickLowest),
		OutBuffer:        getEnvInt("DUEL_OUTBUF", 256),
	}
}

// LoadGateway 从环境变量读取网关配置
func LoadGateway() *Gateway {
	_ = godotenv.Load()
	return &Gateway{
		ListenAddr:        getEnv("DUEL_GATEWAY_ADDR", ":8080"),
		WSPath:            getEnv("DUEL_GATEWAY_WS_PATH", "/ws"),
		CoreAddr:          getEnv("DUEL_CORE_ADDR", "localhost:9090"),
		MetricsAddr:       getEnv("DUEL_GATEWAY_METRICS_ADDR", ":8081"),
		OutBuffer:         getEnvInt("DUEL_OUTBUF", 256),
		HeartbeatInterval: getEnvDuration("DUEL_HEARTBEAT_INTERVAL", 30*time.Second),
		ReconnectBase:     getEnvDuration("DUEL_RECONNECT_BASE", time.Second),
		ReconnectMax:      getEnvDuration("DUEL_RECONNECT_MAX", 30*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
