package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Navigation NavigationConfig
	Ticket     TicketConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NavigationConfig 決定畫面交接 (hand-off) 往外送的方式
type NavigationConfig struct {
	Driver     string // "redis" 或 "memory"
	StreamKey  string
	BufferSize int
}

// TicketConfig 票券預覽相關的呈現設定
type TicketConfig struct {
	FallbackImageURL     string
	Location             *time.Location
	DefaultViewportWidth float64
	PreviewIdleTTL       time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:     GetServerConfig(),
		Database:   GetDatabaseConfig(),
		Redis:      GetRedisConfig(),
		Navigation: GetNavigationConfig(),
		Ticket:     GetTicketConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "test",
			AllowedOrigins: []string{"*"},
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Navigation: NavigationConfig{
			Driver:     "memory",
			StreamKey:  "navigation:test:stream",
			BufferSize: 16,
		},
		Ticket: TicketConfig{
			FallbackImageURL:     "/assets/ticket-fallback.png",
			Location:             time.UTC,
			DefaultViewportWidth: 390,
			PreviewIdleTTL:       time.Minute,
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetNavigationConfig() NavigationConfig {
	return NavigationConfig{
		Driver:     getEnv("NAVIGATION_DRIVER", "redis"),
		StreamKey:  getEnv("NAVIGATION_STREAM", "navigation:stream"),
		BufferSize: getEnvInt("NAVIGATION_BUFFER_SIZE", 64),
	}
}

func GetTicketConfig() TicketConfig {
	loc, err := time.LoadLocation(getEnv("TICKET_TIMEZONE", "UTC"))
	if err != nil {
		panic(err)
	}

	width, err := strconv.ParseFloat(getEnv("DEFAULT_VIEWPORT_WIDTH", "390"), 64)
	if err != nil {
		panic(err)
	}

	ttl, err := time.ParseDuration(getEnv("PREVIEW_IDLE_TTL", "30m"))
	if err != nil {
		panic(err)
	}

	return TicketConfig{
		FallbackImageURL:     getEnv("FALLBACK_IMAGE_URL", "/assets/ticket-fallback.png"),
		Location:             loc,
		DefaultViewportWidth: width,
		PreviewIdleTTL:       ttl,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		panic(err)
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
