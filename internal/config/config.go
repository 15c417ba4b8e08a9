package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	rediskey "qr_menu/pkg/redis"

	"github.com/joho/godotenv"
)

// StoreKind 选择订单存储实现，启动时确定一次。
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

// StoreConfig 是启动时选定的存储及其配置。
type StoreConfig struct {
	Kind StoreKind

	SQLitePath string

	RemoteURL          string
	RemoteKey          string
	RemoteMaxOpenConns int
	RemoteMaxIdleConns int
}

// HasRemoteCredentials 判断远程地址和密钥是否都已配置。
func (s StoreConfig) HasRemoteCredentials() bool {
	return s.RemoteURL != "" && s.RemoteKey != ""
}

// AppConfig 聚合运行时配置，通过环境变量注入。
type AppConfig struct {
	AppEnv     string
	HTTPAddr   string
	Restricted bool

	Store    StoreConfig
	MenuPath string

	// 可选的有损结账：无法记录 paid 时直接删除该桌订单
	CheckoutDeleteFallback bool

	// 管理员口令；为空时 /api/admin 不做校验
	AdminToken string

	CORSOrigins           []string
	CORSOriginsRestricted []string

	LogLevel    string
	LogEncoding string

	// Redis 可选；地址为空时使用进程内限流，且不启用事件 outbox
	RedisAddr  string
	RedisDB    int
	RateLimit  int
	RateWindow time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	OrderEventStream   string
	OrderEventGroup    string
	OrderEventConsumer string
}

// IsProduction 判断 APP_ENV 是否为生产环境。
func (c AppConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowedOrigins 返回当前模式下的 CORS 白名单。
func (c AppConfig) AllowedOrigins() []string {
	if c.Restricted {
		return c.CORSOriginsRestricted
	}
	return c.CORSOrigins
}

// KafkaEnabled 判断是否至少配置了一个 broker。
func (c AppConfig) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load 先读取 .env（若存在），再读环境变量，并校验结果。
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv 只从进程环境变量构建配置。
func FromEnv() (AppConfig, error) {
	cfg := AppConfig{
		AppEnv:   getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":3002"),
		Store: StoreConfig{
			Kind:       StoreKind(strings.ToLower(getEnv("STORE_DRIVER", ""))),
			SQLitePath: getEnv("SQLITE_PATH", ""),
			RemoteURL:  getEnv("REMOTE_DB_URL", ""),
			RemoteKey:  getEnv("REMOTE_DB_KEY", ""),
		},
		MenuPath:   getEnv("MENU_PATH", "menu.csv"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:5173,http://localhost:3001")),
		CORSOriginsRestricted: splitCSV(getEnv("CORS_ORIGINS_RESTRICTED", "")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogEncoding:           getEnv("LOG_ENCODING", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RateLimit:             100,
		RateWindow:            time.Minute,
		KafkaBrokers:          splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "qr-menu-order-events"),
		KafkaGroupID:          getEnv("KAFKA_GROUP_ID", "qr-menu-kitchen"),
		OrderEventStream:      getEnv("ORDER_EVENT_STREAM", rediskey.OrderEventStream()),
		OrderEventGroup:       getEnv("ORDER_EVENT_GROUP", "qr-menu-relay-group"),
		OrderEventConsumer:    getEnv("ORDER_EVENT_CONSUMER", "qr-menu-relay-1"),
	}

	restricted, err := getEnvBool("RESTRICTED_MODE", cfg.IsProduction())
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RESTRICTED_MODE: %w", err)
	}
	cfg.Restricted = restricted

	fallback, err := getEnvBool("CHECKOUT_DELETE_FALLBACK", false)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_DELETE_FALLBACK: %w", err)
	}
	cfg.CheckoutDeleteFallback = fallback

	if cfg.LogEncoding == "" {
		cfg.LogEncoding = "console"
		if cfg.IsProduction() {
			cfg.LogEncoding = "json"
		}
	}
	if cfg.LogEncoding != "console" && cfg.LogEncoding != "json" {
		return AppConfig{}, fmt.Errorf("LOG_ENCODING must be console or json")
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("RATE_LIMIT", cfg.RateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("RATE_LIMIT must be > 0")
	}
	cfg.RateLimit = rateLimit

	rateWindowSec, err := getEnvInt("RATE_WINDOW_SEC", int(cfg.RateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("RATE_WINDOW_SEC must be > 0")
	}
	cfg.RateWindow = time.Duration(rateWindowSec) * time.Second

	maxOpen, err := getEnvInt("REMOTE_DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REMOTE_DB_MAX_OPEN_CONNS: %w", err)
	}
	cfg.Store.RemoteMaxOpenConns = maxOpen
	maxIdle, err := getEnvInt("REMOTE_DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REMOTE_DB_MAX_IDLE_CONNS: %w", err)
	}
	cfg.Store.RemoteMaxIdleConns = maxIdle

	kind, err := resolveStoreKind(cfg.Store)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.Store.Kind = kind

	if cfg.OrderEventStream == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_STREAM must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}

	return cfg, nil
}

// resolveStoreKind 选择规则：显式指定的驱动优先；否则
// 有远程凭据用 postgres，有 SQLite 路径用 sqlite，都没有则用内存。
func resolveStoreKind(s StoreConfig) (StoreKind, error) {
	switch s.Kind {
	case "":
		switch {
		case s.HasRemoteCredentials():
			return StorePostgres, nil
		case s.SQLitePath != "":
			return StoreSQLite, nil
		default:
			return StoreMemory, nil
		}
	case StoreMemory:
		return StoreMemory, nil
	case StoreSQLite:
		if s.SQLitePath == "" {
			return "", fmt.Errorf("SQLITE_PATH is required for STORE_DRIVER=sqlite")
		}
		return StoreSQLite, nil
	case StorePostgres:
		if !s.HasRemoteCredentials() {
			return "", fmt.Errorf("REMOTE_DB_URL and REMOTE_DB_KEY are required for STORE_DRIVER=postgres")
		}
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("unknown STORE_DRIVER %q", s.Kind)
	}
}

// getEnv 读取字符串环境变量（去除首尾空白），为空时返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// splitCSV 将逗号分隔字符串解析为切片，忽略空项。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
