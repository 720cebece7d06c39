package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

// StorageConfig selects where review state is persisted.
// Backend is one of: redis, postgres, memory.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN 拼接 postgres 连接串
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// AuthConfig holds the single dashboard owner's credentials.
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

type ProvidersConfig struct {
	Todoist  ProviderConfig `yaml:"todoist"`
	Gmail    ProviderConfig `yaml:"gmail"`
	Calendar ProviderConfig `yaml:"calendar"`
	Toggl    ProviderConfig `yaml:"toggl"`
}

type FetchConfig struct {
	// 并发抓取 worker 数，限制在 2~8 之间
	Workers int `yaml:"workers"`
	// 单个来源请求超时（秒）
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// 日历聚合窗口（天）
	CalendarWindowDays int `yaml:"calendar_window_days"`
}

type NotifierConfig struct {
	WebhookURL   string `yaml:"webhook_url"`
	QueueName    string `yaml:"queue_name"`
	MaxRetries   int64  `yaml:"max_retries"`
	DedupTTLMins int    `yaml:"dedup_ttl_mins"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	MQ        MQConfig        `yaml:"mq"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	Providers ProvidersConfig `yaml:"providers"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Notifier  NotifierConfig  `yaml:"notifier"`
}

func Load() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode %s: %v", path, err)
	}

	// 环境变量覆盖（生产环境使用）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg
}

func overrideFromEnv(cfg *Config) {
	// Server配置
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	// 存储后端
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}

	// DB配置
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	// Redis配置
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	// MQ配置
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	// JWT配置
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	// 登录凭证
	if user := os.Getenv("AUTH_USERNAME"); user != "" {
		cfg.Auth.Username = user
	}
	if hash := os.Getenv("AUTH_PASSWORD_HASH"); hash != "" {
		cfg.Auth.PasswordHash = hash
	}

	// Provider tokens
	if token := os.Getenv("TODOIST_TOKEN"); token != "" {
		cfg.Providers.Todoist.Token = token
	}
	if token := os.Getenv("GMAIL_TOKEN"); token != "" {
		cfg.Providers.Gmail.Token = token
	}
	if token := os.Getenv("GCAL_TOKEN"); token != "" {
		cfg.Providers.Calendar.Token = token
	}
	if token := os.Getenv("TOGGL_TOKEN"); token != "" {
		cfg.Providers.Toggl.Token = token
	}

	// 通知 webhook
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		cfg.Notifier.WebhookURL = url
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "redis"
	}
	if cfg.Fetch.Workers == 0 {
		cfg.Fetch.Workers = 4
	}
	if cfg.Fetch.Workers < 2 {
		cfg.Fetch.Workers = 2
	}
	if cfg.Fetch.Workers > 8 {
		cfg.Fetch.Workers = 8
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 10
	}
	if cfg.Fetch.CalendarWindowDays <= 0 {
		cfg.Fetch.CalendarWindowDays = 7
	}
	if cfg.Notifier.QueueName == "" {
		cfg.Notifier.QueueName = "review-notifications"
	}
	if cfg.Notifier.MaxRetries <= 0 {
		cfg.Notifier.MaxRetries = 5
	}
	if cfg.Notifier.DedupTTLMins <= 0 {
		cfg.Notifier.DedupTTLMins = 30
	}
}
