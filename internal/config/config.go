package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Social      SocialConfig      `mapstructure:"social"`
	Platforms   PlatformsConfig   `mapstructure:"platforms"`
	EventSource EventSourceConfig `mapstructure:"event_source"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 发布/生成接口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// SocialConfig 社媒帖子生成与发布配置
type SocialConfig struct {
	ClubName                string   `mapstructure:"club_name"`
	ClubTag                 string   `mapstructure:"club_tag"`
	Timezone                string   `mapstructure:"timezone"`
	DefaultPlatforms        []string `mapstructure:"default_platforms"`
	BaseHashtags            []string `mapstructure:"base_hashtags"`
	PublishTimeoutSeconds   int      `mapstructure:"publish_timeout_seconds"`
	AutoMatchday            bool     `mapstructure:"auto_matchday"`
	AutoScanIntervalMinutes int      `mapstructure:"auto_scan_interval_minutes"`
	AutoScanLimit           int      `mapstructure:"auto_scan_limit"`
	DryRun                  bool     `mapstructure:"dry_run"`
}

// PublishTimeout 单平台发布超时
func (c SocialConfig) PublishTimeout() time.Duration {
	if c.PublishTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.PublishTimeoutSeconds) * time.Second
}

// Location 俱乐部所在时区（用于判断比赛日）
func (c SocialConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnw("config_timezone_invalid", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// PlatformsConfig 各社媒平台凭据
type PlatformsConfig struct {
	Retry     PlatformRetryConfig `mapstructure:"retry"`
	Twitter   TwitterConfig       `mapstructure:"twitter"`
	Facebook  FacebookConfig      `mapstructure:"facebook"`
	Instagram InstagramConfig     `mapstructure:"instagram"`
}

// PlatformRetryConfig 平台请求重试配置
type PlatformRetryConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	BackoffMS  int `mapstructure:"backoff_ms"`
}

// TwitterConfig X/Twitter 配置
type TwitterConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	BearerToken string `mapstructure:"bearer_token"`
}

// FacebookConfig Facebook 主页配置
type FacebookConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIVersion  string `mapstructure:"api_version"`
	PageID      string `mapstructure:"page_id"`
	AccessToken string `mapstructure:"access_token"`
}

// InstagramConfig Instagram 商业账号配置
type InstagramConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIVersion  string `mapstructure:"api_version"`
	AccountID   string `mapstructure:"account_id"`
	AccessToken string `mapstructure:"access_token"`
}

// EventSourceConfig 赛事数据源配置
type EventSourceConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	TimeoutMS       int    `mapstructure:"timeout_ms"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持（例如 social.dry_run -> SOCIAL_DRY_RUN）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "clubsocial.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/clubsocial.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cc")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"default":  5,
		"critical": 3,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.rate_limit.window_seconds", 60)
	v.SetDefault("security.rate_limit.max_requests", 30)
	v.SetDefault("social.club_name", "Cwmbran Celtic")
	v.SetDefault("social.club_tag", "")
	v.SetDefault("social.timezone", "Europe/London")
	v.SetDefault("social.default_platforms", []string{"twitter", "facebook", "instagram"})
	v.SetDefault("social.base_hashtags", []string{})
	v.SetDefault("social.publish_timeout_seconds", 15)
	v.SetDefault("social.auto_matchday", true)
	v.SetDefault("social.auto_scan_interval_minutes", 0)
	v.SetDefault("social.auto_scan_limit", 5)
	v.SetDefault("social.dry_run", false)
	v.SetDefault("platforms.retry.max_retries", 2)
	v.SetDefault("platforms.retry.backoff_ms", 500)
	v.SetDefault("platforms.twitter.base_url", "https://api.twitter.com")
	v.SetDefault("platforms.twitter.bearer_token", "")
	v.SetDefault("platforms.facebook.base_url", "https://graph.facebook.com")
	v.SetDefault("platforms.facebook.api_version", "v19.0")
	v.SetDefault("platforms.facebook.page_id", "")
	v.SetDefault("platforms.facebook.access_token", "")
	v.SetDefault("platforms.instagram.base_url", "https://graph.facebook.com")
	v.SetDefault("platforms.instagram.api_version", "v19.0")
	v.SetDefault("platforms.instagram.account_id", "")
	v.SetDefault("platforms.instagram.access_token", "")
	v.SetDefault("event_source.base_url", "")
	v.SetDefault("event_source.api_key", "")
	v.SetDefault("event_source.timeout_ms", 5000)
	v.SetDefault("event_source.cache_ttl_seconds", 300)
}
