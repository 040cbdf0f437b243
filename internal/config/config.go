package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IdentityConfig describes the external identity provider: the shared
// secret used to verify its access tokens and the admin endpoint used to
// flip the provider-side disabled flag.
type IdentityConfig struct {
	TokenSecret string
	AdminURL    string
	AdminAPIKey string
	Timeout     time.Duration
	OwnerUID    string
}

type HonorConfig struct {
	Window           time.Duration
	MaxPerWindow     int
	MaxPerPairWindow int
	RankingsCacheTTL time.Duration
}

type MaintenanceConfig struct {
	FriendRequestTTL      time.Duration
	NotificationRetention time.Duration
	EmptyThreadAge        time.Duration
	BatchSize             int
	Stream                string
	Group                 string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Identity         IdentityConfig
	Honor            HonorConfig
	Maintenance      MaintenanceConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SCRIMHUB")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("identity.timeout", "10s")

	v.SetDefault("honor.window", "24h")
	v.SetDefault("honor.maxperwindow", 5)
	v.SetDefault("honor.maxperpairwindow", 1)
	v.SetDefault("honor.rankingscachettl", "30s")

	v.SetDefault("maintenance.friendrequestttl", "336h")      // 14 days
	v.SetDefault("maintenance.notificationretention", "720h") // 30 days
	v.SetDefault("maintenance.emptythreadage", "168h")        // 7 days
	v.SetDefault("maintenance.batchsize", 500)
	v.SetDefault("maintenance.stream", "maintenance:tasks")
	v.SetDefault("maintenance.group", "sweepers")
}
