package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Providers ProvidersConfig
	Log       LogConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig - настройки кеша результатов с TTL по типу операции
type CacheConfig struct {
	Enabled       bool
	GeocodeTTL    time.Duration
	DirectionsTTL time.Duration
	ModesTTL      time.Duration
	DefaultTTL    time.Duration
}

// RateLimitConfig - лимиты запросов по категориям операций
type RateLimitConfig struct {
	DefaultWindow    time.Duration
	DefaultMax       int
	GeocodeWindow    time.Duration
	GeocodeMax       int
	DirectionsWindow time.Duration
	DirectionsMax    int
	StrictWindow     time.Duration
	StrictMax        int
	CleanupInterval  time.Duration
}

// ProvidersConfig - учетные данные и базовые URL внешних провайдеров
type ProvidersConfig struct {
	Google GoogleConfig
	Mapbox MapboxConfig
	OSM    OSMConfig
}

type GoogleConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout int
}

type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	RequestTimeout int
}

type OSMConfig struct {
	NominatimURL   string
	OSRMURL        string
	UserAgent      string
	RequestTimeout int
	// Минимальный интервал между исходящими запросами (политика Nominatim)
	MinInterval time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:       viper.GetBool("ENABLE_CACHE"),
			GeocodeTTL:    time.Duration(viper.GetInt("GEOCODE_CACHE_TTL")) * time.Second,
			DirectionsTTL: time.Duration(viper.GetInt("DIRECTIONS_CACHE_TTL")) * time.Second,
			ModesTTL:      time.Duration(viper.GetInt("MODES_CACHE_TTL")) * time.Second,
			DefaultTTL:    time.Duration(viper.GetInt("DEFAULT_CACHE_TTL")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			DefaultWindow:    time.Duration(viper.GetInt("RATE_DEFAULT_WINDOW")) * time.Second,
			DefaultMax:       viper.GetInt("RATE_DEFAULT_MAX"),
			GeocodeWindow:    time.Duration(viper.GetInt("RATE_GEOCODE_WINDOW")) * time.Second,
			GeocodeMax:       viper.GetInt("RATE_GEOCODE_MAX"),
			DirectionsWindow: time.Duration(viper.GetInt("RATE_DIRECTIONS_WINDOW")) * time.Second,
			DirectionsMax:    viper.GetInt("RATE_DIRECTIONS_MAX"),
			StrictWindow:     time.Duration(viper.GetInt("RATE_STRICT_WINDOW")) * time.Second,
			StrictMax:        viper.GetInt("RATE_STRICT_MAX"),
			CleanupInterval:  time.Duration(viper.GetInt("RATE_CLEANUP_INTERVAL")) * time.Second,
		},
		Providers: ProvidersConfig{
			Google: GoogleConfig{
				APIKey:         viper.GetString("GOOGLE_MAPS_API_KEY"),
				BaseURL:        viper.GetString("GOOGLE_MAPS_BASE_URL"),
				RequestTimeout: viper.GetInt("GOOGLE_REQUEST_TIMEOUT"),
			},
			Mapbox: MapboxConfig{
				AccessToken:    viper.GetString("MAPBOX_ACCESS_TOKEN"),
				BaseURL:        viper.GetString("MAPBOX_BASE_URL"),
				RequestTimeout: viper.GetInt("MAPBOX_REQUEST_TIMEOUT"),
			},
			OSM: OSMConfig{
				NominatimURL:   viper.GetString("OSM_NOMINATIM_URL"),
				OSRMURL:        viper.GetString("OSM_OSRM_URL"),
				UserAgent:      viper.GetString("OSM_USER_AGENT"),
				RequestTimeout: viper.GetInt("OSM_REQUEST_TIMEOUT"),
				MinInterval:    time.Duration(viper.GetInt("OSM_MIN_INTERVAL_MS")) * time.Millisecond,
			},
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Cache.GeocodeTTL == 0 {
		cfg.Cache.GeocodeTTL = 24 * time.Hour
	}
	if cfg.Cache.DirectionsTTL == 0 {
		cfg.Cache.DirectionsTTL = time.Hour
	}
	if cfg.Cache.ModesTTL == 0 {
		cfg.Cache.ModesTTL = 24 * time.Hour
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = time.Hour
	}

	if cfg.RateLimit.DefaultWindow == 0 {
		cfg.RateLimit.DefaultWindow = 15 * time.Minute
	}
	if cfg.RateLimit.DefaultMax == 0 {
		cfg.RateLimit.DefaultMax = 100
	}
	if cfg.RateLimit.GeocodeWindow == 0 {
		cfg.RateLimit.GeocodeWindow = time.Hour
	}
	if cfg.RateLimit.GeocodeMax == 0 {
		cfg.RateLimit.GeocodeMax = 1000
	}
	if cfg.RateLimit.DirectionsWindow == 0 {
		cfg.RateLimit.DirectionsWindow = time.Hour
	}
	if cfg.RateLimit.DirectionsMax == 0 {
		cfg.RateLimit.DirectionsMax = 500
	}
	if cfg.RateLimit.StrictWindow == 0 {
		cfg.RateLimit.StrictWindow = time.Hour
	}
	if cfg.RateLimit.StrictMax == 0 {
		cfg.RateLimit.StrictMax = 50
	}
	if cfg.RateLimit.CleanupInterval == 0 {
		cfg.RateLimit.CleanupInterval = 5 * time.Minute
	}

	if cfg.Providers.Google.BaseURL == "" {
		cfg.Providers.Google.BaseURL = "https://maps.googleapis.com/maps/api"
	}
	if cfg.Providers.Google.RequestTimeout == 0 {
		cfg.Providers.Google.RequestTimeout = 10
	}
	if cfg.Providers.Mapbox.BaseURL == "" {
		cfg.Providers.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Providers.Mapbox.RequestTimeout == 0 {
		cfg.Providers.Mapbox.RequestTimeout = 10
	}
	if cfg.Providers.OSM.NominatimURL == "" {
		cfg.Providers.OSM.NominatimURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Providers.OSM.OSRMURL == "" {
		cfg.Providers.OSM.OSRMURL = "https://router.project-osrm.org"
	}
	if cfg.Providers.OSM.UserAgent == "" {
		cfg.Providers.OSM.UserAgent = "maps-gateway"
	}
	if cfg.Providers.OSM.RequestTimeout == 0 {
		cfg.Providers.OSM.RequestTimeout = 10
	}
	if cfg.Providers.OSM.MinInterval == 0 {
		cfg.Providers.OSM.MinInterval = time.Second
	}

	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "usage-stats-workers"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
