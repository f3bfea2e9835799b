package config

import (
	"errors"
	"fmt"
	"hostavail/pkg/client"
	"hostavail/pkg/logger"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	EventTypeCacheTTL time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	AvailabilityFetchConcurrency int

	KafkaEnabled        bool
	KafkaDecisionsTopic string
	KafkaDecisionsDLQ   string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from the environment (and an optional .env file),
// validates it and exits the process when it is unusable.
func Load(serviceName string) *Config {
	cfg, err := load(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			readErr = fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{
		MongoURI:          v.GetString(EnvMongoURI),
		MongoDatabaseName: v.GetString(EnvMongoDatabaseName),
		MongoConnTimeout:  parseDuration(v.GetString(EnvMongoConnTimeout), DefaultMongoConnTimeout),

		RedisAddr:         v.GetString(EnvRedisAddr),
		RedisPassword:     v.GetString(EnvRedisPassword),
		RedisDB:           v.GetInt(EnvRedisDB),
		EventTypeCacheTTL: parseDuration(v.GetString(EnvEventTypeCacheTTL), DefaultEventTypeCacheTTL),

		Port:      v.GetString(EnvPort),
		LogLevel:  v.GetString(EnvLogLevel),
		LogFormat: v.GetString(EnvLogFormat),

		RateLimitRequests: v.GetInt(EnvRateLimitRequests),
		RateLimitWindow:   parseDuration(v.GetString(EnvRateLimitWindow), DefaultRateLimitWindow),

		RequestTimeout: parseDuration(v.GetString(EnvRequestTimeout), DefaultRequestTimeout),
		MaxRequestSize: v.GetInt(EnvMaxRequestSize),

		ReadTimeout:     parseDuration(v.GetString(EnvReadTimeout), DefaultReadTimeout),
		WriteTimeout:    parseDuration(v.GetString(EnvWriteTimeout), DefaultWriteTimeout),
		IdleTimeout:     parseDuration(v.GetString(EnvIdleTimeout), DefaultIdleTimeout),
		ShutdownTimeout: parseDuration(v.GetString(EnvShutdownTimeout), DefaultShutdownTimeout),

		AvailabilityFetchConcurrency: v.GetInt(EnvAvailabilityFetchConcurrency),

		KafkaEnabled:        v.GetBool(EnvKafkaEnabled),
		KafkaDecisionsTopic: v.GetString(EnvKafkaDecisionsTopic),
		KafkaDecisionsDLQ:   v.GetString(EnvKafkaDecisionsDLQ),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if readErr != nil {
		return cfg, readErr
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout.String())

	v.SetDefault(EnvRedisAddr, DefaultRedisAddr)
	v.SetDefault(EnvRedisPassword, "")
	v.SetDefault(EnvRedisDB, DefaultRedisDB)
	v.SetDefault(EnvEventTypeCacheTTL, DefaultEventTypeCacheTTL.String())

	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvLogFormat, DefaultLogFormat)

	v.SetDefault(EnvRateLimitRequests, DefaultRateLimitRequests)
	v.SetDefault(EnvRateLimitWindow, DefaultRateLimitWindow.String())

	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout.String())
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)

	v.SetDefault(EnvReadTimeout, DefaultReadTimeout.String())
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout.String())
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout.String())
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout.String())

	v.SetDefault(EnvAvailabilityFetchConcurrency, DefaultAvailabilityFetchConcurrency)

	v.SetDefault(EnvKafkaEnabled, DefaultKafkaEnabled)
	v.SetDefault(EnvKafkaDecisionsTopic, DefaultKafkaDecisionsTopic)
	v.SetDefault(EnvKafkaDecisionsDLQ, DefaultKafkaDecisionsDLQ)
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional event type cache. An empty address leaves it disabled.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis address not configured, event type cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}
	if cfg.EventTypeCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("EventTypeCacheTTL must be positive, got: %s", cfg.EventTypeCacheTTL))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.AvailabilityFetchConcurrency <= 0 {
		errors = append(errors, fmt.Sprintf("AvailabilityFetchConcurrency must be positive, got: %d", cfg.AvailabilityFetchConcurrency))
	}
	if cfg.KafkaEnabled && cfg.KafkaDecisionsTopic == "" {
		errors = append(errors, "KafkaDecisionsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_enabled", cfg.RedisAddr != "",
		"event_type_cache_ttl", cfg.EventTypeCacheTTL,
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"availability_fetch_concurrency", cfg.AvailabilityFetchConcurrency,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_decisions_topic", cfg.KafkaDecisionsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
	_ = cfg.Log.Sync()
}
