package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hostavail"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr         = ""
	DefaultRedisDB           = 0
	DefaultEventTypeCacheTTL = 5 * time.Minute

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAvailabilityFetchConcurrency = 8

	DefaultKafkaEnabled        = false
	DefaultKafkaDecisionsTopic = "availability.decisions"
	DefaultKafkaDecisionsDLQ   = "availability.decisions.dlq"
)
