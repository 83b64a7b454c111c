package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "servicelink"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTIssuer   = "servicelink"
	DefaultJWTTokenTTL = 24 * time.Hour
	MinJWTSecretLength = 16

	DefaultRedisDB       = 0
	DefaultRedisPoolSize = 10

	DefaultKafkaEnabled       = false
	DefaultBookingEventsTopic = "booking-events"
	DefaultBookingEventsDLQ   = "booking-events-dlq"
	DefaultNotifierGroupID    = "servicelink-notifier"

	DefaultMasterDemoUserID   = "master-demo"
	DefaultMasterDemoEmail    = "master@servicelink.test"
	DefaultMasterDemoFullName = "Master Demo"
)
