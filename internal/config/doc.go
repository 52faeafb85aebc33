// Package config manages application configuration for the Huddle API.
//
// Configuration is loaded from environment variables and checked once at
// startup:
//
//	cfg, _ := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Groups
//
//   - ServerConfig: port, environment, timeouts, CORS origins, SPA directory
//   - DatabaseConfig: GORM driver (postgres or sqlite) and pool sizing
//   - RedisConfig: optional profile cache and chat backplane
//   - JWTConfig: RS256 key paths, issuer, token lifetime
//   - RateLimitConfig: per-client token bucket
//   - TelemetryConfig: OpenTelemetry tracing and Prometheus metrics
//
// # Environment Variables
//
//	SERVER_PORT          - HTTP server port (default: 8080)
//	SERVER_ENV           - development | production | test
//	DB_DRIVER            - postgres | sqlite (default: sqlite)
//	DATABASE_URL         - driver DSN
//	REDIS_ADDR           - host:port, empty disables Redis
//	JWT_PRIVATE_KEY_PATH - PEM encoded RSA private key
//	JWT_PUBLIC_KEY_PATH  - PEM encoded RSA public key
//	OTEL_ENABLED         - enable trace export
//	METRICS_ENABLED      - expose /metrics
package config
