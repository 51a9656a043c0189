// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	SCHEMAHUB_HOST="0.0.0.0"
//	SCHEMAHUB_PORT="8080"
//	SCHEMAHUB_HEALTH_PORT="8081"
//	SCHEMAHUB_READ_TIMEOUT="30s"
//	SCHEMAHUB_WRITE_TIMEOUT="30s"
//
// Storage settings:
//
//	SCHEMAHUB_STORAGE_TYPE="postgres"  # filesystem, postgres, hybrid
//	SCHEMAHUB_FILESYSTEM_ROOT="/var/schemahub/data"
//	SCHEMAHUB_POSTGRES_URL="postgres://localhost/schemahub"
//	SCHEMAHUB_POSTGRES_MAX_CONNS="20"
//	SCHEMAHUB_S3_BUCKET="schemahub-artifacts"
//	SCHEMAHUB_S3_REGION="us-east-1"
//
// Cache settings:
//
//	SCHEMAHUB_CACHE_ENABLED="true"
//	SCHEMAHUB_REDIS_URL="redis://localhost:6379"
//	SCHEMAHUB_REDIS_POOL_SIZE="10"
//
// Registry pipeline settings:
//
//	SCHEMAHUB_LOCK_TTL="10s"
//	SCHEMAHUB_IDEMPOTENCY_WINDOW="15s"
//	SCHEMAHUB_SCHEMA_CHECK_RETENTION="168h"
//	SCHEMAHUB_PURGE_CRON_SCHEDULE="0 */15 * * * *"
//	SCHEMAHUB_WEBHOOK_TIMEOUT="10s"
//
// Observability settings:
//
//	SCHEMAHUB_LOG_LEVEL="info"  # debug, info, warn, error
//	SCHEMAHUB_METRICS_ENABLED="true"
//	SCHEMAHUB_OTEL_ENABLED="true"
//	SCHEMAHUB_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//	fmt.Printf("Lock TTL: %s\n", cfg.Registry.LockTTL)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/lock, pkg/idempotency, pkg/purge: Use registry configuration
//   - pkg/observability: Uses observability configuration
package config
