package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Ramsey-B/fern/pkg/utils"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

type Config struct {
	AppName                       string   `envconfig:"APP_NAME" default:"fern-api"`
	Port                          int      `envconfig:"PORT" default:"3004" validate:"min=1,max=65535"`
	LogLevel                      string   `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs                    bool     `envconfig:"PRETTY_LOGS" default:"false"`
	HttpServerWriteTimeoutSeconds int      `envconfig:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" default:"10"`
	HttpServerReadTimeoutSeconds  int      `envconfig:"HTTP_SERVER_READ_TIMEOUT_SECONDS" default:"10"`
	AllowOrigins                  []string `envconfig:"HTTP_SERVER_ALLOW_ORIGINS" default:"*"`
	AllowMethods                  []string `envconfig:"HTTP_SERVER_ALLOW_METHODS" default:"GET,POST,PUT,DELETE"`

	// Settlement polling
	SettlementID     string        `envconfig:"SETTLEMENT_ID"` // required; startup fails hard when missing
	ScrapeInterval   time.Duration `envconfig:"SCRAPE_INTERVAL" default:"60s"`
	ScrapeLockTTL    time.Duration `envconfig:"SCRAPE_LOCK_TTL" default:"55s"`
	ScrapeCooldown   time.Duration `envconfig:"SCRAPE_COOLDOWN" default:"5m"`
	BitjitaBaseURL   string        `envconfig:"BITJITA_BASE_URL" default:"https://bitjita.com" validate:"url"`
	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	SnapshotDir      string        `envconfig:"SNAPSHOT_DIR" default:"scraped-data"`
	SnapshotEnabled  bool          `envconfig:"SNAPSHOT_ENABLED" default:"true"`
	CatalogCacheTTL  time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"1h"`
	CatalogRedisKey  string        `envconfig:"CATALOG_REDIS_KEY" default:"fern:catalog"`
	PollerLockPrefix string        `envconfig:"POLLER_LOCK_PREFIX" default:"scrape:"`

	// PostgreSQL
	DatabaseDriver                string        `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseHost                  string        `envconfig:"DB_HOST" default:""`
	DatabasePort                  string        `envconfig:"DB_PORT" default:"5432"`
	DatabaseUserName              string        `envconfig:"DB_USER_NAME" default:""`
	DatabasePassword              string        `envconfig:"DB_PASSWORD" default:""`
	DatabaseName                  string        `envconfig:"DB_NAME" default:"fern"`
	DatabaseSSLMode               string        `envconfig:"DB_SQL_MODE" default:"disable"`
	DatabaseMaxOpenConns          int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DatabaseMaxIdleConns          int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DatabaseConnMaxLifetime       time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"10s"`
	DatabaseMigrationFolderPath   string        `envconfig:"DB_MIGRATION_FOLDER_PATH" default:"db/pg"`
	DatabaseMigrationVersion      int           `envconfig:"DB_MIGRATION_VERSION" default:"0"`
	DatabaseMigrationForce        int           `envconfig:"DB_MIGRATION_FORCE" default:"0"`
	DatabaseMigrationAutoRollback bool          `envconfig:"DB_MIGRATION_AUTO_ROLLBACK" default:"true"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Kafka Producer settings
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaOutputTopic  string   `envconfig:"KAFKA_OUTPUT_TOPIC" default:"settlement-events"`
	KafkaBatchSize    int      `envconfig:"KAFKA_BATCH_SIZE" default:"100"`
	KafkaBatchTimeout int      `envconfig:"KAFKA_BATCH_TIMEOUT_MS" default:"100"`
	KafkaRequiredAcks int      `envconfig:"KAFKA_REQUIRED_ACKS" default:"1"`
	KafkaCompression  string   `envconfig:"KAFKA_COMPRESSION" default:"snappy" validate:"oneof=none snappy gzip lz4 zstd"`
	KafkaEnabled      bool     `envconfig:"KAFKA_ENABLED" default:"true"`

	// Tracing
	TracingEnabled  bool   `envconfig:"TRACING_ENABLED" default:"false"`
	TracingEndpoint string `envconfig:"TRACING_ENDPOINT" default:"localhost:4317"`
	TracingProtocol string `envconfig:"TRACING_PROTOCOL" default:"grpc" validate:"oneof=grpc http"`
	TracingInsecure bool   `envconfig:"TRACING_INSECURE" default:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := utils.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
