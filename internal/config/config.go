package config

import "time"

// Config is the root configuration for an ingester instance.
type Config struct {
	ESI       ESIConfig       `yaml:"esi"`
	Database  DBConfig        `yaml:"database"`
	Regions   []int64         `yaml:"regions"`
	Schedules SchedulesConfig `yaml:"schedules"`
	Pipelines PipelinesConfig `yaml:"pipelines"`
	Health    HealthConfig    `yaml:"health"`
}

// ESIConfig holds upstream API settings.
type ESIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Permits   int64         `yaml:"permits"` // Max concurrent outbound requests
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SchedulesConfig holds one cron expression per data kind, interpreted with
// seconds resolution. History updates once per UTC day after the upstream
// cutoff; orders churn continuously.
type SchedulesConfig struct {
	History string `yaml:"history"`
	Orders  string `yaml:"orders"`
}

// PipelinesConfig holds ingestion tuning knobs.
type PipelinesConfig struct {
	HistoryChunkSize int  `yaml:"history_chunk_size"` // Items per history fetch chunk
	OrderBatchSize   int  `yaml:"order_batch_size"`   // Rows per order upsert transaction
	PublishCheck     bool `yaml:"publish_check"`      // Re-check publish state before history fetches
}

// HealthConfig holds the ops health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
