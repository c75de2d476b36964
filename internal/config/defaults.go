package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL   = "https://esi.evetech.net/latest"
	DefaultUserAgent = "evemarket/0.1"
	DefaultTimeout   = 30 * time.Second
	DefaultPermits   = 20

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	// History is published upstream once per UTC day shortly after 11:00;
	// fetch at 12:00:00. Orders churn continuously; fetch every 30 minutes.
	DefaultHistoryCron = "0 0 12 * * *"
	DefaultOrdersCron  = "0 */30 * * * *"

	DefaultHistoryChunkSize = 100
	DefaultOrderBatchSize   = 1000

	DefaultHealthPort = 8080
)

func (c *Config) applyDefaults() {
	// ESI defaults
	if c.ESI.BaseURL == "" {
		c.ESI.BaseURL = DefaultBaseURL
	}
	if c.ESI.UserAgent == "" {
		c.ESI.UserAgent = DefaultUserAgent
	}
	if c.ESI.Timeout == 0 {
		c.ESI.Timeout = DefaultTimeout
	}
	if c.ESI.Permits == 0 {
		c.ESI.Permits = DefaultPermits
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Schedule defaults
	if c.Schedules.History == "" {
		c.Schedules.History = DefaultHistoryCron
	}
	if c.Schedules.Orders == "" {
		c.Schedules.Orders = DefaultOrdersCron
	}

	// Pipeline defaults
	if c.Pipelines.HistoryChunkSize == 0 {
		c.Pipelines.HistoryChunkSize = DefaultHistoryChunkSize
	}
	if c.Pipelines.OrderBatchSize == 0 {
		c.Pipelines.OrderBatchSize = DefaultOrderBatchSize
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
