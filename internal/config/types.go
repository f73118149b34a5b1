package config

// Config represents the complete configuration structure
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// DatabaseConfig holds the storage location
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address   string          `mapstructure:"address"`
	Port      int             `mapstructure:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the global token bucket
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// BackupConfig controls database file backups
type BackupConfig struct {
	Dir             string `mapstructure:"dir"`
	MaxBackups      int    `mapstructure:"max_backups"`
	ScheduleEnabled bool   `mapstructure:"schedule_enabled"`
}
