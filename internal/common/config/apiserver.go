package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	APIServerConfig struct {
		Port       int              `yaml:"port"`
		Database   DatabaseConfig   `yaml:"database"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		Notifier   NotifierConfig   `yaml:"notifier"`
		Transcribe TranscribeConfig `yaml:"transcribe"`
		Geocode    GeocodeConfig    `yaml:"geocode"`
		Storage    StorageConfig    `yaml:"storage"`
		Retention  RetentionConfig  `yaml:"retention"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // postgres, mysql, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 5432 (postgres), 3306 (mysql)
		User     string `yaml:"user"`     // postgres
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres only)
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// NotifierConfig selects the realtime fanout transport.
	NotifierConfig struct {
		Type  string              `yaml:"type"` // memory, redis
		Redis NotifierRedisConfig `yaml:"redis"`
	}

	NotifierRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	}

	// TranscribeConfig configures the speech-to-text API client.
	TranscribeConfig struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	}

	// GeocodeConfig configures the Kakao address search client.
	GeocodeConfig struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	}

	// StorageConfig configures object storage URL construction.
	StorageConfig struct {
		BaseURL string `yaml:"base_url"`
		Bucket  string `yaml:"bucket"`
	}

	// RetentionConfig configures the voice memo sweeper.
	RetentionConfig struct {
		Interval time.Duration `yaml:"interval"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 5234
	}
	if c.JWT.Duration == 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Notifier.Type == "" {
		c.Notifier.Type = "memory"
	}
	if c.Notifier.Redis.Stream == "" {
		c.Notifier.Redis.Stream = "storecrew:events"
	}
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = "whisper-1"
	}
	if c.Transcribe.Timeout == 0 {
		c.Transcribe.Timeout = 45 * time.Second
	}
	if c.Geocode.Timeout == 0 {
		c.Geocode.Timeout = 15 * time.Second
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "uploads"
	}
	if c.Retention.Interval == 0 {
		c.Retention.Interval = time.Hour
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		if dir := filepath.Dir(c.DBName); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
			}
		}
		return c.DBName
	default:
		return ""
	}
}
