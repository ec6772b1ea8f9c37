package config

import "time"

// Platform definition platform_service YAML structure
type Platform struct {
	Port       string        `mapstructure:"port"`
	IP         string        `mapstructure:"ip"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PostgreSQL   DatabaseConfig `mapstructure:"pg"`
	RedisSession RedisConfig    `mapstructure:"redis"`
	Rabbit       RabbitConfig   `mapstructure:"rabbit"`
	Kafka        KafkaConfig    `mapstructure:"kafka"`
	MinIO        MinIOConfig    `mapstructure:"minio"`

	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
}

// Notification definition notification_service YAML structure
type Notification struct {
	PostgreSQL     DatabaseConfig `mapstructure:"pg"`
	Rabbit         RabbitConfig   `mapstructure:"rabbit"`
	WebhookTimeout time.Duration  `mapstructure:"webhook_timeout"`
}

// SearchIndexer definition search_indexer YAML structure
type SearchIndexer struct {
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`
	RedisIndex RedisConfig    `mapstructure:"redis"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// RabbitConfig definition rabbitmq setting
type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
