package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Gateway  GatewayConfig
	Server   ServerConfig
	Auth     AuthConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedDemoUsers   bool
}

// GatewayConfig holds payment service provider settings
type GatewayConfig struct {
	BaseUrl        string
	PublicKey      string
	SecretKey      string
	RequestTimeout time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	PublicUrl       string
	KycReviewSecret string
	ShutdownTimeout time.Duration
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JwtSecret string
	TokenTtl  time.Duration
}
