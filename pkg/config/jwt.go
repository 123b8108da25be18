package config

import "time"

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	Secret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	TokenExpiry string `env:"TOKEN_EXPIRY" env-default:"1h"`
}

// ParseTokenExpiry parses the token expiry duration
func (j JWTConfig) ParseTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.TokenExpiry)
}

// NewJWTConfigFromEnv creates a JWTConfig from environment variables
func NewJWTConfigFromEnv() JWTConfig {
	return JWTConfig{
		Secret:      GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"),
		TokenExpiry: GetEnvOrDefault("TOKEN_EXPIRY", "1h"),
	}
}
