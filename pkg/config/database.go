package config

import (
	"fmt"

	dbutils "github.com/tendant/db-utils/db"
)

// StoreKind selects the user repository backing store.
type StoreKind string

const (
	StoreInMemory StoreKind = "inmem"
	StorePostgres StoreKind = "postgres"
)

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"USERS_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"USERS_PG_PORT" env-default:"5432"`
	Database string `env:"USERS_PG_DATABASE" env-default:"users_db"`
	User     string `env:"USERS_PG_USER" env-default:"users"`
	Password string `env:"USERS_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"USERS_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

// NewDatabaseConfigFromEnv creates a DatabaseConfig from environment variables
func NewDatabaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     GetEnvOrDefault("USERS_PG_HOST", "localhost"),
		Port:     GetEnvUint16("USERS_PG_PORT", 5432),
		Database: GetEnvOrDefault("USERS_PG_DATABASE", "users_db"),
		User:     GetEnvOrDefault("USERS_PG_USER", "users"),
		Password: GetEnvOrDefault("USERS_PG_PASSWORD", "pwd"),
		Schema:   GetEnvOrDefault("USERS_PG_SCHEMA", "public"),
	}
}

// StoreKindFromEnv reads USER_STORE and falls back to the in-memory store
// when the value is missing or unrecognized.
func StoreKindFromEnv() StoreKind {
	switch GetEnvOrDefault("USER_STORE", string(StoreInMemory)) {
	case string(StorePostgres):
		return StorePostgres
	default:
		return StoreInMemory
	}
}
