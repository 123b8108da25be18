// Package config holds the shared configuration structs and env
// helpers used by the service entry points.
package config
