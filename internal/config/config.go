// Package config loads habistat configuration from file, environment and
// flags, in that order of increasing precedence.
package config

import (
	"os"
	"regexp"

	"github.com/habistat-labs/habistat/internal/store"
)

// ConfigFileName is the primary config file name.
const ConfigFileName = "habistat.yaml"

// ConfigFileNameAlt is the alternate config file name.
const ConfigFileNameAlt = "habistat.yml"

// Defaults.
const (
	DefaultStoreType = "sqlite"
	DefaultDatabase  = "habistat.db"
	DefaultBatchSize = 1000
	DefaultOutput    = "text"
)

// Config is the resolved service configuration.
type Config struct {
	Store     store.Config `koanf:"store"`
	BatchSize int          `koanf:"batch_size"`
	Verbose   bool         `koanf:"verbose"`
	Output    string       `koanf:"output"` // text or json
}

// envVarPattern matches ${VAR} references in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the environment value, leaving the
// reference intact when the variable is unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// expandStoreEnvVars expands environment references in credential-bearing
// store fields.
func expandStoreEnvVars(cfg *store.Config) {
	cfg.Host = expandEnvVars(cfg.Host)
	cfg.User = expandEnvVars(cfg.User)
	cfg.Password = expandEnvVars(cfg.Password)
	cfg.DBName = expandEnvVars(cfg.DBName)
	cfg.Database = expandEnvVars(cfg.Database)
}
