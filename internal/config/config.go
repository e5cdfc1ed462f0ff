// Package config loads the application configuration on top of the core bot config.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/autoservice-bot/core/config"
	coredatabase "github.com/m3rciful/autoservice-bot/core/database"
)

const defaultSessionTTL = 24 * time.Hour

// RedisConfig points at the session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// SessionConfig bounds how long an abandoned conversation is kept.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
}

// AppointmentsConfig tunes the appointment flow.
type AppointmentsConfig struct {
	// AskService adds an explicit service id step. When false the client id
	// is also used as the service id.
	AskService bool `yaml:"ask_service" envconfig:"APPOINTMENTS_ASK_SERVICE"`
}

// SeedConfig names an optional reference data file applied at startup.
type SeedConfig struct {
	File string `yaml:"file" envconfig:"SEED_FILE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database     coredatabase.Config `yaml:"database"`
	Redis        RedisConfig         `yaml:"redis"`
	Session      SessionConfig       `yaml:"session"`
	Appointments AppointmentsConfig  `yaml:"appointments"`
	Seed         SeedConfig          `yaml:"seed"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Database = c.Database.WithDefaults()
	if strings.TrimSpace(c.Database.Name) == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}
	switch {
	case c.Session.TTL < 0:
		return fmt.Errorf("session.ttl must be >= 0")
	case c.Session.TTL == 0:
		c.Session.TTL = defaultSessionTTL
	}
	c.Seed.File = strings.TrimSpace(c.Seed.File)
	return nil
}
