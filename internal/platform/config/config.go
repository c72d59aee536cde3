// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (pool, runner, server) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Fedisearch server.
type Config struct {

	// Server settings
	Port        string `env:"PORT"        envDefault:"8000"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	// Relational Database (PostgreSQL)
	Postgres Postgres `envPrefix:"POSTGRES_"`

	// Federation crawler
	Crawler Crawler `envPrefix:"CRAWLER_"`

	// Optional search-response cache (Redis). Empty disables caching.
	CacheURL string `env:"CACHE_URL"`
}

// Postgres describes the connection pool settings for the index store.
type Postgres struct {
	Hostname string `env:"HOSTNAME,required"`
	Port     uint16 `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER,required"`
	Password string `env:"PASSWORD,required"`
	Database string `env:"DATABASE,required"`

	// MaxSize bounds the pool; checkouts past this wait for a free connection.
	MaxSize int32 `env:"MAX_SIZE" envDefault:"25"`

	// Log enables per-statement logging.
	Log bool `env:"LOG" envDefault:"false"`
}

// Crawler describes scheduling and politeness settings for the federation crawler.
type Crawler struct {
	// SeedInstance is the hostname that bootstraps the known-instance set.
	SeedInstance string `env:"SEED_INSTANCE,required"`

	// UserAgent identifies the crawler to robots.txt and upstream instances.
	UserAgent string `env:"USER_AGENT" envDefault:"fedisearch-crawler/0.1"`

	// PassInterval is the period between full crawl passes.
	PassInterval time.Duration `env:"PASS_INTERVAL" envDefault:"6h"`

	// MaxParallel bounds the number of instances crawled concurrently.
	MaxParallel int `env:"MAX_PARALLEL" envDefault:"4"`

	// Backoff is the initial retry interval after a transient network failure.
	Backoff time.Duration `env:"BACKOFF" envDefault:"30s"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
// Development mode gates the /heartbeat and /crawl routes.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
