package config

import "github.com/kelseyhightower/envconfig"

// Env holds process-level configuration. Domain configuration (pool, band,
// thresholds) lives in the database and is read live by the config service.
type Env struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PGHost     string `envconfig:"PG_HOST" default:"localhost"`
	PGPort     string `envconfig:"PG_PORT" default:"5432"`
	PGUser     string `envconfig:"PG_USER" default:"pollen"`
	PGPassword string `envconfig:"PG_PASSWORD" default:""`
	PGDatabase string `envconfig:"PG_DB" default:"pollen"`

	CacheBackend  string `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
}

// Load reads the environment into an Env struct.
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	return &env, nil
}
