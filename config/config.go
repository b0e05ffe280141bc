//Package config loads the bot's configuration from the environment and sets up logging
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

//Prefix is prepended to every environment variable name
const Prefix = "CARETAKER_"

//Backend names the kind of database a DatabaseURL points at
type Backend int

const (
	RethinkDB Backend = iota
	SQL
)

//Config holds every setting read from the environment
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	//DatabaseURL selects the backend by scheme: rethinkdb://, postgres://, postgresql:// or sqlite://
	DatabaseURL string `env:"DATABASE_URL,required"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogTimestamps bool   `env:"LOG_TIMESTAMPS" envDefault:"true"`
	LogColored    bool   `env:"LOG_COLORED" envDefault:"true"`

	LatencyUpdateFreq   time.Duration `env:"LATENCY_UPDATE_FREQ" envDefault:"60s"`
	BroadcastCapacity   int           `env:"BROADCAST_CAPACITY" envDefault:"64"`
	ActionQueueCapacity int           `env:"ACTION_QUEUE_CAPACITY" envDefault:"8"`
	//NotifyRate is the number of notifications per second allowed into a single channel
	NotifyRate  float64 `env:"NOTIFY_RATE" envDefault:"1"`
	NotifyBurst int     `env:"NOTIFY_BURST" envDefault:"5"`

	DBPoolInitial int `env:"DB_POOL_INITIAL" envDefault:"2"`
	DBPoolMax     int `env:"DB_POOL_MAX" envDefault:"20"`
}

//Load reads a .env file if there is one, then parses the environment
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		logrus.Warnf("Failed to load .env file due to error %v", err)
	}
	return parse(nil)
}

//parse reads the configuration from environment, or from the process environment if it is nil
func parse(environment map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{
		Prefix:      Prefix,
		Environment: environment,
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

//Validate checks the values which cannot be expressed as struct tags
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Backend(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}
	if c.LatencyUpdateFreq <= 0 {
		errs = append(errs, fmt.Errorf("%vLATENCY_UPDATE_FREQ must be positive", Prefix))
	}
	if c.BroadcastCapacity < 1 || c.ActionQueueCapacity < 1 {
		errs = append(errs, errors.New("channel capacities must be at least 1"))
	}
	if c.NotifyRate <= 0 || c.NotifyBurst < 1 {
		errs = append(errs, errors.New("notify rate and burst must be positive"))
	}
	if c.DBPoolInitial < 0 || c.DBPoolMax < 1 || c.DBPoolInitial > c.DBPoolMax {
		errs = append(errs, errors.New("invalid database pool size"))
	}
	return errors.Join(errs...)
}

//Backend returns the kind of database DatabaseURL points at
func (c *Config) Backend() (Backend, error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "rethinkdb://"):
		return RethinkDB, nil
	case strings.HasPrefix(c.DatabaseURL, "postgres://"),
		strings.HasPrefix(c.DatabaseURL, "postgresql://"),
		strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		return SQL, nil
	default:
		return 0, fmt.Errorf("unsupported database url `%v`", c.DatabaseURL)
	}
}

//SetupLogging configures the global logrus logger
func (c *Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    c.LogTimestamps,
		DisableTimestamp: !c.LogTimestamps,
		ForceColors:      c.LogColored,
		DisableColors:    !c.LogColored,
	})
	return nil
}
