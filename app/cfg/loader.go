package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// ErrHelp is returned when --help was requested and printed.
var ErrHelp = errors.New("help requested")

type rawCfg struct {
	// Document store configuration
	Store                  string `long:"store" env:"STORE" default:"firestore" choice:"firestore" choice:"mongo" choice:"sqlite" description:"Document store backend"`
	FirebaseServiceAccount string `long:"firebase-service-account" env:"FIREBASE_SERVICE_ACCOUNT" description:"JSON-encoded service account credential (required for firestore)"`
	MongoURI               string `long:"mongo-uri" env:"MONGO_URI" default:"mongodb://localhost:27017" description:"MongoDB connection URI"`
	MongoDatabase          string `long:"mongo-database" env:"MONGO_DATABASE" default:"classboard" description:"MongoDB database name"`
	SQLitePath             string `long:"sqlite-path" env:"SQLITE_PATH" default:"./classboard.db" description:"SQLite database file"`

	// Job configuration
	Timezone    string `long:"timezone" env:"TZ_NAME" default:"America/Sao_Paulo" description:"Class timezone used to resolve dates"`
	FiltersFile string `long:"filters-file" env:"FILTERS_FILE" description:"YAML file with news feed and keyword filters (embedded default when empty)"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"Classboard/1.0" description:"User agent string for HTTP requests"`

	// Optional integrations
	NATSUrl   string `long:"nats-url" env:"NATS_URL" description:"NATS server for post-commit events (disabled when empty)"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the seen-link cache (disabled when empty)"`

	// Scheduler daemon configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick in seconds"`
	ChecksHour        int    `long:"checks-hour" env:"CHECKS_HOUR" default:"8" description:"Local hour after which the daily checks run"`
	ScrapeInterval    int    `long:"scrape-interval" env:"SCRAPE_INTERVAL" default:"21600" description:"Seconds between news scrapes"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of scheduler workers"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, ErrHelp
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", raw.Timezone, err)
	}

	cfg := &Cfg{
		Store:             raw.Store,
		MongoURI:          raw.MongoURI,
		MongoDatabase:     raw.MongoDatabase,
		SQLitePath:        raw.SQLitePath,
		Location:          loc,
		FiltersFile:       raw.FiltersFile,
		UserAgent:         raw.UserAgent,
		NATSUrl:           raw.NATSUrl,
		RedisAddr:         raw.RedisAddr,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		SchedulerInterval: raw.SchedulerInterval,
		ChecksHour:        raw.ChecksHour,
		ScrapeInterval:    raw.ScrapeInterval,
		WorkerCount:       raw.WorkerCount,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.Store == StoreFirestore {
		sa, err := ParseServiceAccount(raw.FirebaseServiceAccount)
		if err != nil {
			return nil, err
		}
		cfg.ServiceAccount = sa
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	if c.ChecksHour < 0 || c.ChecksHour > 23 {
		return fmt.Errorf("checks hour must be between 0 and 23, got %d", c.ChecksHour)
	}

	positiveFields := map[string]int{
		"scheduler interval": c.SchedulerInterval,
		"scrape interval":    c.ScrapeInterval,
		"worker count":       c.WorkerCount,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}
