package cfg

import (
	"time"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreSQLite    = "sqlite"
)

type Cfg struct {
	// Document store
	Store          string
	ServiceAccount *ServiceAccount
	MongoURI       string
	MongoDatabase  string
	SQLitePath     string

	// Jobs
	Location    *time.Location
	FiltersFile string
	UserAgent   string

	// Optional integrations
	NATSUrl   string
	RedisAddr string

	// Scheduler daemon
	Port              string
	APIAccessKey      string
	SchedulerInterval int
	ChecksHour        int
	ScrapeInterval    int
	WorkerCount       int

	// Application metadata
	Debug   bool
	Version string
}
