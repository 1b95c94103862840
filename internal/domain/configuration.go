package domain

// Configuration is the scenario file: where the plan data lives, how rate changes
// are stored, and any rate changes to preload.
type Configuration struct {
	Data        DataSources  `yaml:"data" json:"data"`
	Store       StoreConfig  `yaml:"store" json:"store"`
	Server      ServerConfig `yaml:"server" json:"server"`
	RateChanges []RateChange `yaml:"rate_changes" json:"rate_changes"`
}

// DataSources points at the public use files the plan table is built from
type DataSources struct {
	RatePUF           string `yaml:"rate_puf" json:"rate_puf"`
	PlanAttributesPUF string `yaml:"plan_attributes_puf" json:"plan_attributes_puf"`
}

// StoreConfig selects the rate-change store backend
type StoreConfig struct {
	Driver string `yaml:"driver" json:"driver"` // memory | sqlite | postgres
	DSN    string `yaml:"dsn" json:"dsn"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Store drivers
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)
