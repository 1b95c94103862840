package config

import (
	"fmt"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/spf13/viper"
)

// Viper keys that may override a scenario file from flags or RATESIM_* variables
const (
	KeyStoreDriver = "store.driver"
	KeyStoreDSN    = "store.dsn"
	KeyServerAddr  = "server.addr"
	KeyRatePUF     = "data.rate_puf"
	KeyAttrPUF     = "data.plan_attributes_puf"
)

// DefaultServerAddr is the HTTP listen address when none is configured
const DefaultServerAddr = ":8080"

// Load reads the scenario file when filename is set, applies the overrides of v and
// validates the result. Without a file the data paths must come from v.
func Load(filename string, v *viper.Viper) (*domain.Configuration, error) {
	ip := NewInputParser()

	config := &domain.Configuration{}
	if filename != "" {
		var err error
		if config, err = ip.readFile(filename); err != nil {
			return nil, err
		}
	}

	ApplyOverrides(config, v)
	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// ApplyOverrides copies every override that is set in v onto config and fills in
// defaults for what is still empty.
func ApplyOverrides(config *domain.Configuration, v *viper.Viper) {
	if v != nil {
		override(v, KeyStoreDriver, &config.Store.Driver)
		override(v, KeyStoreDSN, &config.Store.DSN)
		override(v, KeyServerAddr, &config.Server.Addr)
		override(v, KeyRatePUF, &config.Data.RatePUF)
		override(v, KeyAttrPUF, &config.Data.PlanAttributesPUF)
	}
	if config.Store.Driver == "" {
		config.Store.Driver = domain.StoreMemory
	}
	if config.Server.Addr == "" {
		config.Server.Addr = DefaultServerAddr
	}
}

func override(v *viper.Viper, key string, target *string) {
	if value := v.GetString(key); value != "" {
		*target = value
	}
}
