package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML or JSON file. Relative data paths are
// resolved against the directory of the file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	config, err := ip.readFile(filename)
	if err != nil {
		return nil, err
	}

	// Validate the configuration
	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (ip *InputParser) readFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	config.Data.RatePUF = resolvePath(dir, config.Data.RatePUF)
	config.Data.PlanAttributesPUF = resolvePath(dir, config.Data.PlanAttributesPUF)
	if config.Store.Driver == domain.StoreSQLite {
		config.Store.DSN = resolvePath(dir, config.Store.DSN)
	}
	return config, nil
}

// Parse decodes a scenario document without validating it
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config.Data.RatePUF == "" {
		return fmt.Errorf("data.rate_puf is required")
	}
	if config.Data.PlanAttributesPUF == "" {
		return fmt.Errorf("data.plan_attributes_puf is required")
	}
	if err := ValidateStore(config.Store); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	for i, rc := range config.RateChanges {
		if err := ip.validateRateChange(rc); err != nil {
			return fmt.Errorf("rate change %d validation failed: %w", i, err)
		}
	}
	return nil
}

// ValidateStore checks the store driver and its DSN
func ValidateStore(store domain.StoreConfig) error {
	switch store.Driver {
	case "", domain.StoreMemory:
		return nil
	case domain.StoreSQLite, domain.StorePostgres:
		if store.DSN == "" {
			return fmt.Errorf("%s store requires a dsn", store.Driver)
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q (expected memory, sqlite or postgres)", store.Driver)
	}
}

func (ip *InputParser) validateRateChange(rc domain.RateChange) error {
	if rc.StateCode == "" {
		return fmt.Errorf("state_code is required")
	}
	if rc.RatingAreaID == "" {
		return fmt.Errorf("rating_area_id is required")
	}
	if rc.Issuer == "" {
		return fmt.Errorf("issuer is required")
	}
	if !rc.MetalLevel.IsEditable() {
		return fmt.Errorf("%q: %w", rc.MetalLevel, domain.ErrUnknownMetalLevel)
	}
	if rc.Percentage.LessThan(decimal.NewFromInt(-100)) {
		return fmt.Errorf("percentage %s would make rates negative", rc.Percentage)
	}
	return nil
}

// LoadEditsFromFile reads an edited rate-change matrix (issuer -> metal level ->
// percentage) from a YAML or JSON file. Cell values are validated on submission.
func (ip *InputParser) LoadEditsFromFile(filename string) (domain.RateEdits, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var edits domain.RateEdits
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		err = json.Unmarshal(data, &edits)
	} else {
		err = yaml.Unmarshal(data, &edits)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate change edits: %w", err)
	}
	if len(edits) == 0 {
		return nil, fmt.Errorf("%s contains no rate change edits", filename)
	}
	return edits, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
