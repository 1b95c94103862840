// Package ingest builds the plan table from the marketplace rate and plan
// attribute public use files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

// RateRecord is one row of the rate public use file
type RateRecord struct {
	PlanID                string
	StateCode             string
	RatingAreaID          string
	Tobacco               string
	Age                   string
	IndividualRate        decimal.Decimal
	IndividualTobaccoRate decimal.Decimal
}

// AttributeRecord is one row of the plan attributes public use file
type AttributeRecord struct {
	IssuerID            string
	Issuer              string
	StandardComponentID string
	PlanMarketingName   string
	PlanType            string
	MetalLevel          domain.MetalLevel
	CSRVariationType    string
}

var (
	rateHeaders      = []string{"planid", "statecode", "ratingareaid", "tobacco", "age", "individualrate"}
	attributeHeaders = []string{"issuerid", "issuermarketplacemarketingname", "standardcomponentid", "planmarketingname", "plantype", "metallevel", "csrvariationtype"}
)

// LoadPlanRates reads the rate file. Malformed lines are skipped and reported as
// warnings; a missing required column is an error.
func LoadPlanRates(r io.Reader) ([]RateRecord, []string, error) {
	var records []RateRecord
	warnings, err := readCSV(r, rateHeaders, func(get func(string) string, line int) string {
		planID := get("planid")
		if planID == "" {
			return fmt.Sprintf("line %d: missing PlanId", line)
		}
		rate, err := decimal.NewFromString(get("individualrate"))
		if err != nil {
			return fmt.Sprintf("line %d: invalid IndividualRate %q", line, get("individualrate"))
		}
		tobaccoRate := decimal.Zero
		if raw := get("individualtobaccorate"); raw != "" {
			if tobaccoRate, err = decimal.NewFromString(raw); err != nil {
				return fmt.Sprintf("line %d: invalid IndividualTobaccoRate %q", line, raw)
			}
		}
		records = append(records, RateRecord{
			PlanID:                planID,
			StateCode:             get("statecode"),
			RatingAreaID:          get("ratingareaid"),
			Tobacco:               get("tobacco"),
			Age:                   get("age"),
			IndividualRate:        rate,
			IndividualTobaccoRate: tobaccoRate,
		})
		return ""
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("rate file: %w", err)
	}
	return records, warnings, nil
}

// LoadPlanAttributes reads the plan attributes file
func LoadPlanAttributes(r io.Reader) ([]AttributeRecord, []string, error) {
	var records []AttributeRecord
	warnings, err := readCSV(r, attributeHeaders, func(get func(string) string, line int) string {
		id := get("standardcomponentid")
		if id == "" {
			return fmt.Sprintf("line %d: missing StandardComponentId", line)
		}
		records = append(records, AttributeRecord{
			IssuerID:            get("issuerid"),
			Issuer:              get("issuermarketplacemarketingname"),
			StandardComponentID: id,
			PlanMarketingName:   get("planmarketingname"),
			PlanType:            get("plantype"),
			MetalLevel:          domain.MetalLevel(get("metallevel")),
			CSRVariationType:    get("csrvariationtype"),
		})
		return ""
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("plan attributes file: %w", err)
	}
	return records, warnings, nil
}

// readCSV maps the header row, checks the required columns and hands every record
// to parse, which returns a warning for lines it rejects.
func readCSV(r io.Reader, required []string, parse func(get func(string) string, line int) string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}
	index := mapHeaders(header)
	if missing := missingHeaders(required, index); len(missing) > 0 {
		return nil, fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}

	var warnings []string
	line := 1
	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		get := func(key string) string {
			pos, ok := index[key]
			if !ok || pos >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[pos])
		}
		if warn := parse(get, line); warn != "" {
			warnings = append(warnings, warn)
		}
	}
	return warnings, nil
}

func mapHeaders(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[key] = i
	}
	return index
}

func missingHeaders(required []string, index map[string]int) []string {
	var missing []string
	for _, key := range required {
		if _, ok := index[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
