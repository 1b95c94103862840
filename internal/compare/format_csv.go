package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats an impact summary as CSV
type CSVFormatter struct{}

// Format generates one CSV row per insurer tier followed by the overall row
func (cf *CSVFormatter) Format(set *ImpactSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Issuer",
		"MetalLevel",
		"Plans",
		"Rows",
		"AvgPremium",
		"AvgPremium_New",
		"PremiumDiff",
		"PremiumPctChange",
		"AvgNetMonthlyRate",
		"AvgNetMonthlyRate_New",
		"NetDiff",
		"NetPctChange",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, r := range set.Results {
		if err := writer.Write(cf.formatRow(r)); err != nil {
			return "", err
		}
	}
	if len(set.Results) > 0 {
		if err := writer.Write(cf.formatRow(set.Overall)); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(r ImpactResult) []string {
	return []string{
		r.Issuer,
		string(r.MetalLevel),
		strconv.Itoa(r.Plans),
		strconv.Itoa(r.Rows),
		r.AvgPremiumBefore.StringFixed(2),
		r.AvgPremiumAfter.StringFixed(2),
		r.PremiumDiff.StringFixed(2),
		r.PremiumPctChange.StringFixed(2),
		r.AvgNetBefore.StringFixed(2),
		r.AvgNetAfter.StringFixed(2),
		r.NetDiff.StringFixed(2),
		r.NetPctChange.StringFixed(2),
	}
}
