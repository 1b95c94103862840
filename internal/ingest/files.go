package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/schollz/progressbar/v3"
)

// Result is the outcome of loading both public use files
type Result struct {
	Plans    []domain.Plan
	Warnings []string
	Rates    int
	Records  int
}

// LoadFiles reads and joins the rate and plan attribute files. When progress is
// not nil a byte progress bar for each file is written to it.
func LoadFiles(ratePath, attrPath string, progress io.Writer) (*Result, error) {
	var rates []RateRecord
	var attrs []AttributeRecord
	var warnings []string

	err := withFile(ratePath, "Reading rates", progress, func(r io.Reader) error {
		var warn []string
		var err error
		rates, warn, err = LoadPlanRates(r)
		warnings = append(warnings, prefixed(ratePath, warn)...)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = withFile(attrPath, "Reading plan attributes", progress, func(r io.Reader) error {
		var warn []string
		var err error
		attrs, warn, err = LoadPlanAttributes(r)
		warnings = append(warnings, prefixed(attrPath, warn)...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Plans:    JoinPlans(rates, attrs),
		Warnings: warnings,
		Rates:    len(rates),
		Records:  len(attrs),
	}, nil
}

func withFile(path, description string, progress io.Writer, read func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer file.Close()

	if progress == nil {
		return read(file)
	}

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("unable to stat %s: %w", path, err)
	}
	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)
	reader := progressbar.NewReader(file, bar)
	if err := read(&reader); err != nil {
		return err
	}
	return bar.Finish()
}

func prefixed(path string, warnings []string) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = path + ": " + w
	}
	return out
}
