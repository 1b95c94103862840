package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rgehrsitz/ratesim/internal/domain"
)

// CSVFormatter writes every DisplayRow column. A matrix is written as its own
// block after the table.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if t := report.Table; t != nil {
		if err := w.Write(domain.DisplayColumns); err != nil {
			return nil, err
		}
		for _, row := range t.Rows {
			if err := w.Write(row.Values()); err != nil {
				return nil, err
			}
		}
	}

	if m := report.Matrix; m != nil {
		if report.Table != nil {
			if err := w.Write(nil); err != nil {
				return nil, err
			}
		}
		if err := w.Write(append([]string{"StateCode", "RatingAreaId"}, matrixHeader(m)...)); err != nil {
			return nil, err
		}
		for _, row := range m.Rows {
			if err := w.Write(append([]string{m.StateCode, m.RatingAreaID}, matrixValues(m, row)...)); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
