// Package storage provides persistent rate-change backends.
package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

const rateChangesTable = "rate_changes"

var rateChangeColumns = []string{"state_code", "rating_area_id", "metal_level", "issuer", "percentage"}

// upsertQuery builds one multi-row insert that replaces the percentage of keys that
// already exist. Percentages are stored as text so that no precision is lost.
func upsertQuery(b sq.StatementBuilderType, changes []domain.RateChange) (string, []any, error) {
	insert := b.Insert(rateChangesTable).Columns(rateChangeColumns...)
	for _, c := range lastPerKey(changes) {
		insert = insert.Values(c.StateCode, c.RatingAreaID, string(c.MetalLevel), c.Issuer, c.Percentage.String())
	}
	return insert.
		Suffix("ON CONFLICT (state_code, rating_area_id, metal_level, issuer) DO UPDATE SET percentage = excluded.percentage").
		ToSql()
}

func findQuery(b sq.StatementBuilderType, states, areas []string) (string, []any, error) {
	query := b.Select(rateChangeColumns...).From(rateChangesTable)
	if len(states) > 0 {
		query = query.Where(sq.Eq{"state_code": states})
	}
	if len(areas) > 0 {
		query = query.Where(sq.Eq{"rating_area_id": areas})
	}
	return query.OrderBy("state_code", "rating_area_id", "issuer", "metal_level").ToSql()
}

// scanner is satisfied by both *sql.Rows and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRateChange(row scanner) (domain.RateChange, error) {
	var (
		rc    domain.RateChange
		level string
		pct   string
	)
	if err := row.Scan(&rc.StateCode, &rc.RatingAreaID, &level, &rc.Issuer, &pct); err != nil {
		return rc, fmt.Errorf("failed to scan rate change: %w", err)
	}
	rc.MetalLevel = domain.MetalLevel(level)

	p, err := decimal.NewFromString(pct)
	if err != nil {
		return rc, fmt.Errorf("stored percentage %q for %s/%s %s %s: %w", pct, rc.StateCode, rc.RatingAreaID, rc.Issuer, level, err)
	}
	rc.Percentage = p
	return rc, nil
}

// lastPerKey drops all but the last change for each key; a single upsert statement
// may not touch the same row twice.
func lastPerKey(changes []domain.RateChange) []domain.RateChange {
	index := make(map[domain.RateChangeKey]int, len(changes))
	deduped := make([]domain.RateChange, 0, len(changes))
	for _, c := range changes {
		if i, ok := index[c.RateChangeKey]; ok {
			deduped[i] = c
			continue
		}
		index[c.RateChangeKey] = len(deduped)
		deduped = append(deduped, c)
	}
	return deduped
}
