// Package tuimsg holds the messages scenes send to the root TUI model.
package tuimsg

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/ratesim/internal/domain"
)

// IncomeChangedMsg asks for the plans table to be recomputed at another income
type IncomeChangedMsg struct {
	Income decimal.Decimal
}

// SubmitEditsMsg carries an edited rate-change matrix to be stored
type SubmitEditsMsg struct {
	Edits domain.RateEdits
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
