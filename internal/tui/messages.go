package tui

import (
	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	ScenePlans Scene = iota
	SceneMatrix
	SceneImpact
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// RatesLoadedMsg carries a recomputed plans table
type RatesLoadedMsg struct {
	Table *domain.RateTable
	Err   error
}

// MatrixLoadedMsg carries the rate-change matrix of the selection
type MatrixLoadedMsg struct {
	Matrix *domain.RateMatrix
	Err    error
}

// ImpactLoadedMsg carries the impact summary of the selection
type ImpactLoadedMsg struct {
	Set *compare.ImpactSet
	Err error
}

// EditsSubmittedMsg signals the store accepted or rejected a matrix
type EditsSubmittedMsg struct {
	Err error
}
