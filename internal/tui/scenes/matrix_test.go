package scenes

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/rgehrsitz/ratesim/internal/tui/tuimsg"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeInto(m *MatrixModel, s string) *MatrixModel {
	for _, r := range s {
		m, _ = m.Update(keys(string(r)))
	}
	return m
}

func sampleMatrix() *domain.RateMatrix {
	matrix := ratechange.DefaultMatrix([]string{"Beta Care", "Acme Health"})
	matrix.StateCode = "CA"
	matrix.RatingAreaID = "1"
	return matrix
}

func TestMatrixModel_EditAndSubmit(t *testing.T) {
	m := NewMatrixModel()
	m.SetMatrix(sampleMatrix())

	// Acme Health is the first row; move to Silver (third editable level).
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Editing())

	m.input.SetValue("")
	m = typeInto(m, "4.5")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Editing())
	assert.Equal(t, 1, m.Pending())

	m, cmd := m.Update(keys("s"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(tuimsg.SubmitEditsMsg)
	require.True(t, ok)

	assert.Equal(t, "4.5", msg.Edits["Acme Health"][domain.MetalSilver])
	assert.True(t, msg.Edits["Beta Care"][domain.MetalSilver].(decimal.Decimal).IsZero(), "untouched cells are submitted as stored")
	assert.Len(t, msg.Edits, 2)
}

func TestMatrixModel_RejectsInvalidCell(t *testing.T) {
	m := NewMatrixModel()
	m.SetMatrix(sampleMatrix())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("")
	m = typeInto(m, "abc")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.Editing(), "invalid value keeps the editor open")
	assert.Error(t, m.editErr)
	assert.Equal(t, 0, m.Pending())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
	assert.Equal(t, 0, m.Pending())
}

func TestMatrixModel_SubmitWithoutEditsIsNoop(t *testing.T) {
	m := NewMatrixModel()
	m.SetMatrix(sampleMatrix())

	_, cmd := m.Update(keys("s"))
	assert.Nil(t, cmd)
}

func TestMatrixModel_DiscardAndReload(t *testing.T) {
	m := NewMatrixModel()
	m.SetMatrix(sampleMatrix())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("7")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, m.Pending())
	assert.Contains(t, m.View(), "1 pending edit")

	m, _ = m.Update(keys("u"))
	assert.Equal(t, 0, m.Pending())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("7")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.SetMatrix(sampleMatrix())
	assert.Equal(t, 0, m.Pending(), "a fresh matrix drops pending edits")
}

func TestPlansModel_IncomeBounds(t *testing.T) {
	incomes := []decimal.Decimal{decimal.RequireFromString("1.3"), decimal.RequireFromString("1.4")}
	m := NewPlansModel(incomes)

	_, cmd := m.Update(keys("-"))
	assert.Nil(t, cmd, "cannot go below the first income")

	m, cmd = m.Update(keys("+"))
	require.NotNil(t, cmd)
	msg := cmd().(tuimsg.IncomeChangedMsg)
	assert.True(t, msg.Income.Equal(incomes[1]))
	assert.True(t, m.Income().Equal(incomes[1]))

	_, cmd = m.Update(keys("+"))
	assert.Nil(t, cmd, "cannot go past the last income")
}
