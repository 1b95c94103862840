package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/ratechange"
	"github.com/rgehrsitz/ratesim/internal/tui/tuimsg"
	"github.com/rgehrsitz/ratesim/internal/tui/tuistyles"
)

// MatrixModel edits the insurer by metal level rate-change matrix
type MatrixModel struct {
	matrix  *domain.RateMatrix
	pending map[string]map[domain.MetalLevel]string
	table   table.Model
	input   textinput.Model
	column  int // index into matrix.MetalLevels
	editing bool
	editErr error
	width   int
	height  int
}

// NewMatrixModel creates an empty matrix scene
func NewMatrixModel() *MatrixModel {
	ti := textinput.New()
	ti.Placeholder = "e.g., 4.5"
	ti.CharLimit = 12
	ti.Width = 12
	ti.Cursor.SetMode(cursor.CursorStatic)

	t := table.New(table.WithFocused(true), table.WithHeight(8))
	t.SetStyles(tableStyles())

	return &MatrixModel{
		pending: make(map[string]map[domain.MetalLevel]string),
		table:   t,
		input:   ti,
	}
}

// SetMatrix replaces the matrix and discards pending edits
func (m *MatrixModel) SetMatrix(matrix *domain.RateMatrix) {
	m.matrix = matrix
	m.pending = make(map[string]map[domain.MetalLevel]string)
	m.editing = false
	m.editErr = nil
	m.input.Blur()
	if m.column >= len(matrix.MetalLevels) {
		m.column = 0
	}
	m.refresh()
	if m.table.Cursor() >= len(matrix.Rows) {
		m.table.GotoTop()
	}
}

// Editing reports whether a cell is being edited
func (m *MatrixModel) Editing() bool {
	return m.editing
}

// Pending returns the number of edited cells not yet submitted
func (m *MatrixModel) Pending() int {
	n := 0
	for _, cells := range m.pending {
		n += len(cells)
	}
	return n
}

// Edits returns the full matrix with pending cells applied, in the form the
// store accepts
func (m *MatrixModel) Edits() domain.RateEdits {
	if m.matrix == nil {
		return domain.RateEdits{}
	}
	edits := m.matrix.Edits()
	for issuer, cells := range m.pending {
		if edits[issuer] == nil {
			edits[issuer] = make(map[domain.MetalLevel]any)
		}
		for level, v := range cells {
			edits[issuer][level] = v
		}
	}
	return edits
}

// SetSize updates the scene dimensions
func (m *MatrixModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(tableHeight(height, 6))
}

// Update handles messages for the matrix scene
func (m *MatrixModel) Update(msg tea.Msg) (*MatrixModel, tea.Cmd) {
	if m.matrix == nil {
		return m, nil
	}
	if m.editing {
		return m.updateInput(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "h"))):
			if m.column > 0 {
				m.column--
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("right", "l"))):
			if m.column < len(m.matrix.MetalLevels)-1 {
				m.column++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "e"))):
			if len(m.matrix.Rows) == 0 {
				return m, nil
			}
			m.editing = true
			m.editErr = nil
			m.input.SetValue(m.cellValue(m.matrix.Rows[m.table.Cursor()].Issuer, m.currentLevel()))
			m.input.CursorEnd()
			return m, m.input.Focus()

		case key.Matches(msg, key.NewBinding(key.WithKeys("u"))):
			m.pending = make(map[string]map[domain.MetalLevel]string)
			m.refresh()
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("s", "ctrl+s"))):
			if m.Pending() == 0 {
				return m, nil
			}
			edits := m.Edits()
			return m, func() tea.Msg {
				return tuimsg.SubmitEditsMsg{Edits: edits}
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *MatrixModel) updateInput(msg tea.Msg) (*MatrixModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if _, err := ratechange.ParsePercentage(value); err != nil {
				m.editErr = err
				return m, nil
			}
			issuer := m.matrix.Rows[m.table.Cursor()].Issuer
			if m.pending[issuer] == nil {
				m.pending[issuer] = make(map[domain.MetalLevel]string)
			}
			m.pending[issuer][m.currentLevel()] = value
			m.stopEditing()
			m.refresh()
			return m, nil

		case tea.KeyEsc:
			m.stopEditing()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MatrixModel) stopEditing() {
	m.editing = false
	m.editErr = nil
	m.input.Blur()
	m.input.Reset()
}

func (m *MatrixModel) currentLevel() domain.MetalLevel {
	return m.matrix.MetalLevels[m.column]
}

func (m *MatrixModel) cellValue(issuer string, level domain.MetalLevel) string {
	if v, ok := m.pending[issuer][level]; ok {
		return v
	}
	for _, row := range m.matrix.Rows {
		if row.Issuer == issuer {
			return row.Percentages[level].String()
		}
	}
	return "0"
}

// refresh rebuilds the table columns and rows from the matrix and pending edits
func (m *MatrixModel) refresh() {
	cols := []table.Column{{Title: "Issuer", Width: 28}}
	for i, level := range m.matrix.MetalLevels {
		title := string(level)
		if i == m.column {
			title = "[" + title + "]"
		}
		cols = append(cols, table.Column{Title: title, Width: 17})
	}

	rows := make([]table.Row, 0, len(m.matrix.Rows))
	for _, r := range m.matrix.Rows {
		row := table.Row{r.Issuer}
		for _, level := range m.matrix.MetalLevels {
			cell := m.cellValue(r.Issuer, level)
			if _, ok := m.pending[r.Issuer][level]; ok {
				cell += " *"
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	// Rows must shrink before the columns do, or the table renders stale cells.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
}

// View renders the matrix scene
func (m *MatrixModel) View() string {
	if m.matrix == nil {
		return tuistyles.SubtitleStyle.Render("Loading rate changes...")
	}

	header := tuistyles.TitleStyle.Render(fmt.Sprintf("Rate changes (%%) for %s / rating area %s",
		m.matrix.StateCode, m.matrix.RatingAreaID))

	status := tuistyles.SubtitleStyle.Render("No pending edits")
	if n := m.Pending(); n > 0 {
		status = tuistyles.PendingCellStyle.Render(fmt.Sprintf("%d pending edit(s), press s to submit", n))
	}

	sections := []string{header, status, m.table.View()}
	if m.editing {
		line := fmt.Sprintf("%s / %s: %s", m.matrix.Rows[m.table.Cursor()].Issuer, m.currentLevel(), m.input.View())
		sections = append(sections, line)
		if m.editErr != nil {
			sections = append(sections, tuistyles.ErrorStyle.Render(m.editErr.Error()))
		}
		sections = append(sections, renderHelp("enter", "keep", "esc", "cancel"))
	} else {
		sections = append(sections, renderHelp("↑/↓", "issuer", "←/→", "metal level", "enter", "edit", "s", "submit", "u", "discard"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
