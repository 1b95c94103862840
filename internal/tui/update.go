package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/ratesim/internal/tui/tuimsg"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := max(0, m.height-4)
		m.plansModel.SetSize(m.width, contentHeight)
		m.matrixModel.SetSize(m.width, contentHeight)
		m.impactModel.SetSize(m.width, contentHeight)
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case tuimsg.ErrorMsg:
		m.err = msg.Err
		return m, nil

	case RatesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.plansModel.SetRates(msg.Table)
		return m, nil

	case MatrixLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.matrixModel.SetMatrix(msg.Matrix)
		return m, nil

	case ImpactLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.impactModel.SetImpact(msg.Set)
		return m, nil

	case tuimsg.IncomeChangedMsg:
		return m, loadRatesCmd(m.svc, m.Selection(), msg.Income)

	case tuimsg.SubmitEditsMsg:
		m.loading = true
		m.loadingMessage = "Saving rate changes..."
		return m, submitEditsCmd(m.svc, m.Selection(), msg.Edits)

	case EditsSubmittedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.status = "Rate changes saved, recomputing"
		return m, m.reloadCmd()
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key dismisses an error
	if m.err != nil {
		m.err = nil
		return m, nil
	}

	// The matrix owns the keyboard while a cell is being edited
	if m.currentScene == SceneMatrix && m.matrixModel.Editing() {
		return m.updateCurrentScene(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		return m.navigate(SceneHelp)

	case "esc":
		if m.currentScene == SceneHelp {
			return m.navigate(m.previousScene)
		}

	case "1":
		return m.navigate(ScenePlans)

	case "2":
		return m.navigate(SceneMatrix)

	case "3":
		return m.navigate(SceneImpact)

	case "tab":
		return m.navigate((m.currentScene + 1) % SceneHelp)

	case "]":
		return m.shiftSelection(1)

	case "[":
		return m.shiftSelection(-1)
	}

	return m.updateCurrentScene(msg)
}

func (m Model) navigate(scene Scene) (tea.Model, tea.Cmd) {
	if scene == m.currentScene {
		return m, nil
	}
	return m, func() tea.Msg {
		return NavigateMsg{Scene: scene}
	}
}

// shiftSelection moves to the next or previous state and rating area. Unsaved
// matrix edits are discarded when the new matrix loads.
func (m Model) shiftSelection(delta int) (tea.Model, tea.Cmd) {
	if len(m.selections) == 0 {
		return m, nil
	}
	m.selectionIdx = (m.selectionIdx + delta + len(m.selections)) % len(m.selections)
	m.status = ""
	return m, m.reloadCmd()
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case ScenePlans:
		m.plansModel, cmd = m.plansModel.Update(msg)
	case SceneMatrix:
		m.matrixModel, cmd = m.matrixModel.Update(msg)
	case SceneImpact:
		m.impactModel, cmd = m.impactModel.Update(msg)
	}
	return m, cmd
}
