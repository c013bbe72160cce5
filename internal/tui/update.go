package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"macsweep/internal/types"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case spinner.TickMsg:
		if m.scanning || m.view == viewCleaning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case scanResultMsg:
		m.handleScanResult(msg.result)

	case progressMsg:
		m.cleanCategory = msg.p.CategoryName
		m.cleanItem = msg.p.CurrentItem
		m.cleanCurrent = msg.p.Current
		m.cleanTotal = msg.p.Total
		return m, m.waitForClean()

	case categoryDoneMsg:
		m.completed = append(m.completed, msg.r)
		m.cleanCategory = ""
		m.cleanItem = ""
		return m, m.waitForClean()

	case cleanDoneMsg:
		m.report = msg.report
		m.view = viewReport
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewList:
		return m.handleListKey(msg)
	case viewConfirm:
		return m.handleConfirmKey(msg)
	case viewCleaning:
		// No interactive controls while deleting; ctrl+c above still works.
		return m, nil
	case viewReport:
		switch msg.String() {
		case "q", "enter", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case " ":
		m.toggleCurrent()
	case "a":
		m.toggleAll()
	case "l":
		m.cycleLevel()
	case "o":
		m.openCurrent()
	case "r":
		if !m.scanning {
			m.results = nil
			m.resultMap = make(map[string]*types.ScanResult)
			m.cursor = 0
			m.scroll = 0
			m.scanErrors = nil
			m.scanning = true
			return m, tea.Batch(m.spinner.Tick, m.startScan())
		}
	case "enter":
		if !m.scanning && m.hasSelection() {
			m.view = viewConfirm
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "n":
		m.view = viewList
	case "l":
		m.cycleLevel()
	case "enter", "y":
		m.rememberSelection()
		m.view = viewCleaning
		return m, tea.Batch(m.spinner.Tick, m.doClean())
	}
	return m, nil
}
