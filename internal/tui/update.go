package tui

import (
	"context"
	"strings"

	"wenv/internal/model"
	"wenv/internal/repair"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgReportReady carries a freshly planned report.
type MsgReportReady model.RepairReport

// MsgApplied carries the result of a write attempt.
type MsgApplied struct {
	Result repair.Result
	Err    error
}

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 6
		return m, nil

	case MsgReportReady:
		m.Loading = false
		m.Err = nil
		m.Report = model.RepairReport(msg)
		m.applySearch()
		return m, nil

	case MsgApplied:
		if msg.Err != nil {
			// The plan stays on screen so the user can retry.
			m.Status = "Write failed: " + msg.Err.Error()
			return m, nil
		}
		m.Status = statusFor(msg.Result)
		if msg.Result.Committed {
			return m, LoadReportCmd(m.service, m.Variable)
		}
		return m, nil

	case MsgError:
		m.Err = msg
		m.Loading = false
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.applySearch()
				return m, nil
			case tea.KeyEsc:
				m.clearSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			m.applySearch()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.SearchActive {
				m.clearSearch()
				return m, nil
			}
			if m.ShowFix {
				m.ShowFix = false
			}
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "down", "j":
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
			}
		case "f":
			m.ShowFix = !m.ShowFix
		case "r":
			m.Loading = true
			m.Status = ""
			return m, LoadReportCmd(m.service, m.Variable)
		case "w":
			if m.Loading || m.Err != nil {
				return m, nil
			}
			if !m.Report.Changed() {
				m.Status = "Nothing to fix."
				return m, nil
			}
			return m, ApplyCmd(m.service, m.Report, m.DryRun)
		case "/":
			m.InputMode = true
			m.InputBuffer.Focus()
			m.InputBuffer.SetValue("")
			return m, textinput.Blink
		}
	}

	return m, cmd
}

func statusFor(res repair.Result) string {
	switch {
	case res.Committed && res.Backup != nil:
		return "Saved. Backup " + res.Backup.ID
	case res.Committed:
		return "Saved."
	case res.DryRun:
		return "Dry run: nothing written."
	}
	return "Nothing to fix."
}

func (m *AppModel) clearSearch() {
	m.InputMode = false
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")
	m.applySearch()
}

// applySearch narrows the list to entries containing the search term.
func (m *AppModel) applySearch() {
	term := strings.ToLower(m.InputBuffer.Value())
	m.SearchActive = term != ""

	result := make([]int, 0, len(m.Report.Items))
	for i, it := range m.Report.Items {
		if term == "" || strings.Contains(strings.ToLower(it.Raw), term) {
			result = append(result, i)
		}
	}
	m.FilteredIndices = result

	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
}

// LoadReportCmd plans the variable in the background.
func LoadReportCmd(svc *repair.Service, variable string) tea.Cmd {
	return func() tea.Msg {
		report, err := svc.Plan(context.Background(), variable)
		if err != nil {
			return MsgError(err)
		}
		return MsgReportReady(report)
	}
}

// ApplyCmd commits report in the background.
func ApplyCmd(svc *repair.Service, report model.RepairReport, dryRun bool) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Apply(report, dryRun)
		return MsgApplied{Result: res, Err: err}
	}
}
