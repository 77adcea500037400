package tui

import (
	"wenv/internal/model"
	"wenv/internal/repair"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Variable string
	Report   model.RepairReport
	Loading  bool
	Err      error
	Status   string // Last commit outcome or write error

	// UI State
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg
	ShowFix     bool // Right panel shows the corrected value instead of entry details
	DryRun      bool

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // Indices of report items to show
	SearchActive    bool

	// Components
	DetailsViewport viewport.Model

	service *repair.Service
}

// InitialModel returns the initial state for inspecting variable.
func InitialModel(svc *repair.Service, variable string, dryRun bool) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Filter entries..."
	ti.CharLimit = 120
	ti.Width = 30

	return AppModel{
		Variable:        variable,
		Loading:         true,
		DryRun:          dryRun,
		InputBuffer:     ti,
		DetailsViewport: viewport.New(40, 10),
		service:         svc,
	}
}

func (m AppModel) Init() tea.Cmd {
	return LoadReportCmd(m.service, m.Variable)
}
