package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/backend"
	"github.com/aristath/taskplanner/internal/config"
)

// SettingsPaneModel edits the generation settings and saves them to the
// global or project config file. Changes apply on the next start.
type SettingsPaneModel struct {
	form        *huh.Form
	config      *config.Config
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	saved       bool
	err         error

	// Form field bindings
	saveTarget string
	backend    string
	modelName  string
	command    string
	timeout    string
}

// NewSettingsPaneModel creates a settings pane bound to cfg.
func NewSettingsPaneModel(cfg *config.Config, globalPath, projectPath string) SettingsPaneModel {
	m := SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
	}
	m.loadFields()
	m.buildForm()
	return m
}

func (m *SettingsPaneModel) loadFields() {
	m.saveTarget = "project"
	m.backend = m.config.Generation.Backend
	if m.backend == "" {
		m.backend = backend.TypeGemini
	}
	m.modelName = m.config.Generation.Model
	m.command = m.config.Generation.Command
	m.timeout = m.config.Generation.Timeout
}

func (m *SettingsPaneModel) buildForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption("Project ("+m.projectPath+")", "project"),
					huh.NewOption("Global ("+m.globalPath+")", "global"),
				).
				Value(&m.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Key("backend").
				Title("Backend").
				Options(
					huh.NewOption("Gemini API", backend.TypeGemini),
					huh.NewOption("Claude CLI", backend.TypeClaude),
				).
				Value(&m.backend),

			huh.NewInput().
				Key("model").
				Title("Model").
				Value(&m.modelName).
				Placeholder(backend.DefaultGeminiModel),

			huh.NewInput().
				Key("command").
				Title("Claude Command").
				Value(&m.command).
				Placeholder("claude"),

			huh.NewInput().
				Key("timeout").
				Title("Generation Timeout").
				Value(&m.timeout).
				Placeholder("none (e.g. 90s)").
				Validate(validateTimeout),
		).Title("Task Generation"),
	)
}

func validateTimeout(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("not a duration: %s", s)
	}
	return nil
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyEsc {
		m.visible = false
		m.saved = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.commit()
	}

	return m, cmd
}

// commit copies the form into the config and writes the chosen file.
func (m *SettingsPaneModel) commit() {
	m.applyFormToConfig()

	if err := config.Save(m.config, m.targetPath()); err != nil {
		m.err = err
		m.saved = false
		return
	}
	m.saved = true
	m.err = nil
	m.visible = false
}

func (m *SettingsPaneModel) targetPath() string {
	if m.saveTarget == "global" {
		return m.globalPath
	}
	return m.projectPath
}

func (m *SettingsPaneModel) applyFormToConfig() {
	m.config.Generation.Backend = m.backend
	m.config.Generation.Model = m.modelName
	m.config.Generation.Command = m.command
	m.config.Generation.Timeout = m.timeout
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string
	if m.err != nil {
		content = StyleError.Render(fmt.Sprintf("✗ Error saving: %v", m.err))
	} else {
		content = m.form.View()
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("⚙ Settings")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane. Showing it resets the form
// from the current config.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	if v {
		m.loadFields()
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}

// Saved reports whether the last form submission was written.
func (m SettingsPaneModel) Saved() bool {
	return m.saved
}
