package tui

// Keybinding constants
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyPane1    = "1"
	KeyPane2    = "2"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyJ        = "j"
	KeyK        = "k"
	KeyPrevGoal = "["
	KeyNextGoal = "]"
	KeyStatus   = "s"
	KeyReload   = "r"
	KeySettings = "c"
	KeyEsc      = "esc"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return StyleHelp.Render("Tab: focus | j/k: select | [/]: goal | s: cycle status | r: reload | c: settings | q: quit")
}
