// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the current wizard screen.
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseChecks
	PhaseModel
	PhaseStorage
	PhaseKey
	PhaseWriting
	PhaseComplete
)

// checkDelay keeps each check row visible long enough to read.
var checkDelay = 150 * time.Millisecond

// Result is what the wizard did.
type Result struct {
	// Written is true once the config file was saved.
	Written bool

	// Launch asks the caller to start the chat UI.
	Launch bool

	Path string
}

// =============================================================================
// MESSAGES
// =============================================================================

type checkCompleteMsg struct {
	index  int
	result CheckResult
}

type writeCompleteMsg struct {
	err error
}

// =============================================================================
// MODEL
// =============================================================================

// Wizard is the Bubble Tea model for the setup flow.
type Wizard struct {
	phase  Phase
	width  int
	height int

	spinner spinner.Model
	checker *Checker
	checks  []CheckResult
	current int

	models     []Option
	modelIdx   int
	backends   []Option
	backendIdx int
	keyInput   textinput.Model
	envKey     string

	path   string
	err    error
	result Result

	launchSelected bool
}

// NewWizard creates a wizard that writes to path. Existing values in the
// file preselect the choices.
func NewWizard(path string, checker *Checker) *Wizard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = highlightStyle

	ki := textinput.New()
	ki.Placeholder = "paste your Gemini API key"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '*'
	ki.CharLimit = 200
	ki.Width = 48

	w := &Wizard{
		phase:          PhaseWelcome,
		spinner:        s,
		checker:        checker,
		models:         ModelOptions(),
		backends:       BackendOptions(),
		keyInput:       ki,
		path:           path,
		launchSelected: true,
	}
	for _, name := range checker.Names() {
		w.checks = append(w.checks, CheckResult{Name: name, Status: StatusChecking})
	}
	if cfg, err := LoadExisting(path); err == nil {
		w.modelIdx = indexOf(w.models, cfg.DefaultModel)
		w.backendIdx = indexOf(w.backends, cfg.Storage.Backend)
	}
	w.envKey, _ = checker.EnvKey()
	w.result.Path = path
	return w
}

// Init starts the spinner.
func (w *Wizard) Init() tea.Cmd {
	return w.spinner.Tick
}

// Phase returns the current screen.
func (w *Wizard) Phase() Phase {
	return w.phase
}

// Result returns the outcome once the program exits.
func (w *Wizard) Result() Result {
	return w.result
}

// Choices returns the current selections.
func (w *Wizard) Choices() Choices {
	return Choices{
		Model:   w.models[w.modelIdx].Value,
		Backend: w.backends[w.backendIdx].Value,
		Key:     w.keyInput.Value(),
	}
}

// checksDone reports whether every check has finished.
func (w *Wizard) checksDone() bool {
	return w.current >= len(w.checks)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case checkCompleteMsg:
		if msg.index < len(w.checks) {
			w.checks[msg.index] = msg.result
		}
		w.current = msg.index + 1
		if !w.checksDone() {
			return w, w.runCheck(w.current)
		}
		return w, nil

	case writeCompleteMsg:
		if msg.err != nil {
			w.err = msg.err
			w.phase = PhaseKey
			return w, nil
		}
		w.err = nil
		w.result.Written = true
		w.phase = PhaseComplete
		return w, nil
	}

	if w.phase == PhaseKey {
		var cmd tea.Cmd
		w.keyInput, cmd = w.keyInput.Update(msg)
		return w, cmd
	}
	return w, nil
}

// handleKey processes key presses.
func (w *Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return w, tea.Quit
	case "enter":
		return w.handleSelect()
	case "esc":
		w.back()
		return w, nil
	}

	// The key field takes every other key as text.
	if w.phase == PhaseKey {
		var cmd tea.Cmd
		w.keyInput, cmd = w.keyInput.Update(msg)
		return w, cmd
	}

	switch msg.String() {
	case "q":
		return w, tea.Quit
	case "up", "k":
		w.move(-1)
	case "down", "j":
		w.move(1)
	case "tab":
		if w.phase == PhaseComplete {
			w.launchSelected = !w.launchSelected
		}
	}
	return w, nil
}

// move shifts the selection on list screens.
func (w *Wizard) move(delta int) {
	switch w.phase {
	case PhaseModel:
		w.modelIdx = clamp(w.modelIdx+delta, len(w.models))
	case PhaseStorage:
		w.backendIdx = clamp(w.backendIdx+delta, len(w.backends))
	case PhaseComplete:
		w.launchSelected = delta < 0
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// back returns to the previous choice screen.
func (w *Wizard) back() {
	switch w.phase {
	case PhaseStorage:
		w.phase = PhaseModel
	case PhaseKey:
		w.keyInput.Blur()
		w.phase = PhaseStorage
	}
}

// handleSelect advances on Enter.
func (w *Wizard) handleSelect() (tea.Model, tea.Cmd) {
	switch w.phase {
	case PhaseWelcome:
		w.phase = PhaseChecks
		return w, w.runCheck(0)

	case PhaseChecks:
		if w.checksDone() {
			w.phase = PhaseModel
		}
		return w, nil

	case PhaseModel:
		w.phase = PhaseStorage
		return w, nil

	case PhaseStorage:
		w.phase = PhaseKey
		return w, w.keyInput.Focus()

	case PhaseKey:
		w.keyInput.Blur()
		w.phase = PhaseWriting
		return w, w.write()

	case PhaseComplete:
		w.result.Launch = w.launchSelected
		return w, tea.Quit
	}
	return w, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// runCheck runs check index off the UI goroutine.
func (w *Wizard) runCheck(index int) tea.Cmd {
	checker := w.checker
	return func() tea.Msg {
		result := checker.Run(index)
		time.Sleep(checkDelay)
		return checkCompleteMsg{index: index, result: result}
	}
}

// write saves the config file.
func (w *Wizard) write() tea.Cmd {
	path, choices := w.path, w.Choices()
	return func() tea.Msg {
		return writeCompleteMsg{err: WriteConfig(path, choices)}
	}
}
