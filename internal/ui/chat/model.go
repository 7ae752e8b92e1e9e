// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	cloudsync "github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/sync"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady    State = iota // Ready for input
	StateThinking              // Waiting for an answer
)

// selfWriteWindow ignores watcher events caused by our own saves.
const selfWriteWindow = 2 * time.Second

// maxCommandHints bounds the slash command hint row.
const maxCommandHints = 5

// Backend answers queries. *cloud.Client implements it.
type Backend interface {
	IsConfigured() bool
	Query(ctx context.Context, req cloud.QueryRequest) (*model.CiscoQueryResponse, error)
	Suggestions(ctx context.Context, history []string) ([]string, error)
}

// Options wires the chat view to its collaborators. Only Backend is
// required; nil collaborators disable their feature.
type Options struct {
	Config  *config.Config
	Backend Backend

	// Store persists the transcript. Initial is what it held at startup.
	Store   storage.HistoryStore
	Initial storage.Snapshot

	// WatchPath is the store file to watch for external changes.
	WatchPath string

	Speech speech.SpeechSynth

	// Remote and AutoSync enable cloud sync.
	Remote   cloudsync.CloudSync
	AutoSync *cloudsync.AutoSync

	// Clipboard overrides the system clipboard (tests).
	Clipboard func(string) error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	// Collaborators
	cfg       *config.Config
	backend   Backend
	store     storage.HistoryStore
	watchPath string
	watchCh   <-chan struct{}
	speech    speech.SpeechSynth
	remote    cloudsync.CloudSync
	autoSync  *cloudsync.AutoSync
	clipboard func(string) error

	// ctx is cancelled when the view quits.
	ctx       context.Context
	stop      context.CancelFunc
	query     *inflight

	// Conversation
	transcript  *model.Transcript
	suggestions []string
	predictive  bool
	lastSaved   time.Time

	// UI Components
	viewport viewport.Model
	input    *components.InputArea
	spinner  spinner.Model
	keyMap   KeyMap

	// Slash commands
	registry *commands.Registry
	parser   *commands.Parser
	hints    []string

	// Settings
	modelID       string
	research      bool
	showReasoning bool

	// Activity
	speaking bool
	syncing  bool

	attachment *Attachment

	// notice is help text shown below the transcript until dismissed.
	notice string

	// Non-blocking status toast; clearToastID is the pending clear
	// confirmation.
	toast        components.Toast
	clearToastID int
}

// New creates a new chat model.
func New(theme *styles.Theme, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	input := components.NewInputArea(theme)
	input.Focus()

	transcript := model.NewTranscript()
	transcript.SetMax(cfg.Storage.MaxMessages)
	transcript.Replace(opts.Initial.Messages)

	suggestions := opts.Initial.Suggestions
	if len(suggestions) == 0 {
		suggestions = append([]string(nil), model.DefaultSuggestions...)
	}

	modelID := model.DefaultModelID
	if info, ok := model.LookupModel(cfg.DefaultModel); ok {
		modelID = info.ID
	}

	synth := opts.Speech
	if synth == nil {
		synth = speech.Noop{}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	ctx, stop := context.WithCancel(context.Background())
	reg := commands.NewRegistry()

	m := Model{
		state:         StateReady,
		theme:         theme,
		cfg:           cfg,
		backend:       opts.Backend,
		store:         opts.Store,
		watchPath:     opts.WatchPath,
		speech:        synth,
		remote:        opts.Remote,
		autoSync:      opts.AutoSync,
		clipboard:     clip,
		ctx:           ctx,
		stop:          stop,
		query:         &inflight{},
		transcript:    transcript,
		suggestions:   suggestions,
		predictive:    len(opts.Initial.Suggestions) > 0,
		viewport:      vp,
		input:         input,
		spinner:       sp,
		keyMap:        DefaultKeyMap(),
		registry:      reg,
		parser:        commands.NewParser(reg),
		modelID:       modelID,
		research:      cfg.UI.ResearchMode,
		showReasoning: cfg.UI.ShowReasoning,
	}
	input.SetResearch(m.research)
	m.refreshHistory()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the store watcher and the startup pull.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watchPath != "" && m.store != nil {
		cmds = append(cmds, startWatchCmd(m.ctx, m.watchPath))
	}
	if m.remote != nil {
		cmds = append(cmds, syncCmd(m.ctx, m.remote, commands.SyncPull, m.snapshot(), true))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.state != StateThinking && !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case QueryResultMsg:
		return m.handleQueryResult(msg)
	case SuggestionsMsg:
		return m.handleSuggestions(msg)
	case PersistedMsg:
		if msg.Err != nil {
			return m.showError("Could not save history: " + msg.Err.Error())
		}
		return m, nil
	case watchStartedMsg:
		return m.handleWatchStarted(msg)
	case StoreChangedMsg:
		return m.handleStoreChanged()
	case SnapshotLoadedMsg:
		return m.handleSnapshotLoaded(msg)
	case SyncDoneMsg:
		return m.handleSyncDone(msg)
	case SpeechDoneMsg:
		return m.handleSpeechDone(msg)
	case ExportedMsg:
		if msg.Err != nil {
			return m.showError("Export failed: " + msg.Err.Error())
		}
		return m.showToast(components.ToastSuccess, "Exported to "+msg.Path)
	case AttachedMsg:
		return m.handleAttached(msg)
	case components.ToastExpireMsg:
		if msg.ID == m.toast.ID {
			m.toast = components.Toast{}
		}
		if msg.ID == m.clearToastID {
			m.clearToastID = 0
		}
		return m, nil
	}

	return m.handleCommandMsg(msg)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	km := m.keyMap
	switch {
	case key.Matches(msg, km.Quit):
		if m.state == StateThinking && msg.String() == "ctrl+c" {
			return m.cancelQuery()
		}
		return m.quit()

	case key.Matches(msg, km.Cancel):
		switch {
		case m.state == StateThinking:
			return m.cancelQuery()
		case m.notice != "":
			m.notice = ""
			m.updateViewport()
		case m.clearToastID != 0:
			m.clearToastID = 0
			m.toast = components.Toast{}
		}
		return m, nil

	case key.Matches(msg, km.Submit):
		return m.submit()

	case key.Matches(msg, km.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, km.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, km.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, km.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, km.Research):
		return m.setResearch(!m.research)
	case key.Matches(msg, km.Reasoning):
		return m.setReasoning(!m.showReasoning)
	case key.Matches(msg, km.Copy):
		return m.copyLastSyntax()
	case key.Matches(msg, km.Speak):
		if m.speaking {
			return m.stopSpeech()
		}
		return m.speakLast()
	case key.Matches(msg, km.Clear):
		return m.requestClear()
	case key.Matches(msg, km.Complete):
		return m.complete()
	}

	// Digits pick a welcome suggestion while the input is empty.
	if m.transcript.IsEmpty() && m.input.Value() == "" && msg.Type == tea.KeyRunes {
		if s, ok := m.welcome().Pick(msg.String()); ok {
			m.input.SetValue(s)
			return m, nil
		}
	}

	cmd := m.input.Update(msg)
	m.hints = components.CommandHints(m.input.Value(), m.registry.Names(), maxCommandHints)
	return m, cmd
}

// complete applies Tab completion: a single candidate replaces the input,
// several are shown as hints.
func (m Model) complete() (Model, tea.Cmd) {
	candidates := m.registry.Complete(m.input.Value(), model.ModelIDs())
	switch len(candidates) {
	case 0:
		return m, nil
	case 1:
		value := candidates[0]
		if cmd := m.registry.Get(value); cmd != nil && len(cmd.Args) > 0 {
			value += " "
		}
		m.input.SetValue(value)
		m.hints = nil
	default:
		m.input.SetValue(commonPrefix(candidates))
		m.hints = candidates
	}
	return m, nil
}

func commonPrefix(values []string) string {
	prefix := values[0]
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

// =============================================================================
// ACCESSORS
// =============================================================================

// GetState returns the current state.
func (m Model) GetState() State {
	return m.state
}

// Transcript returns the conversation.
func (m Model) Transcript() *model.Transcript {
	return m.transcript
}

// ModelID returns the active model ID.
func (m Model) ModelID() string {
	return m.modelID
}

// Research reports whether research mode is on.
func (m Model) Research() bool {
	return m.research
}

// Suggestions returns the current suggestions.
func (m Model) Suggestions() []string {
	return m.suggestions
}

// snapshot captures what is persisted.
func (m Model) snapshot() storage.Snapshot {
	return storage.Snapshot{
		Messages:    m.transcript.Messages(),
		Suggestions: append([]string(nil), m.suggestions...),
	}
}

// refreshHistory rebuilds the recallable prompts from the transcript.
func (m *Model) refreshHistory() {
	m.input.SetHistory(history.BuildPromptHistory(m.transcript.Messages()))
}
