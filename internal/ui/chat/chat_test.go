// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeBackend struct {
	configured bool
	resp       *model.CiscoQueryResponse
	err        error

	mu       sync.Mutex
	requests []cloud.QueryRequest
}

func (f *fakeBackend) IsConfigured() bool { return f.configured }

func (f *fakeBackend) Query(_ context.Context, req cloud.QueryRequest) (*model.CiscoQueryResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeBackend) Suggestions(_ context.Context, history []string) ([]string, error) {
	return []string{"a", "b", "c", "d", "e"}, nil
}

type fakeRemote struct {
	remote storage.Snapshot
	found  bool
	pushed *storage.Snapshot
}

func (f *fakeRemote) Pull(context.Context) (storage.Snapshot, bool, error) {
	return f.remote, f.found, nil
}

func (f *fakeRemote) Push(_ context.Context, snap storage.Snapshot) error {
	f.pushed = &snap
	return nil
}

func technical(syntax string) *model.CiscoQueryResponse {
	return &model.CiscoQueryResponse{
		Syntax:      syntax,
		Description: "Creates a VLAN.",
		CommandMode: "Global Config",
	}
}

func newTestModel(t *testing.T, backend Backend, initial storage.Snapshot) (Model, *[]string) {
	t.Helper()
	var copied []string
	m := New(styles.NewTheme("dark"), Options{
		Backend: backend,
		Store:   storage.NewMemoryStore(),
		Initial: initial,
		Clipboard: func(s string) error {
			copied = append(copied, s)
			return nil
		},
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, &copied
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func toastExpire(id int) tea.Msg { return components.ToastExpireMsg{ID: id} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// ask submits prompt and delivers a successful answer.
func ask(t *testing.T, m Model, prompt string) Model {
	t.Helper()
	m.input.SetValue(prompt)
	m = send(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, StateThinking, m.GetState())
	return send(t, m, QueryResultMsg{Seq: m.query.current(), Query: prompt, Response: technical("vlan 10")})
}

// =============================================================================
// QUERIES
// =============================================================================

func TestSubmit_AppendsPromptAndAnswer(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("create vlan 10")
	m, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, StateThinking, m.GetState())
	assert.Equal(t, "", m.input.Value())
	require.Equal(t, 1, m.Transcript().Len())
	assert.True(t, m.query.active())

	m = send(t, m, QueryResultMsg{Seq: m.query.current(), Query: "create vlan 10", Response: technical("vlan 10")})
	assert.Equal(t, StateReady, m.GetState())
	require.Equal(t, 2, m.Transcript().Len())

	last, ok := m.Transcript().Last()
	require.True(t, ok)
	assert.Equal(t, model.RoleAssistant, last.Role)
	require.NotNil(t, last.Metadata)
	assert.Equal(t, "vlan 10", last.Metadata.Syntax)
}

func TestSubmit_WhileThinkingIsRejected(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("first")
	m = send(t, m, keyMsg(tea.KeyEnter))
	m.input.SetValue("second")
	m = send(t, m, keyMsg(tea.KeyEnter))

	assert.Equal(t, 1, m.Transcript().Len())
	assert.Equal(t, "second", m.input.Value())
	assert.Contains(t, m.toast.Message, "Still working")
}

func TestSubmit_WithoutAPIKey(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: false}, storage.Snapshot{})

	m.input.SetValue("show vlan")
	m = send(t, m, keyMsg(tea.KeyEnter))

	assert.True(t, m.Transcript().IsEmpty())
	assert.True(t, m.toast.IsError())
	assert.Contains(t, m.toast.Message, "API key")
}

func TestSubmit_EmptyInputIgnored(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = send(t, m, keyMsg(tea.KeyEnter))
	assert.Equal(t, StateReady, m.GetState())
	assert.True(t, m.Transcript().IsEmpty())
}

func TestQueryFailure_AppendsApology(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("show bgp")
	m = send(t, m, keyMsg(tea.KeyEnter))
	m = send(t, m, QueryResultMsg{Seq: m.query.current(), Query: "show bgp", Err: cloud.ErrRateLimited})

	last, ok := m.Transcript().Last()
	require.True(t, ok)
	assert.True(t, last.Error)
	assert.Equal(t, model.ApologyMessage, last.Content)
	assert.True(t, m.toast.IsError())
	assert.Contains(t, m.toast.Message, "Rate limited")
}

func TestCancel_DropsLateResult(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("show ip route")
	m = send(t, m, keyMsg(tea.KeyEnter))
	seq := m.query.current()

	m = send(t, m, keyMsg(tea.KeyEscape))
	assert.Equal(t, StateReady, m.GetState())
	assert.Equal(t, "Request cancelled", m.toast.Message)
	assert.False(t, m.query.active())

	m = send(t, m, QueryResultMsg{Seq: seq, Query: "show ip route", Response: technical("show ip route")})
	assert.Equal(t, 1, m.Transcript().Len())
}

func TestQueryCmd_PassesRequest(t *testing.T) {
	backend := &fakeBackend{configured: true, resp: technical("vlan 10")}
	req := cloud.QueryRequest{Query: "vlan", Model: model.ModelFlash, ForceSearch: true}

	msg := queryCmd(context.Background(), backend, req, 7)()
	result, ok := msg.(QueryResultMsg)
	require.True(t, ok)
	assert.Equal(t, 7, result.Seq)
	assert.Equal(t, "vlan", result.Query)
	require.Len(t, backend.requests, 1)
	assert.True(t, backend.requests[0].ForceSearch)
	assert.Equal(t, model.ModelFlash, backend.requests[0].Model)
}

func TestSuggestCmd_CapsResults(t *testing.T) {
	msg := suggestCmd(context.Background(), &fakeBackend{}, []string{"q1"}, false)().(SuggestionsMsg)
	assert.Len(t, msg.Suggestions, model.MaxSuggestions)
	assert.True(t, msg.Predictive)
}

// =============================================================================
// PROMPT HISTORY
// =============================================================================

func TestHistoryRecall(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = ask(t, m, "first")
	m = ask(t, m, "second")

	m.input.SetValue("dra")
	m = send(t, m, keyMsg(tea.KeyUp))
	assert.Equal(t, "second", m.input.Value())
	m = send(t, m, keyMsg(tea.KeyUp))
	assert.Equal(t, "first", m.input.Value())
	m = send(t, m, keyMsg(tea.KeyUp))
	assert.Equal(t, "first", m.input.Value())

	m = send(t, m, keyMsg(tea.KeyDown))
	assert.Equal(t, "second", m.input.Value())
	m = send(t, m, keyMsg(tea.KeyDown))
	assert.Equal(t, "dra", m.input.Value())
}

func TestHistoryRecall_FromPersistedTranscript(t *testing.T) {
	initial := storage.Snapshot{Messages: []model.ChatMessage{
		model.NewUserMessage("show version"),
		model.NewAssistantMessage("show version", technical("show version")),
	}}
	m, _ := newTestModel(t, &fakeBackend{configured: true}, initial)

	m = send(t, m, keyMsg(tea.KeyUp))
	assert.Equal(t, "show version", m.input.Value())
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestSlashCommand_Research(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("/search on")
	m, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.input.Value())

	msg := cmd()
	require.IsType(t, commands.ResearchMsg{}, msg)
	m = send(t, m, msg)
	assert.True(t, m.Research())
	assert.True(t, m.Transcript().IsEmpty())
}

func TestSlashCommand_ModelSwitch(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("/model flash")
	_, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	m = send(t, m, cmd())
	assert.Equal(t, model.ModelFlash, m.ModelID())
}

func TestSlashCommand_Unknown(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("/frobnicate")
	_, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	m = send(t, m, cmd())
	assert.True(t, m.toast.IsError())
	assert.Contains(t, m.toast.Message, "/help")
}

func TestHelpNotice_Dismiss(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m = send(t, m, commands.ShowHelpMsg{Text: "## Commands"})
	assert.NotEmpty(t, m.notice)
	m = send(t, m, keyMsg(tea.KeyEscape))
	assert.Empty(t, m.notice)
}

func TestTabCompletion(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m.input.SetValue("/exp")
	m = send(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, "/export ", m.input.Value())
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "/s", commonPrefix([]string{"/search", "/speak", "/stop"}))
	assert.Equal(t, "/sync", commonPrefix([]string{"/sync"}))
}

// =============================================================================
// ACTIONS
// =============================================================================

func TestClear_RequiresConfirmation(t *testing.T) {
	initial := storage.Snapshot{Messages: []model.ChatMessage{model.NewUserMessage("show clock")}}
	m, _ := newTestModel(t, &fakeBackend{configured: true}, initial)

	m = send(t, m, keyMsg(tea.KeyCtrlL))
	assert.Equal(t, 1, m.Transcript().Len())
	assert.NotZero(t, m.clearToastID)

	m = send(t, m, keyMsg(tea.KeyCtrlL))
	assert.True(t, m.Transcript().IsEmpty())
	assert.Zero(t, m.clearToastID)
	assert.Equal(t, model.DefaultSuggestions, m.Suggestions())
}

func TestClear_ConfirmationExpires(t *testing.T) {
	initial := storage.Snapshot{Messages: []model.ChatMessage{model.NewUserMessage("show clock")}}
	m, _ := newTestModel(t, &fakeBackend{configured: true}, initial)

	m = send(t, m, keyMsg(tea.KeyCtrlL))
	m = send(t, m, toastExpire(m.clearToastID))
	m = send(t, m, keyMsg(tea.KeyCtrlL))
	assert.Equal(t, 1, m.Transcript().Len())
}

func TestCopy_LastSyntax(t *testing.T) {
	m, copied := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = ask(t, m, "vlan")

	m = send(t, m, keyMsg(tea.KeyCtrlY))
	require.Equal(t, []string{"vlan 10"}, *copied)
	assert.Equal(t, "Copied to clipboard", m.toast.Message)
}

func TestCopy_NothingYet(t *testing.T) {
	m, copied := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = send(t, m, keyMsg(tea.KeyCtrlY))
	assert.Empty(t, *copied)
	assert.Equal(t, "Nothing to copy yet", m.toast.Message)
}

func TestWelcome_DigitPicksSuggestion(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = send(t, m, runes("2"))
	assert.Equal(t, model.DefaultSuggestions[1], m.input.Value())
}

func TestSpeak_Unavailable(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = ask(t, m, "vlan")

	m, cmd := sendCmd(t, m, keyMsg(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.True(t, m.speaking)

	m = send(t, m, cmd())
	assert.False(t, m.speaking)
	assert.True(t, m.toast.IsError())
}

func TestAttach_TextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "running-config.txt")
	require.NoError(t, os.WriteFile(path, []byte("hostname R1\n"), 0o600))

	backend := &fakeBackend{configured: true, resp: technical("show run")}
	m, _ := newTestModel(t, backend, storage.Snapshot{})
	m = send(t, m, attachCmd(path)())
	require.NotNil(t, m.attachment)

	m = send(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, 1, m.Transcript().Len())
	msg, _ := m.Transcript().Last()
	assert.Equal(t, model.AttachedFilePlaceholder, msg.Content)
	assert.Equal(t, "running-config.txt", msg.Attachment)
	assert.Nil(t, m.attachment)
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "topology.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))
	a, err := LoadAttachment(png)
	require.NoError(t, err)
	assert.True(t, a.IsImage())
	assert.True(t, strings.HasPrefix(a.Data, "data:image/png;base64,"))

	bin := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0x00, 0xff, 0xfe, 0x01, 0x02}, 0o600))
	_, err = LoadAttachment(bin)
	assert.ErrorIs(t, err, ErrUnsupportedAttachment)

	_, err = LoadAttachment(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

// =============================================================================
// PERSISTENCE AND SYNC
// =============================================================================

func TestPersistCmd_SavesSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	snap := storage.Snapshot{
		Messages:    []model.ChatMessage{model.NewUserMessage("show arp")},
		Suggestions: []string{"one"},
	}

	msg := persistCmd(context.Background(), store, snap)().(PersistedMsg)
	require.NoError(t, msg.Err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "show arp", got.Messages[0].Content)
	assert.Nil(t, persistCmd(context.Background(), nil, snap))
}

func TestSnapshotLoaded_ReplacesTranscript(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})

	m = send(t, m, SnapshotLoadedMsg{Snapshot: storage.Snapshot{
		Messages: []model.ChatMessage{model.NewUserMessage("from another session")},
	}})
	assert.Equal(t, 1, m.Transcript().Len())

	m = send(t, m, keyMsg(tea.KeyUp))
	assert.Equal(t, "from another session", m.input.Value())
}

func TestSyncCmd_PullMergesAndPushes(t *testing.T) {
	remote := &fakeRemote{
		found: true,
		remote: storage.Snapshot{Messages: []model.ChatMessage{
			{ID: "r", Role: model.RoleUser, Content: "remote", Timestamp: 1},
		}},
	}
	local := storage.Snapshot{
		Messages: []model.ChatMessage{
			{ID: "l", Role: model.RoleUser, Content: "local", Timestamp: 2},
		},
		Suggestions: []string{"keep"},
	}

	msg := syncCmd(context.Background(), remote, commands.SyncBoth, local, false)().(SyncDoneMsg)
	require.NoError(t, msg.Err)
	require.NotNil(t, msg.Snapshot)
	require.Len(t, msg.Snapshot.Messages, 2)
	assert.Equal(t, "remote", msg.Snapshot.Messages[0].Content)
	assert.Equal(t, "local", msg.Snapshot.Messages[1].Content)
	assert.Equal(t, []string{"keep"}, msg.Snapshot.Suggestions)
	require.NotNil(t, remote.pushed)
	assert.Len(t, remote.pushed.Messages, 2)
}

func TestSyncCmd_PushOnly(t *testing.T) {
	remote := &fakeRemote{}
	local := storage.Snapshot{Messages: []model.ChatMessage{model.NewUserMessage("local")}}

	msg := syncCmd(context.Background(), remote, commands.SyncPush, local, false)().(SyncDoneMsg)
	require.NoError(t, msg.Err)
	assert.Nil(t, msg.Snapshot)
	require.NotNil(t, remote.pushed)
}

func TestSyncWithoutRemote(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	m = send(t, m, commands.SyncMsg{})
	assert.True(t, m.toast.IsError())
	assert.False(t, m.syncing)
}

// =============================================================================
// HELPERS AND VIEW
// =============================================================================

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{cloud.ErrNotConfigured, "No API key configured"},
		{cloud.ErrAuthFailed, "The API key was rejected"},
		{context.DeadlineExceeded, "The request timed out"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}
}

func TestCopyAndSpeechText(t *testing.T) {
	no := false
	general := &model.CiscoQueryResponse{IsTechnicalQuestion: &no, GeneralAnswer: "OSPF is a **link-state** protocol."}
	assert.Equal(t, general.GeneralAnswer, copyText(general))
	assert.NotContains(t, speechText(general), "**")

	tech := technical("router ospf 1")
	assert.Equal(t, "router ospf 1", copyText(tech))
	assert.Equal(t, "Creates a VLAN.", speechText(tech))

	empty := &model.CiscoQueryResponse{Syntax: "N/A"}
	assert.Empty(t, copyText(empty))
	assert.Empty(t, speechText(empty))
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{configured: true}, storage.Snapshot{})
	view := m.View()
	assert.Contains(t, view, "Cisco CLI Expert")
	assert.Contains(t, view, "Ready")

	m = ask(t, m, "vlan")
	view = m.View()
	assert.Contains(t, view, "2 messages")
}

func TestView_BeforeResize(t *testing.T) {
	m := New(styles.NewTheme("dark"), Options{})
	assert.Equal(t, "Loading...", m.View())
}
