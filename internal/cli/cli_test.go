// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// HELPERS
// =============================================================================

const vlanCard = `{
  "reasoning": "VLAN creation",
  "deviceCategory": "switch",
  "commandMode": "Global Configuration",
  "syntax": "vlan <id>",
  "description": "Creates a VLAN",
  "usageContext": "Access layer",
  "options": "N/A",
  "troubleshooting": "N/A",
  "security": "N/A",
  "examples": "Switch(config)# vlan 10"
}`

// fakeGemini answers every generateContent call with vlanCard.
func fakeGemini(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": vlanCard}}},
			}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// isolate points the app directory at a temp dir and clears credentials.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(util.HomeEnv, dir)
	for _, name := range []string{"CISCOCLI_API_KEY", "GEMINI_API_KEY", "API_KEY", "CISCOCLI_BASE_URL",
		"CISCOCLI_STORE", "CISCOCLI_STORE_PATH", "CISCOCLI_SYNC_TOKEN", "CISCOCLI_MODEL", "CISCOCLI_THEME",
		"CISCOCLI_STORE_PASSPHRASE"} {
		t.Setenv(name, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func testApp(in string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{cfg: config.Default(), in: strings.NewReader(in), out: &out, errOut: io.Discard}, &out
}

// fakeRemote records pushes and serves a fixed remote snapshot.
type fakeRemote struct {
	remote storage.Snapshot
	found  bool
	pushed []storage.Snapshot
	err    error
}

func (f *fakeRemote) Pull(context.Context) (storage.Snapshot, bool, error) {
	return f.remote, f.found, f.err
}

func (f *fakeRemote) Push(_ context.Context, snap storage.Snapshot) error {
	f.pushed = append(f.pushed, snap)
	return f.err
}

// =============================================================================
// ASK HELPERS
// =============================================================================

func TestReadQuery(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		in      io.Reader
		want    string
		wantErr bool
	}{
		{name: "args joined", args: []string{"show", "vlan", "brief"}, want: "show vlan brief"},
		{name: "args trimmed", args: []string{"  bgp  "}, want: "bgp"},
		{name: "piped stdin", in: strings.NewReader("  ospf areas\n"), want: "ospf areas"},
		{name: "empty stdin", in: strings.NewReader("   \n"), wantErr: true},
		{name: "no input", wantErr: true},
		{name: "too long", in: strings.NewReader(strings.Repeat("x", MaxStdinQuery+1)), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readQuery(tt.args, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("readQuery() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readQuery() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRequest(t *testing.T) {
	req, msg, err := buildRequest(model.ModelPro, "vlan 10", askOptions{model: "flash", search: true})
	require.NoError(t, err)
	assert.Equal(t, model.ModelFlash, req.Model)
	assert.True(t, req.ForceSearch)
	assert.Equal(t, "vlan 10", msg.Content)
	assert.Equal(t, model.RoleUser, msg.Role)

	_, _, err = buildRequest(model.ModelPro, "x", askOptions{model: "gpt-4"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "running-config.txt")
	require.NoError(t, os.WriteFile(path, []byte("hostname R1\n"), 0600))
	req, msg, err = buildRequest("", "check this", askOptions{file: path})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultModelID, req.Model)
	assert.Equal(t, "running-config.txt", req.AttachmentName)
	assert.Contains(t, req.Attachment, "hostname R1")
	assert.Equal(t, "running-config.txt", msg.Attachment)

	_, _, err = buildRequest("", "not an image", askOptions{image: path})
	assert.Error(t, err)
}

func TestRenderAnswer_Plain(t *testing.T) {
	var resp model.CiscoQueryResponse
	require.NoError(t, json.Unmarshal([]byte(vlanCard), &resp))

	out := renderAnswer(&resp, "dark", false, false)
	assert.Contains(t, out, "vlan <id>")
	assert.Contains(t, out, "Creates a VLAN")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "VLAN creation")

	out = renderAnswer(&resp, "dark", true, false)
	assert.Contains(t, out, "VLAN creation")
}

func TestSpeechTextFor(t *testing.T) {
	no := false
	general := &model.CiscoQueryResponse{IsTechnicalQuestion: &no, GeneralAnswer: "**Hello** there"}
	assert.Equal(t, "Hello there", speechTextFor(general))

	tech := &model.CiscoQueryResponse{Description: "Creates a VLAN"}
	assert.Equal(t, "Creates a VLAN", speechTextFor(tech))
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func TestRequireConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		yes   bool
		input string
		want  bool
	}{
		{name: "flag skips prompt", yes: true, want: true},
		{name: "y", input: "y\n", want: true},
		{name: "yes upper", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "no newline", input: "y", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := RequireConfirmation(tt.yes, "clear history", strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("RequireConfirmation() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RequireConfirmation() = %v, want %v", got, tt.want)
			}
			if !tt.yes && !strings.Contains(out.String(), "clear history") {
				t.Errorf("prompt %q does not name the action", out.String())
			}
		})
	}

	_, err := RequireConfirmation(false, "x", strings.NewReader(""), io.Discard)
	assert.Error(t, err)
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := OutputJSON(&buf, true, "history", func() (interface{}, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "history", resp.Command)
	assert.Nil(t, resp.Error)

	buf.Reset()
	err = OutputJSON(&buf, true, "sync", func() (interface{}, error) {
		return nil, ErrSyncDisabled
	})
	assert.ErrorIs(t, err, ErrSyncDisabled)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)

	buf.Reset()
	err = OutputJSON(&buf, false, "x", func() (interface{}, error) { return "ignored", nil })
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFormatPromptList(t *testing.T) {
	assert.Equal(t, "No prompts yet.\n", formatPromptList(nil))

	prompts := make([]string, 10)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("p%d", i)
	}
	prompts[0] = "multi\nline"
	out := formatPromptList(prompts)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, " 1  multi line", lines[0])
	assert.Equal(t, "10  p9", lines[9])
}

// =============================================================================
// SYNC
// =============================================================================

func TestSyncSnapshot(t *testing.T) {
	local := storage.Snapshot{Messages: []model.ChatMessage{
		{ID: "a", Role: model.RoleUser, Content: "vlan", Timestamp: 1},
	}}
	remoteSnap := storage.Snapshot{Messages: []model.ChatMessage{
		{ID: "b", Role: model.RoleUser, Content: "bgp", Timestamp: 2},
	}, Suggestions: []string{"remote suggestion"}}

	t.Run("both merges and pushes", func(t *testing.T) {
		r := &fakeRemote{remote: remoteSnap, found: true}
		got, err := syncSnapshot(context.Background(), r, commands.SyncBoth, local)
		require.NoError(t, err)
		assert.Len(t, got.Messages, 2)
		require.Len(t, r.pushed, 1)
		assert.Len(t, r.pushed[0].Messages, 2)
	})

	t.Run("pull does not push", func(t *testing.T) {
		r := &fakeRemote{remote: remoteSnap, found: true}
		got, err := syncSnapshot(context.Background(), r, commands.SyncPull, local)
		require.NoError(t, err)
		assert.Len(t, got.Messages, 2)
		assert.Empty(t, r.pushed)
	})

	t.Run("push only", func(t *testing.T) {
		r := &fakeRemote{remote: remoteSnap, found: true}
		got, err := syncSnapshot(context.Background(), r, commands.SyncPush, local)
		require.NoError(t, err)
		assert.Equal(t, local, got)
		require.Len(t, r.pushed, 1)
		assert.Equal(t, local, r.pushed[0])
	})

	t.Run("missing remote keeps local", func(t *testing.T) {
		r := &fakeRemote{}
		got, err := syncSnapshot(context.Background(), r, commands.SyncBoth, local)
		require.NoError(t, err)
		assert.Equal(t, local, got)
	})

	t.Run("pull error", func(t *testing.T) {
		r := &fakeRemote{err: errors.New("offline")}
		_, err := syncSnapshot(context.Background(), r, commands.SyncBoth, local)
		assert.ErrorContains(t, err, "offline")
	})
}

func TestRunSync_Disabled(t *testing.T) {
	app, _ := testApp("")
	assert.ErrorIs(t, runSync(context.Background(), app, nil, commands.SyncBoth), ErrSyncDisabled)
}

// =============================================================================
// LINE CHAT SESSION
// =============================================================================

func newTestSession(t *testing.T, in string) (*chatSession, *bytes.Buffer) {
	t.Helper()
	app, out := testApp(in)
	srv := fakeGemini(t)
	client := cloud.NewClient("test-key").WithBaseURL(srv.URL)
	s := newSession(app, client, storage.NewMemoryStore(), storage.Snapshot{})
	s.copy = func(string) error { return nil }
	return s, out
}

func TestChatSession_AskAndHistory(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()

	require.NoError(t, s.ask(ctx, "create vlan 10"))
	require.NoError(t, s.ask(ctx, "show vlan"))
	assert.Equal(t, 4, s.transcript.Len())
	assert.Contains(t, out.String(), "vlan <id>")

	snap, err := s.store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Messages, 4)

	out.Reset()
	require.NoError(t, s.command(ctx, "/history 1"))
	assert.Contains(t, out.String(), "show vlan")
	assert.NotContains(t, out.String(), "create vlan 10")
}

func TestChatSession_Commands(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()

	require.NoError(t, s.command(ctx, "/search on"))
	assert.True(t, s.research)
	assert.Contains(t, s.prompt(), "[research]")

	require.NoError(t, s.command(ctx, "/model flash"))
	assert.Equal(t, model.ModelFlash, s.modelID)

	require.NoError(t, s.command(ctx, "/reasoning"))
	assert.Equal(t, !config.Default().UI.ShowReasoning, s.reasoning)

	assert.ErrorIs(t, s.command(ctx, "/quit"), errQuit)
	assert.Error(t, s.command(ctx, "/nonsense"))
	assert.ErrorContains(t, s.command(ctx, "/theme dark"), "full-screen")
	assert.ErrorContains(t, s.command(ctx, "/copy"), "nothing to copy yet")

	out.Reset()
	require.NoError(t, s.command(ctx, "/help"))
	assert.Contains(t, out.String(), "/history")
}

func TestChatSession_AttachAndCopy(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "show-run.txt")
	require.NoError(t, os.WriteFile(path, []byte("interface Gi0/1\n"), 0600))
	require.NoError(t, s.command(ctx, "/attach "+path))
	require.NotNil(t, s.attachment)
	assert.Contains(t, s.prompt(), "[+show-run.txt]")

	require.NoError(t, s.ask(ctx, ""))
	assert.Nil(t, s.attachment)
	first := s.transcript.Messages()[0]
	assert.Equal(t, model.AttachedFilePlaceholder, first.Content)
	assert.Equal(t, "show-run.txt", first.Attachment)

	var copied string
	s.copy = func(text string) error { copied = text; return nil }
	out.Reset()
	require.NoError(t, s.command(ctx, "/copy"))
	assert.Equal(t, "vlan <id>", copied)
	assert.Contains(t, out.String(), "Copied")
}

// fakeSynth records what the session asks it to say.
type fakeSynth struct {
	said []string
}

func (f *fakeSynth) Speak(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return nil
}

func (f *fakeSynth) Stop()          {}
func (f *fakeSynth) Speaking() bool { return false }

func TestChatSession_CopyAndSpeak(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		answered bool
		wantErr  string
		copied   string
		said     string
	}{
		{name: "copy before any answer", input: "/copy", wantErr: "nothing to copy yet"},
		{name: "speak before any answer", input: "/speak", wantErr: "nothing to read yet"},
		{name: "copy last syntax", input: "/copy", answered: true, copied: "vlan <id>"},
		{name: "speak last description", input: "/speak", answered: true, said: "Creates a VLAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, "")
			ctx := context.Background()

			var copied string
			s.copy = func(text string) error { copied = text; return nil }
			synth := &fakeSynth{}
			s.synth = synth

			if tt.answered {
				require.NoError(t, s.ask(ctx, "create vlan 10"))
			}
			err := s.command(ctx, tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, copied)
				assert.Empty(t, synth.said)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.copied, copied)
			if tt.said == "" {
				assert.Empty(t, synth.said)
			} else {
				assert.Equal(t, []string{tt.said}, synth.said)
			}
		})
	}
}

func TestChatSession_ClearAndExport(t *testing.T) {
	s, _ := newTestSession(t, "n\ny\n")
	ctx := context.Background()
	require.NoError(t, s.ask(ctx, "vlan 10"))

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, s.command(ctx, "/export "+path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vlan 10")

	// RequireConfirmation reads one line per call.
	s.app.in = strings.NewReader("n\n")
	require.NoError(t, s.command(ctx, "/clear"))
	assert.Equal(t, 2, s.transcript.Len())

	s.app.in = strings.NewReader("y\n")
	require.NoError(t, s.command(ctx, "/clear"))
	assert.True(t, s.transcript.IsEmpty())
}

func TestChatSession_SyncDisabled(t *testing.T) {
	s, _ := newTestSession(t, "")
	assert.ErrorIs(t, s.command(context.Background(), "/sync"), ErrSyncDisabled)
}

// =============================================================================
// COMMAND TREE
// =============================================================================

func TestExecute_Version(t *testing.T) {
	isolate(t)
	out, _, code := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "ciscocli "+Version)
	assert.Contains(t, out, "commit:")
}

func TestExecute_Models(t *testing.T) {
	isolate(t)
	out, _, code := execute(t, "models")
	require.Equal(t, 0, code)
	for _, m := range model.Models {
		assert.Contains(t, out, m.ID)
	}
	assert.Contains(t, out, "* ")

	out, _, code = execute(t, "models", "--json")
	require.Equal(t, 0, code)
	var resp JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
}

func TestExecute_UnknownCommand(t *testing.T) {
	isolate(t)
	_, errOut, code := execute(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestExecute_ConfigSetGet(t *testing.T) {
	dir := isolate(t)

	_, errOut, code := execute(t, "config", "set", "ui.theme", "light")
	require.Equal(t, 0, code, errOut)
	_, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	out, _, code := execute(t, "config", "get", "ui.theme")
	require.Equal(t, 0, code)
	assert.Equal(t, "light\n", out)

	_, _, code = execute(t, "config", "set", "api.key", "secret-key")
	require.Equal(t, 0, code)
	out, _, _ = execute(t, "config", "get", "api.key")
	assert.Equal(t, "[REDACTED]\n", out)
	out, _, _ = execute(t, "config", "get", "api.key", "--reveal")
	assert.Equal(t, "secret-key\n", out)

	_, _, code = execute(t, "config", "set", "no.such.key", "x")
	assert.Equal(t, 1, code)

	out, _, code = execute(t, "config", "path")
	require.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", out)
}

func TestExecute_AskRecordsHistory(t *testing.T) {
	dir := isolate(t)
	srv := fakeGemini(t)
	t.Setenv("CISCOCLI_API_KEY", "test-key")
	t.Setenv("CISCOCLI_BASE_URL", srv.URL)

	out, errOut, code := execute(t, "ask", "create", "vlan", "10")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "vlan <id>")

	_, _, code = execute(t, "ask", "--no-save", "unsaved question")
	require.Equal(t, 0, code)

	out, _, code = execute(t, "history", "--json")
	require.Equal(t, 0, code)
	var resp struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"create vlan 10"}, resp.Data)

	exportPath := filepath.Join(dir, "session.md")
	_, _, code = execute(t, "history", "export", "--out", exportPath)
	require.Equal(t, 0, code)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "create vlan 10")

	_, _, code = execute(t, "history", "clear", "--yes")
	require.Equal(t, 0, code)
	out, _, _ = execute(t, "history")
	assert.Equal(t, "No prompts yet.\n", out)
}

func TestExecute_AskWithoutKey(t *testing.T) {
	isolate(t)
	_, errOut, code := execute(t, "ask", "vlan")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no API key")
}

func TestGetTerminalWidth_Columns(t *testing.T) {
	if IsStdoutTTY() {
		t.Skip("stdout is a terminal")
	}
	tests := []struct {
		columns string
		want    int
	}{
		{"", DefaultTerminalWidth},
		{"100", 100},
		{"10", MinTerminalWidth},
		{"wide", DefaultTerminalWidth},
	}
	for _, tc := range tests {
		t.Setenv("COLUMNS", tc.columns)
		assert.Equal(t, tc.want, GetTerminalWidth(), "COLUMNS=%q", tc.columns)
	}

	t.Setenv("COLUMNS", "300")
	assert.Equal(t, MaxCardWidth, cardWidth())
}
