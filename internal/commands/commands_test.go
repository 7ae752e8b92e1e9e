// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/model flash", true},
		{"  /help", true},
		{"show vlan", false},
		{"show /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/model flash", "/model"},
		{"  /help  ", "/help"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"one two", []string{"one", "two"}},
		{`"my configs/core.cfg"`, []string{"my configs/core.cfg"}},
		{`'it''s'`, []string{"its"}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`""`, []string{""}},
		{"  spaced   out  ", []string{"spaced", "out"}},
	}

	for _, tc := range tests {
		got := ParseArgs(tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseArgs(%q) = %#v, want %#v", tc.input, got, tc.want)
		}
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(NewRegistry())

	t.Run("query", func(t *testing.T) {
		r := p.Parse("show ip route")
		if r.IsCommand {
			t.Fatal("plain text parsed as a command")
		}
	})

	t.Run("alias", func(t *testing.T) {
		r := p.Parse("/m flash")
		if r.Error != nil {
			t.Fatalf("unexpected error: %v", r.Error)
		}
		if r.Command == nil || r.Command.Name != "/model" {
			t.Fatalf("Command = %v, want /model", r.Command)
		}
		if !reflect.DeepEqual(r.Args, []string{"flash"}) {
			t.Errorf("Args = %v", r.Args)
		}
	})

	t.Run("raw args", func(t *testing.T) {
		r := p.Parse("/attach  ~/my file.cfg ")
		if r.RawArgs != "~/my file.cfg" {
			t.Errorf("RawArgs = %q", r.RawArgs)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		r := p.Parse("/frobnicate")
		if !errors.Is(r.Error, ErrUnknownCommand) {
			t.Errorf("Error = %v, want ErrUnknownCommand", r.Error)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		r := p.Parse("/attach")
		var ve *ValidationError
		if !errors.As(r.Error, &ve) || ve.Arg != "path" {
			t.Errorf("Error = %v, want missing path", r.Error)
		}
	})

	t.Run("invalid enum", func(t *testing.T) {
		r := p.Parse("/sync sideways")
		var ve *ValidationError
		if !errors.As(r.Error, &ve) || ve.Got != "sideways" {
			t.Fatalf("Error = %v, want invalid value", r.Error)
		}
		if !strings.Contains(ve.Error(), "push, pull") {
			t.Errorf("message %q should list allowed values", ve.Error())
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		r := p.Parse("/model gpt-4")
		var ve *ValidationError
		if !errors.As(r.Error, &ve) || ve.Reason != "unknown model" {
			t.Errorf("Error = %v, want unknown model", r.Error)
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		r := p.Parse("/search on now")
		var ve *ValidationError
		if !errors.As(r.Error, &ve) || ve.Got != "now" {
			t.Errorf("Error = %v, want too many arguments", r.Error)
		}
		if r := p.Parse("/quit now"); r.Error == nil {
			t.Error("/quit now should be rejected")
		}
	})

	t.Run("enum is case-insensitive", func(t *testing.T) {
		if r := p.Parse("/theme LIGHT"); r.Error != nil {
			t.Errorf("unexpected error: %v", r.Error)
		}
	})
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{
		"/help", "/clear", "/model", "/models", "/search", "/attach", "/detach",
		"/speak", "/stop", "/sync", "/export", "/copy", "/suggest", "/quit",
	} {
		if reg.Get(name) == nil {
			t.Errorf("missing built-in %s", name)
		}
	}
	if reg.Get("/HELP") == nil {
		t.Error("lookup should be case-insensitive")
	}

	names := reg.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names not sorted: %v", names)
		}
	}

	groups := reg.ByCategory()
	total := 0
	for _, cat := range Categories {
		total += len(groups[cat])
	}
	if total != len(names) {
		t.Errorf("categories hold %d commands, want %d", total, len(names))
	}
}

func TestRegistry_Complete(t *testing.T) {
	reg := NewRegistry()
	models := model.ModelIDs()

	tests := []struct {
		input string
		want  []string
	}{
		{"/mo", []string{"/model", "/models"}},
		{"/sync p", []string{"/sync pull", "/sync push"}},
		{"/search ", []string{"/search on", "/search off"}},
		{"/model gemini-3-f", []string{"/model gemini-3-flash-preview"}},
		{"/sync push ", nil},
		{"/nope x", nil},
		{"show", nil},
	}

	for _, tc := range tests {
		got := reg.Complete(tc.input, models)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(sortedCopy(got), sortedCopy(tc.want)) {
			t.Errorf("Complete(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func run(t *testing.T, ctx *Context, input string) interface{} {
	t.Helper()
	reg := NewRegistry()
	if ctx.Registry == nil {
		ctx.Registry = reg
	}
	cmd := Execute(ctx, NewParser(reg).Parse(input))
	if cmd == nil {
		t.Fatalf("Execute(%q) returned nil", input)
	}
	return cmd()
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		input string
		ctx   Context
		want  interface{}
	}{
		{"/quit", Context{}, QuitMsg{}},
		{"/clear", Context{}, ClearRequestMsg{}},
		{"/detach", Context{}, DetachMsg{}},
		{"/speak", Context{}, SpeakMsg{}},
		{"/stop", Context{}, StopSpeechMsg{}},
		{"/copy", Context{}, CopyMsg{}},
		{"/suggest", Context{}, SuggestMsg{}},
		{"/search", Context{Research: false}, ResearchMsg{On: true}},
		{"/search", Context{Research: true}, ResearchMsg{On: false}},
		{"/search on", Context{Research: true}, ResearchMsg{On: true}},
		{"/reasoning", Context{ShowReasoning: true}, ReasoningMsg{On: false}},
		{"/sync", Context{}, SyncMsg{Direction: SyncBoth}},
		{"/sync PULL", Context{}, SyncMsg{Direction: SyncPull}},
		{"/theme Light", Context{}, ThemeMsg{Mode: "light"}},
		{`/attach "run 1.cfg"`, Context{}, AttachMsg{Path: "run 1.cfg"}},
		{"/export out.md", Context{}, ExportMsg{Path: "out.md"}},
		{"/model lite", Context{}, ModelSwitchMsg{Model: model.Models[2]}},
	}

	for _, tc := range tests {
		ctx := tc.ctx
		got := run(t, &ctx, tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s -> %#v, want %#v", tc.input, got, tc.want)
		}
	}
}

func TestHandleModel(t *testing.T) {
	got := run(t, &Context{Model: model.ModelFlash}, "/model")
	info, ok := got.(InfoMsg)
	if !ok || !strings.Contains(info.Text, "Gemini 3 Flash") {
		t.Errorf("/model = %#v", got)
	}

	got = run(t, &Context{}, "/model gpt-4")
	if _, ok := got.(ErrorMsg); !ok {
		t.Errorf("/model gpt-4 = %#v, want ErrorMsg", got)
	}

	got = run(t, &Context{Model: model.ModelPro}, "/models")
	list, ok := got.(ShowModelsMsg)
	if !ok || !strings.Contains(list.Text, "`gemini-3-pro-preview` Complex Reasoning & Search *(active)*") {
		t.Errorf("/models = %#v", got)
	}
}

func TestHandleHelp(t *testing.T) {
	got := run(t, &Context{}, "/help")
	help, ok := got.(ShowHelpMsg)
	if !ok {
		t.Fatalf("/help = %#v", got)
	}
	for _, want := range []string{"**Conversation**", "`/attach <path>`", "`/sync [push|pull]`"} {
		if !strings.Contains(help.Text, want) {
			t.Errorf("help text missing %q", want)
		}
	}

	got = run(t, &Context{}, "/help q")
	if help, ok := got.(ShowHelpMsg); !ok || !strings.Contains(help.Text, "Aliases: /q, /exit") {
		t.Errorf("/help q = %#v", got)
	}

	got = run(t, &Context{}, "/help nope")
	if _, ok := got.(ErrorMsg); !ok {
		t.Errorf("/help nope = %#v, want ErrorMsg", got)
	}
}

func TestExecute_ParseError(t *testing.T) {
	got := run(t, &Context{}, "/theme")
	msg, ok := got.(ErrorMsg)
	if !ok {
		t.Fatalf("got %#v, want ErrorMsg", got)
	}
	var ve *ValidationError
	if !errors.As(msg.Err, &ve) {
		t.Errorf("Err = %v, want ValidationError", msg.Err)
	}

	if Execute(&Context{}, ParseResult{}) != nil {
		t.Error("non-command should not execute")
	}
}

func TestHandleHistory(t *testing.T) {
	if got := HandleHistory(&Context{}, nil)(); got != (HistoryMsg{Count: DefaultHistoryCount}) {
		t.Errorf("HandleHistory() = %#v", got)
	}
	if got := HandleHistory(&Context{}, []string{"3"})(); got != (HistoryMsg{Count: 3}) {
		t.Errorf("HandleHistory(3) = %#v", got)
	}
	if _, ok := HandleHistory(&Context{}, []string{"zero"})().(ErrorMsg); !ok {
		t.Error("a non-numeric count should be an error")
	}

	text := HistoryText([]string{"show vlan", "show ip route"})
	if !strings.Contains(text, "1. show vlan") || !strings.Contains(text, "2. show ip route") {
		t.Errorf("HistoryText = %q", text)
	}
	if HistoryText(nil) != "No prompts yet." {
		t.Errorf("HistoryText(nil) = %q", HistoryText(nil))
	}
}
