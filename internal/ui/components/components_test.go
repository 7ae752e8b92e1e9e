// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/chroma/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/format"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

func boolPtr(b bool) *bool { return &b }

func sampleResponse() *model.CiscoQueryResponse {
	return &model.CiscoQueryResponse{
		Reasoning:      "User wants **VLAN** creation.",
		Syntax:         "vlan <id>\n name <name>",
		Description:    "Creates a VLAN and enters `config-vlan` mode.",
		UsageContext:   "N/A",
		Options:        "- **id**: 1-4094\n- **name**: ASCII string",
		Notes:          "n/a",
		Examples:       "Switch(config)# vlan 10\nSwitch(config-vlan)# name USERS",
		DeviceCategory: "switch",
		CommandMode:    "Global Configuration",
		Correction:     "vlan 10",
		Sources:        []model.GroundingSource{{Title: "Cisco VLAN guide", URI: "https://cisco.com/vlan"}},
	}
}

// =============================================================================
// RENDER LINES TESTS
// =============================================================================

func TestRenderLines(t *testing.T) {
	theme := testTheme()
	got := stripANSI(RenderText("Intro **bold** and `code`\n\n- first\n2. second", theme, 0))
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Intro bold and code", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "• first", lines[2])
	assert.Equal(t, "2. second", lines[3])
}

func TestRenderLines_Placeholder(t *testing.T) {
	theme := testTheme()
	for _, raw := range []string{"", "   ", "N/A", " n/a "} {
		assert.Equal(t, "", RenderText(raw, theme, 40), "raw=%q", raw)
	}
}

func TestRenderLines_WrapHangsBullets(t *testing.T) {
	theme := testTheme()
	got := stripANSI(RenderText("- alpha beta gamma delta epsilon", theme, 14))
	lines := strings.Split(got, "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "• alpha"), lines[0])
	for _, l := range lines[1:] {
		assert.True(t, strings.HasPrefix(l, "  "), "continuation %q should be indented", l)
	}
	for _, l := range lines {
		assert.LessOrEqual(t, len([]rune(l)), 14, "line %q too wide", l)
	}
}

func TestRenderSegment(t *testing.T) {
	theme := testTheme()
	assert.Equal(t, "\n", RenderSegment(format.Segment{Kind: format.KindLineBreak}, theme))
	assert.Equal(t, "x", stripANSI(RenderSegment(format.Segment{Kind: format.KindItalic, Value: "x"}, theme)))
}

// =============================================================================
// CODE BLOCK TESTS
// =============================================================================

func TestCiscoLexer_Tokens(t *testing.T) {
	tokens, err := Tokens("Switch(config)# interface GigabitEthernet0/1\n ip address 10.0.0.1 255.255.255.0\n! uplink", LanguageCisco)
	require.NoError(t, err)

	types := map[string]chroma.TokenType{}
	for _, tok := range tokens {
		types[strings.TrimSpace(tok.Value)] = tok.Type
	}
	assert.Equal(t, chroma.GenericPrompt, types["Switch(config)#"])
	assert.Equal(t, chroma.Keyword, types["interface"])
	assert.Equal(t, chroma.NameBuiltin, types["GigabitEthernet0/1"])
	assert.Equal(t, chroma.LiteralNumber, types["10.0.0.1"])
	assert.Equal(t, chroma.CommentSingle, types["! uplink"])
}

func TestLexerFor(t *testing.T) {
	assert.Equal(t, "Cisco IOS", lexerFor("").Config().Name)
	assert.Equal(t, "Cisco IOS", lexerFor("IOS-XR").Config().Name)
	assert.Equal(t, "Cisco IOS", lexerFor("no-such-language").Config().Name)
	assert.Equal(t, "Python", lexerFor("python").Config().Name)
}

func TestCodeBlock_Render(t *testing.T) {
	cb := NewCodeBlock("cisco", "show vlan brief\r\nshow ip int brief\n")
	cb.LineNumbers = true
	got := stripANSI(cb.Render())
	assert.Contains(t, got, "cisco")
	assert.Contains(t, got, "show vlan brief")
	assert.Contains(t, got, "2")
	assert.NotContains(t, got, "\r")

	themed := NewCodeBlock("cisco", "show vlan brief")
	themed.Theme = styles.NewTheme(styles.ModeLight)
	themed.Dark = false
	got = stripANSI(themed.Render())
	assert.Contains(t, got, "cisco")
	assert.Contains(t, got, "╭")

	unlabelled := NewCodeBlock("", "show vlan brief")
	unlabelled.Theme = testTheme()
	assert.NotContains(t, stripANSI(unlabelled.Render()), "cisco")
}

// =============================================================================
// RESULT CARD TESTS
// =============================================================================

func TestResultCard_Technical(t *testing.T) {
	got := stripANSI(NewResultCard(sampleResponse(), testTheme(), 90).Render())

	assert.Contains(t, got, "Did you mean: vlan 10")
	assert.Contains(t, got, "Analysis & Reasoning")
	assert.NotContains(t, got, "User wants", "reasoning is collapsed by default")
	assert.Contains(t, got, "Switch")
	assert.Contains(t, got, "Global Configuration")
	assert.Contains(t, got, "COMMAND SYNTAX")
	assert.Contains(t, got, "OPTIONS & PARAMETERS")
	assert.Contains(t, got, "EXAMPLES")
	assert.NotContains(t, got, "USAGE CONTEXT", "N/A sections are hidden")
	assert.NotContains(t, got, "NOTES & CAVEATS")
	assert.Contains(t, got, "Cisco VLAN guide")
	assert.Contains(t, got, "https://cisco.com/vlan")

	// Section order follows the card layout.
	assert.Less(t, strings.Index(got, "COMMAND SYNTAX"), strings.Index(got, "DESCRIPTION"))
	assert.Less(t, strings.Index(got, "DESCRIPTION"), strings.Index(got, "EXAMPLES"))
}

func TestResultCard_ReasoningExpanded(t *testing.T) {
	card := NewResultCard(sampleResponse(), testTheme(), 90)
	card.ShowReasoning = true
	got := stripANSI(card.Render())
	assert.Contains(t, got, "User wants VLAN creation.")
}

func TestResultCard_GeneralAnswer(t *testing.T) {
	resp := &model.CiscoQueryResponse{
		IsTechnicalQuestion: boolPtr(false),
		GeneralAnswer:       "OSPF is a link-state protocol.",
		Syntax:              "router ospf 1",
	}
	got := stripANSI(NewResultCard(resp, testTheme(), 80).Render())
	assert.Contains(t, got, "link-state")
	assert.NotContains(t, got, "COMMAND SYNTAX")
}

func TestResultCard_OutOfScopeAndNil(t *testing.T) {
	resp := &model.CiscoQueryResponse{IsOutOfScope: true, Description: "x"}
	assert.Contains(t, stripANSI(NewResultCard(resp, testTheme(), 80).Render()), "Outside Cisco networking scope")
	assert.Equal(t, "", NewResultCard(nil, testTheme(), 80).Render())
}

func TestPlainCard(t *testing.T) {
	got := PlainCard(sampleResponse(), true)
	assert.NotContains(t, got, "\x1b[")
	assert.Contains(t, got, "Did you mean: vlan 10")
	assert.Contains(t, got, "ANALYSIS & REASONING\nUser wants VLAN creation.")
	assert.Contains(t, got, "[Switch] [Global Configuration]")
	assert.Contains(t, got, "COMMAND SYNTAX\nvlan <id>\n name <name>")
	assert.Contains(t, got, "OPTIONS & PARAMETERS\n• id: 1-4094\n• name: ASCII string")
	assert.Contains(t, got, "1. Cisco VLAN guide <https://cisco.com/vlan>")

	assert.NotContains(t, PlainCard(sampleResponse(), false), "ANALYSIS")
	assert.Equal(t, "", PlainCard(nil, true))
}

// =============================================================================
// MESSAGE BUBBLE TESTS
// =============================================================================

func TestMessageBubble(t *testing.T) {
	theme := testTheme()

	user := model.NewUserMessage("show vlan")
	user.Image = "data:image/jpeg;base64,AAAA"
	user.Attachment = "running.cfg"
	got := stripANSI(NewMessageBubble(user, theme, 80).Render())
	assert.Contains(t, got, "show vlan")
	assert.Contains(t, got, "[image attached]")
	assert.Contains(t, got, "[file: running.cfg]")

	errMsg := model.NewErrorMessage()
	got = stripANSI(NewMessageBubble(errMsg, theme, 80).Render())
	assert.Contains(t, got, "I apologize")
	assert.Contains(t, got, styles.StatusIndicators.Error)

	answer := model.NewAssistantMessage("vlan", sampleResponse())
	got = stripANSI(NewMessageBubble(answer, theme, 80).Render())
	assert.Contains(t, got, "Cisco Expert")
	assert.Contains(t, got, "COMMAND SYNTAX")
}

// =============================================================================
// INPUT AREA TESTS
// =============================================================================

func typeText(in *InputArea, s string) {
	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestInputArea_HistoryRecall(t *testing.T) {
	in := NewInputArea(testTheme())
	in.Focus()
	in.SetHistory([]string{"show vlan", "show ip route"})

	typeText(in, "dra")
	require.Equal(t, "dra", in.Value())

	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "show ip route", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "show vlan", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "show vlan", in.Value(), "stays at the oldest entry")

	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "show ip route", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "dra", in.Value(), "draft restored at the live end")
	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "dra", in.Value())
	assert.True(t, in.Navigator().State().Live())
}

func TestInputArea_EditDetachesFromHistory(t *testing.T) {
	in := NewInputArea(testTheme())
	in.Focus()
	in.SetHistory([]string{"show vlan"})

	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.True(t, in.Navigator().State().Browsing())
	assert.Contains(t, stripANSI(in.View()), "(history)")

	typeText(in, "x")
	assert.Equal(t, "show vlanx", in.Value())
	assert.True(t, in.Navigator().State().Live())

	// Down at the live draft leaves the input alone.
	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "show vlanx", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
	assert.Equal(t, "", in.Navigator().State().Draft)
}

func TestInputArea_Tags(t *testing.T) {
	in := NewInputArea(testTheme())
	in.SetResearch(true)
	in.SetAttachment("core.cfg")
	got := stripANSI(in.View())
	assert.Contains(t, got, "RESEARCH")
	assert.Contains(t, got, "[core.cfg]")
	assert.Contains(t, got, "Analysing core.cfg...")

	in.SetAttachment("")
	assert.Contains(t, stripANSI(in.View()), DefaultPlaceholder)
}

// =============================================================================
// CHROME TESTS
// =============================================================================

func TestWelcome(t *testing.T) {
	w := Welcome{Theme: testTheme(), Width: 100, Suggestions: []string{"a", "b", "c", "d", "e"}}
	got, ok := w.Pick("2")
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	for _, key := range []string{"0", "5", "x", ""} {
		_, ok := w.Pick(key)
		assert.False(t, ok, key)
	}

	view := stripANSI(w.View())
	assert.Contains(t, view, "Cisco Terminal Intelligence")
	assert.Contains(t, view, "STANDARD PROTOCOLS")
	assert.NotContains(t, view, " e ")

	w.Predictive = true
	assert.Contains(t, stripANSI(w.View()), "PREDICTIVE INTELLIGENCE ACTIVE")
}

func TestModelLabel(t *testing.T) {
	info, _ := model.LookupModel("pro")
	assert.Equal(t, "3 Pro", ModelLabel(info, false))
	assert.Equal(t, "Research", ModelLabel(info, true))
	assert.Equal(t, "custom", ModelLabel(model.ModelInfo{ID: "custom"}, false))
}

func TestHeader_View(t *testing.T) {
	info, _ := model.LookupModel("flash")
	got := stripANSI(Header{Theme: testTheme(), Width: 100, Model: info}.View())
	assert.Contains(t, got, AppTitle)
	assert.Contains(t, got, "DARK INTELLIGENCE OPS")
	assert.Contains(t, got, "3 Flash")

	narrow := stripANSI(Header{Theme: testTheme(), Width: 40, Model: info}.View())
	assert.NotContains(t, narrow, "INTELLIGENCE")
}

func TestStatusBar_View(t *testing.T) {
	sb := StatusBar{Theme: testTheme(), Width: 120, Status: StatusReady, Messages: 3, Message: "Copied"}
	got := stripANSI(sb.View())
	assert.Contains(t, got, "Ready")
	assert.Contains(t, got, "3 messages")
	assert.Contains(t, got, "Copied")
	assert.Contains(t, got, "history")

	sb.Width = 30
	for _, line := range strings.Split(stripANSI(sb.View()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30)
	}

	assert.Equal(t, "1 message", pluralize(1, "message"))
}

func TestCommandHints(t *testing.T) {
	cmds := []string{"/help", "/speak", "/search", "/stop", "/sync"}
	got := CommandHints("/sp", cmds, 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "/speak", got[0])

	assert.Nil(t, CommandHints("show", cmds, 3))
	assert.Nil(t, CommandHints("/sync push", cmds, 3))
	assert.Len(t, CommandHints("/", cmds, 2), 2)

	_, ok := FuzzyMatch("xyz", "help")
	assert.False(t, ok)
}

func TestToast(t *testing.T) {
	ok := NewToast(ToastSuccess, "saved")
	bad := NewToast(ToastError, "failed")
	assert.NotEqual(t, ok.ID, bad.ID)
	assert.Equal(t, DefaultToastDuration, ok.Duration)
	assert.Equal(t, ErrorToastDuration, bad.Duration)
	assert.True(t, bad.IsError())

	assert.False(t, ok.Expired(ok.CreatedAt))
	assert.True(t, ok.Expired(ok.CreatedAt.Add(5*time.Second)))
	assert.True(t, Toast{}.Expired(time.Now()))
	assert.NotNil(t, ok.ExpireCmd())
}
