// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// CISCO IOS LEXER
// =============================================================================

// LanguageCisco is the language name used for command syntax and examples.
const LanguageCisco = "cisco"

// ciscoLexer highlights IOS / IOS XE / IOS XR / NX-OS command lines and
// running-config excerpts.
var ciscoLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:            "Cisco IOS",
		Aliases:         []string{LanguageCisco, "ios", "ios-xe", "ios-xr", "nxos"},
		Filenames:       []string{"*.ios", "*.cisco", "*.cfg"},
		CaseInsensitive: true,
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `!.*$`, Type: chroma.CommentSingle},
				{Pattern: `^[\w.-]+(?:\([\w-]+\))?[#>]`, Type: chroma.GenericPrompt},
				{Pattern: `"[^"]*"`, Type: chroma.LiteralString},
				{Pattern: `<[^>]+>|\[[^\]]*\]|\{[^}]*\}`, Type: chroma.NameVariable},
				{Pattern: `(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`, Type: chroma.LiteralNumber},
				{Pattern: `(?:[0-9a-f]{4}\.){2}[0-9a-f]{4}\b`, Type: chroma.LiteralNumberHex},
				{Pattern: `(?:TenGigabitEthernet|GigabitEthernet|FastEthernet|Ethernet|Loopback|Port-channel|Tunnel|Serial|Vlan|Te|Gi|Fa|Lo|Po)\d[\d/.:]*`, Type: chroma.NameBuiltin},
				{Pattern: `(?:no|do|show|configure|terminal|interface|router|ip|ipv6|vlan|switchport|spanning-tree|access-list|line|hostname|enable|end|exit|shutdown|description|network|neighbor|area|crypto|username|service|logging|ntp|snmp-server|aaa|copy|write|debug|clear|ping|traceroute|commit|route-map|prefix-list|mode|access|trunk|native|allowed|remote-as|password|secret|transport|input|ssh)\b`, Type: chroma.Keyword},
				{Pattern: `\d+\b`, Type: chroma.LiteralNumber},
				{Pattern: `[\w./:-]+`, Type: chroma.Text},
				{Pattern: `.`, Type: chroma.Punctuation},
			},
		}
	},
)

// lexerFor picks the lexer for language, falling back to the Cisco lexer
// for unknown languages and unlabelled blocks.
func lexerFor(language string) chroma.Lexer {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		return ciscoLexer
	}
	for _, alias := range ciscoLexer.Config().Aliases {
		if lang == alias {
			return ciscoLexer
		}
	}
	if l := lexers.Get(lang); l != nil {
		return l
	}
	return ciscoLexer
}

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock represents a rendered code block.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int

	// LineNumbers prefixes each row with its number.
	LineNumbers bool

	// Dark selects the dark highlight palette.
	Dark bool

	// Theme supplies the frame and language badge. Nil uses the dark
	// defaults.
	Theme *styles.Theme
}

// NewCodeBlock creates a new code block.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
		Dark:     true,
	}
}

// SetMaxWidth sets the maximum width for the code block.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render renders the code block with styling.
func (c CodeBlock) Render() string {
	code := strings.Trim(strings.ReplaceAll(c.Code, "\r\n", "\n"), "\n")
	lines := strings.Split(Highlight(code, c.Language, c.Dark), "\n")

	if c.LineNumbers {
		lineNumStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(4).
			Align(lipgloss.Right).
			MarginRight(1)
		for i, line := range lines {
			lines[i] = lineNumStyle.Render(strconv.Itoa(i+1)) + line
		}
	}

	theme := c.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeDark)
	}

	var header string
	if c.Language != "" {
		header = theme.CodeLangBadge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 2
	if maxWidth < 20 {
		maxWidth = 20
	}

	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + strings.Join(lines, "\n"))
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// Highlight applies terminal syntax highlighting. On any failure the code is
// returned unchanged.
func Highlight(code, language string, dark bool) string {
	lexer := chroma.Coalesce(lexerFor(language))

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Tokens returns the token stream for code, for callers that need the
// classification rather than ANSI output.
func Tokens(code, language string) ([]chroma.Token, error) {
	iterator, err := chroma.Coalesce(lexerFor(language)).Tokenise(nil, code)
	if err != nil {
		return nil, err
	}
	return iterator.Tokens(), nil
}
