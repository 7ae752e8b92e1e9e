// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/export"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) submit() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	if commands.IsCommand(value) {
		m.input.Reset()
		m.hints = nil
		result := m.parser.Parse(value)
		return m, commands.Execute(&commands.Context{
			Model:         m.modelID,
			Research:      m.research,
			ShowReasoning: m.showReasoning,
			Registry:      m.registry,
		}, result)
	}

	if value == "" && m.attachment == nil {
		return m, nil
	}
	if m.state == StateThinking {
		return m.showToast(components.ToastStatus, "Still working on the last question (esc to cancel)")
	}
	if m.backend == nil || !m.backend.IsConfigured() {
		return m.showError("No API key configured. Set GEMINI_API_KEY or api.key in the config file.")
	}
	return m.startQuery(value)
}

// startQuery appends the prompt and sends it. Attachments are consumed.
func (m Model) startQuery(query string) (Model, tea.Cmd) {
	if query == "" {
		query = model.AttachedFilePlaceholder
	}

	req := cloud.QueryRequest{
		Query:       query,
		Model:       m.modelID,
		ForceSearch: m.research,
	}
	msg := model.NewUserMessage(query)
	if a := m.attachment; a != nil {
		if a.IsImage() {
			req.ImageBase64 = a.Data
			msg.Image = a.Data
		} else {
			req.Attachment = a.Text
			req.AttachmentName = a.Name
		}
		msg.Attachment = a.Name
	}
	m.attachment = nil
	m.input.SetAttachment("")

	m.transcript.Append(msg)
	m.input.Reset()
	m.refreshHistory()
	m.hints = nil
	m.notice = ""

	m.state = StateThinking
	ctx, seq := m.query.begin(m.ctx)
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		queryCmd(ctx, m.backend, req, seq),
		m.persist(),
	)
}

// cancelQuery abandons the in-flight query. Its result is dropped when it
// arrives.
func (m Model) cancelQuery() (Model, tea.Cmd) {
	m.query.abort()
	m.state = StateReady
	return m.showToast(components.ToastStatus, "Request cancelled")
}

func (m Model) quit() (Model, tea.Cmd) {
	m.shutdown()
	return m, tea.Quit
}

// shutdown stops background work before exit.
func (m Model) shutdown() {
	m.query.abort()
	m.speech.Stop()
	m.stop()
}

// =============================================================================
// QUERY RESULTS
// =============================================================================

func (m Model) handleQueryResult(msg QueryResultMsg) (Model, tea.Cmd) {
	if !m.query.finish(msg.Seq) {
		return m, nil
	}
	m.state = StateReady

	var cmds []tea.Cmd
	if msg.Err != nil {
		m.transcript.Append(model.NewErrorMessage())
		next, cmd := m.showError(describeError(msg.Err))
		m = next
		cmds = append(cmds, cmd)
	} else {
		m.transcript.Append(model.NewAssistantMessage(msg.Query, msg.Response))
		cmds = append(cmds, suggestCmd(m.ctx, m.backend, m.promptHistory(), false))
	}
	m.updateViewport()
	m.viewport.GotoBottom()

	cmds = append(cmds, m.persist())
	return m, tea.Batch(cmds...)
}

func (m Model) handleSuggestions(msg SuggestionsMsg) (Model, tea.Cmd) {
	if len(msg.Suggestions) > 0 {
		m.suggestions = msg.Suggestions
		m.predictive = msg.Predictive
	}
	if msg.Err != nil {
		log.Printf("SUGGESTIONS_FAILED | error=%v", msg.Err)
		if msg.Explicit {
			return m.showError("Suggestions unavailable: " + describeError(msg.Err))
		}
		return m, nil
	}
	cmd := m.persist()
	if msg.Explicit {
		next, toast := m.showToast(components.ToastSuccess, "Suggestions refreshed")
		return next, tea.Batch(cmd, toast)
	}
	return m, cmd
}

// describeError turns a query error into a user-facing sentence.
func describeError(err error) string {
	switch {
	case errors.Is(err, cloud.ErrNotConfigured):
		return "No API key configured"
	case errors.Is(err, cloud.ErrAuthFailed):
		return "The API key was rejected"
	case errors.Is(err, cloud.ErrRateLimited):
		return "Rate limited by the API, try again shortly"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	default:
		return err.Error()
	}
}

// =============================================================================
// PERSISTENCE AND SYNC
// =============================================================================

// persist saves the current snapshot and schedules an automatic push.
func (m *Model) persist() tea.Cmd {
	snap := m.snapshot()
	if m.autoSync != nil {
		m.autoSync.Notify(snap)
	}
	if m.store == nil {
		return nil
	}
	m.lastSaved = time.Now()
	return persistCmd(m.ctx, m.store, snap)
}

func (m Model) promptHistory() []string {
	return history.BuildPromptHistory(m.transcript.Messages())
}

func (m Model) handleWatchStarted(msg watchStartedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.Printf("WATCH_FAILED | path=%s error=%v", m.watchPath, msg.err)
		return m, nil
	}
	m.watchCh = msg.ch
	return m, waitForChange(m.watchCh)
}

// handleStoreChanged reloads after another process wrote the store.
func (m Model) handleStoreChanged() (Model, tea.Cmd) {
	next := waitForChange(m.watchCh)
	if m.state == StateThinking || time.Since(m.lastSaved) < selfWriteWindow {
		return m, next
	}
	return m, tea.Batch(next, loadCmd(m.ctx, m.store))
}

func (m Model) handleSnapshotLoaded(msg SnapshotLoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		return m.showError("Could not reload history: " + msg.Err.Error())
	}
	if m.state == StateThinking {
		return m, nil
	}
	m.applySnapshot(msg.Snapshot)
	return m, nil
}

// applySnapshot replaces the conversation with snap.
func (m *Model) applySnapshot(snap storage.Snapshot) {
	m.transcript.Replace(snap.Messages)
	if len(snap.Suggestions) > 0 {
		m.suggestions = snap.Suggestions
		m.predictive = true
	}
	m.refreshHistory()
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m Model) handleSyncDone(msg SyncDoneMsg) (Model, tea.Cmd) {
	m.syncing = false
	if msg.Err != nil {
		log.Printf("SYNC_FAILED | direction=%q error=%v", msg.Direction, msg.Err)
		if msg.Quiet {
			return m, nil
		}
		return m.showError("Sync failed: " + msg.Err.Error())
	}

	var cmd tea.Cmd
	if msg.Snapshot != nil && m.state != StateThinking {
		m.applySnapshot(*msg.Snapshot)
		if m.store != nil {
			m.lastSaved = time.Now()
			cmd = persistCmd(m.ctx, m.store, m.snapshot())
		}
	}
	if msg.Quiet {
		return m, cmd
	}
	text := "Synced with cloud"
	switch msg.Direction {
	case commands.SyncPush:
		text = "Pushed history to cloud"
	case commands.SyncPull:
		text = "Pulled history from cloud"
	}
	next, toast := m.showToast(components.ToastSuccess, text)
	return next, tea.Batch(cmd, toast)
}

// =============================================================================
// SLASH COMMAND RESULTS
// =============================================================================

func (m Model) handleCommandMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commands.ShowHelpMsg:
		m.notice = msg.Text
		m.updateViewport()
		m.viewport.GotoBottom()
	case commands.ShowModelsMsg:
		m.notice = msg.Text
		m.updateViewport()
		m.viewport.GotoBottom()
	case commands.HistoryMsg:
		m.notice = commands.HistoryText(history.Recent(m.promptHistory(), msg.Count))
		m.updateViewport()
		m.viewport.GotoBottom()
	case commands.InfoMsg:
		return m.showToast(components.ToastStatus, msg.Text)
	case commands.ErrorMsg:
		return m.showError(msg.Err.Error())

	case commands.QuitMsg:
		return m.quit()
	case commands.ClearRequestMsg:
		return m.requestClear()

	case commands.ModelSwitchMsg:
		m.modelID = msg.Model.ID
		return m.showToast(components.ToastSuccess, "Model: "+msg.Model.Name)
	case commands.ResearchMsg:
		return m.setResearch(msg.On)
	case commands.ReasoningMsg:
		return m.setReasoning(msg.On)

	case commands.AttachMsg:
		return m, attachCmd(msg.Path)
	case commands.DetachMsg:
		if m.attachment == nil {
			return m.showToast(components.ToastStatus, "Nothing attached")
		}
		m.attachment = nil
		m.input.SetAttachment("")
		return m.showToast(components.ToastStatus, "Attachment removed")

	case commands.CopyMsg:
		return m.copyLastSyntax()
	case commands.ExportMsg:
		path := msg.Path
		if path == "" {
			path = export.DefaultFileName(export.FormatMarkdown, time.Now())
		}
		return m, exportCmd(m.snapshot(), path)
	case commands.SpeakMsg:
		return m.speakLast()
	case commands.StopSpeechMsg:
		return m.stopSpeech()
	case commands.SuggestMsg:
		if m.backend == nil || !m.backend.IsConfigured() {
			return m.showError("No API key configured")
		}
		return m, suggestCmd(m.ctx, m.backend, m.promptHistory(), true)
	case commands.ThemeMsg:
		return m.setTheme(msg.Mode)
	case commands.SyncMsg:
		if m.remote == nil {
			return m.showError("Cloud sync is not configured")
		}
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		return m, tea.Batch(m.spinner.Tick, syncCmd(m.ctx, m.remote, msg.Direction, m.snapshot(), false))
	}
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) setResearch(on bool) (Model, tea.Cmd) {
	m.research = on
	m.input.SetResearch(on)
	if on {
		return m.showToast(components.ToastStatus, "Research mode on: answers use live web search")
	}
	return m.showToast(components.ToastStatus, "Research mode off")
}

func (m Model) setReasoning(on bool) (Model, tea.Cmd) {
	m.showReasoning = on
	m.updateViewport()
	if on {
		return m.showToast(components.ToastStatus, "Showing model analysis")
	}
	return m.showToast(components.ToastStatus, "Hiding model analysis")
}

// requestClear asks for confirmation, clearing on the second request.
func (m Model) requestClear() (Model, tea.Cmd) {
	if m.state == StateThinking {
		return m.showToast(components.ToastStatus, "Wait for the answer before clearing")
	}
	if m.clearToastID == 0 {
		next, cmd := m.showToast(components.ToastStatus, "Clear all history? Press ctrl+l again to confirm")
		next.clearToastID = next.toast.ID
		return next, cmd
	}

	m.clearToastID = 0
	m.transcript.Clear()
	m.suggestions = append([]string(nil), model.DefaultSuggestions...)
	m.predictive = false
	m.notice = ""
	m.refreshHistory()
	m.updateViewport()
	cmd := m.persist()
	next, toast := m.showToast(components.ToastSuccess, "History cleared")
	return next, tea.Batch(cmd, toast)
}

// lastResponse returns the newest assistant answer with metadata.
func (m Model) lastResponse() (*model.CiscoQueryResponse, bool) {
	msg, ok := m.transcript.LastResponse()
	if !ok || msg.Metadata == nil {
		return nil, false
	}
	return msg.Metadata, true
}

// copyText is what ctrl+y copies: the command syntax, or the general answer
// for conceptual questions.
func copyText(resp *model.CiscoQueryResponse) string {
	if resp.Technical() && usable(resp.Syntax) {
		return resp.Syntax
	}
	if usable(resp.GeneralAnswer) {
		return resp.GeneralAnswer
	}
	return ""
}

// speechText is what gets read aloud.
func speechText(resp *model.CiscoQueryResponse) string {
	if !resp.Technical() && usable(resp.GeneralAnswer) {
		return speech.PlainText(resp.GeneralAnswer)
	}
	if usable(resp.Description) {
		return speech.PlainText(resp.Description)
	}
	if usable(resp.Syntax) {
		return speech.PlainText(resp.Syntax)
	}
	return ""
}

func usable(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.EqualFold(s, "N/A")
}

func (m Model) copyLastSyntax() (Model, tea.Cmd) {
	resp, ok := m.lastResponse()
	if !ok {
		return m.showToast(components.ToastStatus, "Nothing to copy yet")
	}
	text := copyText(resp)
	if text == "" {
		return m.showToast(components.ToastStatus, "Nothing to copy yet")
	}
	if err := m.clipboard(text); err != nil {
		return m.showError("Clipboard unavailable: " + err.Error())
	}
	return m.showToast(components.ToastSuccess, "Copied to clipboard")
}

func (m Model) speakLast() (Model, tea.Cmd) {
	resp, ok := m.lastResponse()
	if !ok {
		return m.showToast(components.ToastStatus, "Nothing to read yet")
	}
	text := speechText(resp)
	if text == "" {
		return m.showToast(components.ToastStatus, "Nothing to read yet")
	}
	m.speaking = true
	return m, speakCmd(m.ctx, m.speech, text)
}

func (m Model) stopSpeech() (Model, tea.Cmd) {
	m.speech.Stop()
	m.speaking = false
	return m, nil
}

func (m Model) handleSpeechDone(msg SpeechDoneMsg) (Model, tea.Cmd) {
	m.speaking = false
	switch {
	case msg.Err == nil, errors.Is(msg.Err, context.Canceled):
		return m, nil
	case errors.Is(msg.Err, speech.ErrUnavailable):
		return m.showError("Speech is unavailable: no audio player or API key")
	default:
		return m.showError("Speech failed: " + msg.Err.Error())
	}
}

func (m Model) handleAttached(msg AttachedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		return m.showError("Attach failed: " + msg.Err.Error())
	}
	m.attachment = msg.Attachment
	m.input.SetAttachment(msg.Attachment.Name)
	return m.showToast(components.ToastSuccess, "Attached "+msg.Attachment.Name)
}

// setTheme swaps the palette. The input is rebuilt with the new styles and
// keeps its text, history and tags.
func (m Model) setTheme(mode string) (Model, tea.Cmd) {
	theme := styles.NewTheme(mode)
	theme.SetSize(m.width, m.height)

	old := m.input
	input := components.NewInputArea(theme)
	input.SetHistory(old.Navigator().History())
	input.SetResearch(m.research)
	if m.attachment != nil {
		input.SetAttachment(m.attachment.Name)
	}
	input.SetValue(old.Value())
	input.Focus()

	m.theme = theme
	m.input = input
	m.spinner.Style = theme.Spinner
	m.updateViewport()
	return m.showToast(components.ToastSuccess, "Theme: "+mode)
}

// =============================================================================
// TOASTS
// =============================================================================

func (m Model) showToast(kind components.ToastKind, text string) (Model, tea.Cmd) {
	m.toast = components.NewToast(kind, text)
	return m, m.toast.ExpireCmd()
}

func (m Model) showError(text string) (Model, tea.Cmd) {
	return m.showToast(components.ToastError, text)
}
