// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TOASTS
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastSuccess
	ToastError
)

// Toast durations. Errors stay longer so they can be read.
const (
	DefaultToastDuration = 4 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is a status-bar notification that dismisses itself.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

var toastSeq int

// NewToast creates a toast of kind with the matching duration.
func NewToast(kind ToastKind, message string) Toast {
	toastSeq++
	d := DefaultToastDuration
	if kind == ToastError {
		d = ErrorToastDuration
	}
	return Toast{
		ID:        toastSeq,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// IsError reports whether the toast is an error.
func (t Toast) IsError() bool {
	return t.Kind == ToastError
}

// Expired reports whether the toast should be gone at now.
func (t Toast) Expired(now time.Time) bool {
	return t.Message == "" || now.Sub(t.CreatedAt) >= t.Duration
}

// ToastExpireMsg asks the model to drop toast ID if it is still showing.
type ToastExpireMsg struct {
	ID int
}

// ExpireCmd fires ToastExpireMsg when the toast runs out.
func (t Toast) ExpireCmd() tea.Cmd {
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpireMsg{ID: id}
	})
}
