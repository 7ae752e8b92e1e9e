// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// ATTACHMENTS
// =============================================================================

// MaxAttachmentBytes caps attached files.
const MaxAttachmentBytes = 5 << 20

var (
	// ErrAttachmentTooLarge is returned for files over MaxAttachmentBytes.
	ErrAttachmentTooLarge = errors.New("attachment too large")

	// ErrUnsupportedAttachment is returned for binary files that are not
	// images.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// Attachment is a file queued for the next query: either an image (sent
// inline as a data URL) or a text file such as a running-config.
type Attachment struct {
	Name string
	MIME string

	// Data is the data URL of an image attachment.
	Data string

	// Text is the content of a text attachment.
	Text string
}

// IsImage reports whether the attachment is an image.
func (a *Attachment) IsImage() bool {
	return a != nil && strings.HasPrefix(a.MIME, "image/")
}

// LoadAttachment reads path and classifies it as image or text.
func LoadAttachment(path string) (*Attachment, error) {
	path, err := util.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrAttachmentTooLarge, filepath.Base(path), info.Size(), MaxAttachmentBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a := &Attachment{Name: filepath.Base(path), MIME: http.DetectContentType(data)}
	switch {
	case strings.HasPrefix(a.MIME, "image/"):
		a.Data = "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(data)
	case utf8.Valid(data):
		a.MIME = "text/plain"
		a.Text = string(data)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedAttachment, a.Name, a.MIME)
	}
	return a, nil
}

func attachCmd(path string) tea.Cmd {
	return func() tea.Msg {
		a, err := LoadAttachment(path)
		return AttachedMsg{Attachment: a, Err: err}
	}
}
