// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloudsync

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// DefaultBaseURL is the Google API root.
	DefaultBaseURL = "https://www.googleapis.com"

	// DefaultTimeout bounds each Drive request.
	DefaultTimeout = 30 * time.Second

	// appDataSpace is the hidden per-app Drive folder.
	appDataSpace = "appDataFolder"

	// maxDocumentSize caps the downloaded document.
	maxDocumentSize = 10 * 1024 * 1024
)

var (
	// ErrNoToken is returned when no bearer token is configured.
	ErrNoToken = errors.New("sync token not configured")

	// ErrUnauthorized is returned when Drive rejects the token.
	ErrUnauthorized = errors.New("sync token rejected")
)

// RemoteError is a non-success Drive response.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("drive error (HTTP %d): %s", e.Status, e.Body)
}

// Is maps 401 and 403 onto ErrUnauthorized.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// =============================================================================
// INTERFACE
// =============================================================================

// CloudSync moves the transcript to and from remote storage.
type CloudSync interface {
	// Pull fetches the remote snapshot. The bool is false when no remote
	// document exists. Fields absent from the remote document are nil.
	Pull(ctx context.Context) (storage.Snapshot, bool, error)

	// Push uploads snap, replacing the remote document.
	Push(ctx context.Context, snap storage.Snapshot) error
}

// Merge folds a pulled snapshot into local. Messages are unioned by ID
// and ordered by timestamp; on an ID clash the remote copy wins.
// Remote suggestions replace local ones when present.
func Merge(local, remote storage.Snapshot) storage.Snapshot {
	out := local
	if remote.Messages != nil {
		out.Messages = mergeMessages(local.Messages, remote.Messages)
	}
	if len(remote.Suggestions) > 0 {
		out.Suggestions = remote.Suggestions
	}
	return out
}

func mergeMessages(local, remote []model.ChatMessage) []model.ChatMessage {
	merged := make([]model.ChatMessage, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))
	add := func(m model.ChatMessage) {
		if m.ID == "" {
			merged = append(merged, m)
			return
		}
		if i, ok := index[m.ID]; ok {
			merged[i] = m
			return
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}
	for _, m := range local {
		add(m)
	}
	for _, m := range remote {
		add(m)
	}
	// Stable keeps insertion order for equal timestamps.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// =============================================================================
// DRIVE SYNC
// =============================================================================

var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	},
}

// DriveSync stores the snapshot as a JSON file in the Drive app data
// folder.
type DriveSync struct {
	token      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	mu     sync.Mutex
	fileID string
}

// NewDriveSync creates a syncer authenticated with an opaque bearer token.
func NewDriveSync(token string) *DriveSync {
	return &DriveSync{
		token:      strings.TrimSpace(token),
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithBaseURL sets a custom API root.
func (d *DriveSync) WithBaseURL(u string) *DriveSync {
	if u != "" {
		d.baseURL = strings.TrimRight(u, "/")
	}
	return d
}

// WithHTTPClient sets a custom HTTP client.
func (d *DriveSync) WithHTTPClient(hc *http.Client) *DriveSync {
	if hc != nil {
		d.httpClient = hc
	}
	return d
}

// IsConfigured reports whether a token is set.
func (d *DriveSync) IsConfigured() bool {
	return d.token != ""
}

// Pull implements CloudSync.
func (d *DriveSync) Pull(ctx context.Context) (storage.Snapshot, bool, error) {
	id, err := d.findFile(ctx)
	if err != nil || id == "" {
		return storage.Snapshot{}, false, err
	}

	body, err := d.do(ctx, http.MethodGet, d.baseURL+"/drive/v3/files/"+url.PathEscape(id)+"?alt=media", "", nil)
	if err != nil {
		return storage.Snapshot{}, true, err
	}

	var snap storage.Snapshot
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &snap); err != nil {
			return storage.Snapshot{}, true, fmt.Errorf("%w: remote document: %v", storage.ErrCorrupt, err)
		}
	}
	return snap, true, nil
}

// Push implements CloudSync.
func (d *DriveSync) Push(ctx context.Context, snap storage.Snapshot) error {
	if snap.Messages == nil {
		snap.Messages = []model.ChatMessage{}
	}
	if snap.Suggestions == nil {
		snap.Suggestions = []string{}
	}
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode sync document: %w", err)
	}

	id, err := d.findFile(ctx)
	if err != nil {
		return err
	}

	if id != "" {
		_, err = d.do(ctx, http.MethodPatch,
			d.baseURL+"/upload/drive/v3/files/"+url.PathEscape(id)+"?uploadType=media",
			"application/json", doc)
		return err
	}
	return d.create(ctx, doc)
}

// create uploads a new document with a multipart/related body: metadata
// first, then the media.
func (d *DriveSync) create(ctx context.Context, doc []byte) error {
	meta, err := json.Marshal(map[string]any{
		"name":    model.SyncFileName,
		"parents": []string{appDataSpace},
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range []struct {
		contentType string
		data        []byte
	}{
		{"application/json; charset=UTF-8", meta},
		{"application/json", doc},
	} {
		part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return err
		}
		if _, err := part.Write(p.data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	body, err := d.do(ctx, http.MethodPost,
		d.baseURL+"/upload/drive/v3/files?uploadType=multipart",
		"multipart/related; boundary="+mw.Boundary(), buf.Bytes())
	if err != nil {
		return err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err == nil && created.ID != "" {
		d.mu.Lock()
		d.fileID = created.ID
		d.mu.Unlock()
	}
	return nil
}

// findFile returns the sync document ID, or "" when none exists. The ID is
// cached after the first lookup.
func (d *DriveSync) findFile(ctx context.Context) (string, error) {
	d.mu.Lock()
	cached := d.fileID
	d.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	q := url.Values{}
	q.Set("spaces", appDataSpace)
	q.Set("q", fmt.Sprintf("name = '%s'", model.SyncFileName))
	q.Set("fields", "files(id, name)")

	body, err := d.do(ctx, http.MethodGet, d.baseURL+"/drive/v3/files?"+q.Encode(), "", nil)
	if err != nil {
		return "", err
	}

	var list struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("failed to parse file list: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}

	d.mu.Lock()
	d.fileID = list.Files[0].ID
	d.mu.Unlock()
	return list.Files[0].ID, nil
}

// do performs one authenticated request and returns the body of a 2xx
// response.
func (d *DriveSync) do(ctx context.Context, method, endpoint, contentType string, payload []byte) ([]byte, error) {
	if !d.IsConfigured() {
		return nil, ErrNoToken
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.Printf("Sync Request: %s %s", method, req.URL.Path)
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	// SECURITY: Response size limit prevents memory exhaustion.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("sync document exceeds %d bytes", maxDocumentSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			// Stale cached ID.
			d.mu.Lock()
			d.fileID = ""
			d.mu.Unlock()
		}
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
