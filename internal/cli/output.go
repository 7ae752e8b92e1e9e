// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// =============================================================================
// JSON OUTPUT
// =============================================================================

// JSONResponse is the envelope for every --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// OutputJSON runs handler and prints its result as JSON when jsonMode is
// set. Without jsonMode the handler prints its own output.
func OutputJSON(w io.Writer, jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if !jsonMode {
		return err
	}
	if err != nil {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return err
	}
	return NewJSONResponse(command, data).Write(w)
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// RequireConfirmation asks before a destructive action. --yes skips the
// prompt; without a terminal the flag is required.
func RequireConfirmation(yes bool, action string, in io.Reader, out io.Writer) (bool, error) {
	if yes {
		return true, nil
	}
	if in == os.Stdin && !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
	}

	fmt.Fprintf(out, "Are you sure you want to %s? [y/N]: ", action)
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}
