// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// HELPERS
// =============================================================================

// textReply wraps text in a generateContent response body.
func textReply(text string) string {
	b, _ := json.Marshal(generateResponse{
		Candidates: []candidate{{Content: content{Role: "model", Parts: []part{{Text: text}}}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key").WithBaseURL(srv.URL).WithTimeout(5 * time.Second)
	c.retryBase = time.Millisecond
	return c
}

const cardJSON = `{
  "reasoning": "VLAN creation",
  "deviceCategory": "switch",
  "commandMode": " Global Configuration ",
  "syntax": "vlan <id>",
  "description": "Creates a VLAN",
  "usageContext": "Access layer",
  "checklist": "- ` + "`vlan 10`" + `",
  "options": "N/A",
  "troubleshooting": "- ` + "`show vlan brief`" + `",
  "security": "N/A",
  "notes": "N/A",
  "examples": "Switch(config)# vlan 10",
  "correction": "N/A"
}`

// =============================================================================
// QUERY
// =============================================================================

func TestQuery_Success(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/models/"+model.ModelPro+":generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		body, _ := json.Marshal(generateResponse{Candidates: []candidate{{
			Content: content{Parts: []part{{Text: "thinking", Thought: true}, {Text: cardJSON}}},
			GroundingMetadata: &groundingMetadata{GroundingChunks: []groundingChunk{
				{Web: &webChunk{URI: "https://cisco.com/a", Title: "VLAN guide"}},
				{Web: &webChunk{URI: "https://cisco.com/a", Title: "dup"}},
				{Web: &webChunk{URI: "https://cisco.com/b"}},
				{},
			}},
		}}})
		w.Write(body)
	})

	resp, err := c.Query(context.Background(), QueryRequest{Query: "create vlan 10"})
	require.NoError(t, err)

	require.Equal(t, model.DeviceSwitch, resp.DeviceCategory)
	require.Equal(t, "Global Configuration", resp.CommandMode)
	require.Empty(t, resp.Correction)
	require.Equal(t, []model.GroundingSource{
		{Title: "VLAN guide", URI: "https://cisco.com/a"},
		{Title: "https://cisco.com/b", URI: "https://cisco.com/b"},
	}, resp.Sources)

	// Pro models always get search; a short simple query gets no thinking budget.
	require.Len(t, got.Tools, 1)
	require.NotNil(t, got.Tools[0].GoogleSearch)
	require.Nil(t, got.GenerationConfig.ThinkingConfig)
	require.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	require.Equal(t, model.RequiredFields, got.GenerationConfig.ResponseSchema.Required)
	require.Equal(t, "create vlan 10", got.Contents[0].Parts[0].Text)
}

func TestQuery_UnknownModel(t *testing.T) {
	c := NewClient("k")
	_, err := c.Query(context.Background(), QueryRequest{Query: "x", Model: "gpt-4"})
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestQuery_NotConfigured(t *testing.T) {
	_, err := NewClient("").Query(context.Background(), QueryRequest{Query: "x"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestQuery_FencedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, textReply("```json\n"+cardJSON+"\n```"))
	})
	resp, err := c.Query(context.Background(), QueryRequest{Query: "vlan"})
	require.NoError(t, err)
	require.Equal(t, "vlan <id>", resp.Syntax)
}

func TestQuery_EmptyCandidate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	})
	_, err := c.Query(context.Background(), QueryRequest{Query: "vlan"})
	require.ErrorIs(t, err, ErrEmptyResponse)
	require.Contains(t, err.Error(), "SAFETY")
}

func TestBuildQueryRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        QueryRequest
		model      string
		wantSearch bool
		wantThink  bool
		wantPrefix string
	}{
		{"flash simple", QueryRequest{Query: "show ip route"}, model.ModelFlash, false, false, "show ip route"},
		{"flash complex", QueryRequest{Query: "troubleshoot bgp flaps"}, model.ModelFlash, false, true, "troubleshoot"},
		{"force search", QueryRequest{Query: "ssh", ForceSearch: true}, model.ModelFlashLite, true, true, SearchPrefix},
		{"pro design", QueryRequest{Query: "Design a campus core"}, model.ModelPro, true, true, "Design"},
		{"long query", QueryRequest{Query: strings.Repeat("a", 81)}, model.ModelFlash, false, true, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildQueryRequest(tt.req, tt.model)
			require.NoError(t, err)
			require.Equal(t, tt.wantSearch, len(got.Tools) == 1)
			require.Equal(t, tt.wantThink, got.GenerationConfig.ThinkingConfig != nil)
			if tt.wantThink {
				require.Equal(t, ThinkingBudget, got.GenerationConfig.ThinkingConfig.ThinkingBudget)
			}
			require.True(t, strings.HasPrefix(got.Contents[0].Parts[0].Text, tt.wantPrefix))
		})
	}
}

func TestBuildQueryRequest_Attachments(t *testing.T) {
	got, err := buildQueryRequest(QueryRequest{
		ImageBase64:    "data:image/png;base64,QUJD",
		Attachment:     "interface Gi0/1\n shutdown",
		AttachmentName: "run.cfg",
	}, model.ModelFlash)
	require.NoError(t, err)

	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	require.True(t, strings.HasPrefix(parts[0].Text, model.AttachedFilePlaceholder))
	require.Contains(t, parts[0].Text, "run.cfg")
	require.Contains(t, parts[0].Text, " shutdown")
	require.Equal(t, &inlineData{MimeType: "image/jpeg", Data: "QUJD"}, parts[1].InlineData)

	_, err = buildQueryRequest(QueryRequest{Query: "  "}, model.ModelFlash)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestStripDataURL(t *testing.T) {
	tests := map[string]string{
		"data:image/jpeg;base64,AAAA": "AAAA",
		"AAAA":                        "AAAA",
		"data:broken":                 "data:broken",
	}
	for in, want := range tests {
		if got := StripDataURL(in); got != want {
			t.Errorf("StripDataURL(%q) = %q, want %q", in, got, want)
		}
	}
}

// =============================================================================
// ERRORS AND RETRIES
// =============================================================================

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
			return
		}
		io.WriteString(w, textReply(cardJSON))
	})

	_, err := c.Query(context.Background(), QueryRequest{Query: "vlan"})
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.WithMaxRetries(1)

	_, err := c.Query(context.Background(), QueryRequest{Query: "vlan"})
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, ErrAuthFailed},
		{"invalid key", http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`, ErrAuthFailed},
		{"not found", http.StatusNotFound, "", ErrModelNotFound},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad schema"}}`, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.Query(context.Background(), QueryRequest{Query: "vlan"})
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, int32(1), atomic.LoadInt32(&calls))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.Code)
		})
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, textReply(cardJSON))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Query(ctx, QueryRequest{Query: "vlan"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	c := NewClient("k")
	require.Equal(t, retryBaseDelay, c.backoff(1))
	require.Equal(t, 2*retryBaseDelay, c.backoff(2))
	require.Equal(t, retryMaxDelay, c.backoff(30))
}

func TestAPIKeyMasked(t *testing.T) {
	c := NewClient("super-secret-key")
	masked := c.APIKeyMasked()
	require.NotContains(t, masked, "super-secret-key")
	require.Contains(t, masked, "length=16")
	require.Equal(t, "[not set]", NewClient("").APIKeyMasked())
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func TestSuggestions(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, model.SuggestionModelID)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, textReply(`["OSPF areas", " ", "BGP peering", "VLAN trunk", "SSH v2", "extra"]`))
	})

	out, err := c.Suggestions(context.Background(), []string{"a", "b", "c", "d", "e", "f"})
	require.NoError(t, err)
	require.Equal(t, []string{"OSPF areas", "BGP peering", "VLAN trunk", "SSH v2"}, out)

	prompt := got.Contents[0].Parts[0].Text
	require.Contains(t, prompt, "[b, c, d, e, f]")
	require.NotContains(t, prompt, "[a,")
}

func TestSuggestions_FallbackOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, textReply("not json"))
	})

	out, err := c.Suggestions(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, model.DefaultSuggestions, out)

	out[0] = "mutated"
	require.NotEqual(t, "mutated", model.DefaultSuggestions[0])
}

// =============================================================================
// SPEECH
// =============================================================================

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, model.SpeechModelID)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		body, _ := json.Marshal(generateResponse{Candidates: []candidate{{Content: content{Parts: []part{{
			InlineData: &inlineData{MimeType: "audio/L16;codec=pcm;rate=16000", Data: base64.StdEncoding.EncodeToString(pcm)},
		}}}}}})
		w.Write(body)
	})

	audio, err := c.WithVoice("Puck").Synthesize(context.Background(), "show run")
	require.NoError(t, err)
	require.Equal(t, pcm, audio.PCM)
	require.Equal(t, 16000, audio.SampleRate)
	require.Equal(t, DefaultChannels, audio.Channels)
	require.Equal(t, base64.StdEncoding.EncodeToString(pcm), audio.Base64())

	require.Equal(t, []string{"AUDIO"}, got.GenerationConfig.ResponseModalities)
	require.Equal(t, "Puck", got.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	require.Equal(t, speechPrompt+"show run", got.Contents[0].Parts[0].Text)
}

func TestSynthesize_NoAudio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, textReply("no audio here"))
	})
	_, err := c.Synthesize(context.Background(), "hello")
	require.ErrorIs(t, err, ErrNoAudio)

	_, err = c.Synthesize(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSampleRateFromMime(t *testing.T) {
	tests := map[string]int{
		"audio/L16;codec=pcm;rate=24000": 24000,
		"audio/L16; rate=8000":           8000,
		"audio/L16":                      DefaultSampleRate,
		"audio/L16;rate=abc":             DefaultSampleRate,
	}
	for in, want := range tests {
		if got := sampleRateFromMime(in); got != want {
			t.Errorf("sampleRateFromMime(%q) = %d, want %d", in, got, want)
		}
	}
}
