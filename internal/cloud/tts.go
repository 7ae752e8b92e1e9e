// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// Speech output defaults. The TTS model returns raw 16-bit PCM.
const (
	DefaultVoice      = "Kore"
	DefaultSampleRate = 24000
	DefaultChannels   = 1

	speechPrompt = "Say in a professional, technical voice: "
)

// Audio is synthesised speech as little-endian 16-bit PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Base64 returns the PCM payload base64 encoded.
func (a *Audio) Base64() string {
	return base64.StdEncoding.EncodeToString(a.PCM)
}

// Synthesize converts text to speech with the configured voice.
func (c *Client) Synthesize(ctx context.Context, text string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required for speech", ErrInvalidRequest)
	}

	body := &generateRequest{
		Contents: []content{textContent("user", speechPrompt+text)},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.voice}},
			},
		},
	}

	resp, err := c.generate(ctx, model.SpeechModelID, body)
	if err != nil {
		return nil, err
	}

	blob := resp.firstInlineData()
	if blob == nil {
		return nil, ErrNoAudio
	}
	pcm, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	return &Audio{
		PCM:        pcm,
		SampleRate: sampleRateFromMime(blob.MimeType),
		Channels:   DefaultChannels,
	}, nil
}

// sampleRateFromMime reads "rate=NNNN" from e.g. "audio/L16;codec=pcm;rate=24000".
func sampleRateFromMime(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(k, "rate") {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return DefaultSampleRate
}
