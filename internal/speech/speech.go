// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/format"
)

// =============================================================================
// INTERFACES
// =============================================================================

// SpeechSynth reads answers aloud.
type SpeechSynth interface {
	// Speak synthesises and plays text, blocking until playback ends or is
	// stopped. A new Speak stops the previous utterance.
	Speak(ctx context.Context, text string) error

	// Stop interrupts the current utterance, if any.
	Stop()

	// Speaking reports whether an utterance is in progress.
	Speaking() bool
}

// Synthesizer turns text into PCM audio. *cloud.Client implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*cloud.Audio, error)
}

var (
	// ErrNothingToSay is returned when the text is empty after markup removal.
	ErrNothingToSay = errors.New("nothing to speak")

	// ErrUnavailable is returned by Noop.
	ErrUnavailable = errors.New("speech output unavailable")
)

// =============================================================================
// NOOP
// =============================================================================

// Noop is used when no audio player or API key is available.
type Noop struct{}

// Speak always fails with ErrUnavailable.
func (Noop) Speak(context.Context, string) error { return ErrUnavailable }

// Stop does nothing.
func (Noop) Stop() {}

// Speaking is always false.
func (Noop) Speaking() bool { return false }

// =============================================================================
// CLOUD SPEECH
// =============================================================================

// CloudSpeech synthesises through the model API and plays the result with
// the platform audio command.
type CloudSpeech struct {
	synth  Synthesizer
	player Player

	mu     sync.Mutex
	gen    uint64
	active bool
	cancel context.CancelFunc
}

// NewCloudSpeech creates a speaker using player for playback.
func NewCloudSpeech(synth Synthesizer, player Player) *CloudSpeech {
	return &CloudSpeech{synth: synth, player: player}
}

// New returns a CloudSpeech when speech is enabled, synth is usable and a
// player exists, and Noop otherwise.
func New(synth Synthesizer, cfg config.SpeechConfig) SpeechSynth {
	if !cfg.Enabled || synth == nil {
		return Noop{}
	}
	if c, ok := synth.(interface{ IsConfigured() bool }); ok && !c.IsConfigured() {
		return Noop{}
	}
	player, ok := DetectPlayer(cfg.Player)
	if !ok {
		log.Printf("speech: no audio player found, speech disabled")
		return Noop{}
	}
	return NewCloudSpeech(synth, player)
}

// PlainText strips answer markup so it is not read out.
func PlainText(text string) string {
	return strings.TrimSpace(format.Plain(format.Format(text)))
}

// Speak implements SpeechSynth.
func (s *CloudSpeech) Speak(ctx context.Context, text string) error {
	text = PlainText(text)
	if text == "" {
		return ErrNothingToSay
	}

	s.Stop()
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.active = true
	s.cancel = cancel
	s.mu.Unlock()
	defer s.finish(gen, cancel)

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("synthesize: %w", err)
	}

	path, err := writeTemp(EncodeWAV(audio.PCM, audio.SampleRate, audio.Channels))
	if err != nil {
		return err
	}
	defer os.Remove(path)

	cmd := exec.CommandContext(ctx, s.player.Command, s.player.args(path)...) //nolint:gosec // player resolved via LookPath
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Stopped.
			return nil
		}
		return fmt.Errorf("audio playback failed: %w", err)
	}
	return nil
}

// Stop implements SpeechSynth.
func (s *CloudSpeech) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
}

// Speaking implements SpeechSynth.
func (s *CloudSpeech) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// finish clears the active flag unless a newer utterance took over.
func (s *CloudSpeech) finish(gen uint64, cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.active = false
		s.cancel = nil
	}
}

func writeTemp(data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "ciscocli-speech-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}
