// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech reads answers aloud.
//
// CloudSpeech asks the model API for speech, wraps the PCM it returns in a
// WAV file and plays it with afplay, paplay, aplay or PowerShell. Noop
// stands in when no player or API key is available.
//
// # Usage
//
//	speaker := speech.New(client, cfg.Speech)
//	go speaker.Speak(ctx, resp.Description)
//	...
//	speaker.Stop()
package speech
