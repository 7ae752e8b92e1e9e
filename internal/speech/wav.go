// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"bytes"
	"encoding/binary"
)

const bitsPerSample = 16

// EncodeWAV wraps little-endian 16-bit PCM in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if channels <= 0 {
		channels = 1
	}
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	write := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	write(uint32(36 + len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16)) // PCM chunk size
	write(uint16(1))  // PCM format
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(byteRate))
	write(uint16(blockAlign))
	write(uint16(bitsPerSample))

	buf.WriteString("data")
	write(uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
