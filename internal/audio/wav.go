package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// There is no audio-decoding library in the dependency stack available to
// this project, so duration and placeholder generation work directly
// against the canonical 44-byte PCM WAV header (stdlib encoding/binary).

const (
	wavSampleRate    = 24000
	wavBitsPerSample = 16
	wavChannels      = 1
)

// WavDurationSeconds exposes wavDurationSeconds for callers outside this
// package that need to recompute a phrase's duration from an
// already-synthesized WAV file, such as a standalone `video render` that
// skips S3 entirely.
func WavDurationSeconds(path string) (float64, error) {
	return wavDurationSeconds(path)
}

// wavDurationSeconds reads a WAV file's header and returns its duration
// without decoding samples, used both for cache hits and for newly
// synthesized files whose provider didn't report a duration directly.
func wavDurationSeconds(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := make([]byte, 44)
	if _, err := f.Read(header); err != nil {
		return 0, fmt.Errorf("failed to read wav header: %w", err)
	}

	byteRate := binary.LittleEndian.Uint32(header[28:32])
	dataSize := binary.LittleEndian.Uint32(header[40:44])
	if byteRate == 0 {
		return 0, fmt.Errorf("invalid wav header: zero byte rate")
	}

	return float64(dataSize) / float64(byteRate), nil
}

// writeSilentWAV emits a silent PCM WAV of the given duration, used by
// placeholder mode when the real engine is unavailable.
func writeSilentWAV(path string, durationSeconds float64) error {
	numSamples := int(durationSeconds * wavSampleRate)
	dataSize := numSamples * wavChannels * (wavBitsPerSample / 8)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	byteRate := wavSampleRate * wavChannels * (wavBitsPerSample / 8)
	blockAlign := wavChannels * (wavBitsPerSample / 8)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(wavChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(wavSampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(wavBitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return err
	}
	_, err = f.Write(make([]byte, dataSize))
	return err
}

func fileExistsNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
