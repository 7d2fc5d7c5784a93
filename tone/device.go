package tone

import (
	"chat-sim/contract"
	"chat-sim/errors"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth   = 16
	channels   = 1
	pcmFormat  = 1
	pcmMaxAmpl = math.MaxInt16
)

const (
	DeviceBell = "bell"
	DeviceWav  = "wav"
	DeviceNone = "none"
)

// NewDevice returns the audio output named by the configuration.
func NewDevice(name, dir string, out io.Writer) (contract.AudioDevice, error) {
	switch name {
	case DeviceBell:
		return NewBell(out), nil
	case DeviceWav:
		return NewWavFile(dir), nil
	case DeviceNone:
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownToneDevice, name)
}

// Bell rings the terminal bell. Terminals have a fixed bell sound, so the
// synthesized 800 Hz decaying cue is not heard with this device; only the
// wav device renders it.
type Bell struct {
	out io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) Play(ctx context.Context, _ []float64, _ int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.out.Write([]byte{'\a'}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrToneDevice, err)
	}
	return nil
}

// WavFile renders the samples as a 16-bit PCM WAV file, overwritten on
// each playback, so an external player can pick it up.
type WavFile struct {
	path string
}

func NewWavFile(dir string) *WavFile {
	if dir == "" {
		dir = os.TempDir()
	}
	return &WavFile{path: filepath.Join(dir, "chat-sim-notification.wav")}
}

func (w *WavFile) Path() string { return w.path }

func (w *WavFile) Play(ctx context.Context, samples []float64, sampleRate int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrToneDevice, err)
	}
	defer func() { _ = f.Close() }()
	return EncodeWav(f, samples, sampleRate)
}

// None discards the cue.
type None struct{}

func (None) Play(context.Context, []float64, int) error { return nil }

// EncodeWav writes the samples as a mono 16-bit PCM WAV stream. The
// encoder seeks back to patch the chunk sizes once the data is written.
func EncodeWav(out io.WriteSeeker, samples []float64, sampleRate int) error {
	pcm := make([]int, len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		pcm[i] = int(s * pcmMaxAmpl)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           pcm,
		SourceBitDepth: bitDepth,
	}
	enc := wav.NewEncoder(out, sampleRate, bitDepth, channels, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrToneDevice, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrToneDevice, err)
	}
	return nil
}
