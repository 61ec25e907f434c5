package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

const (
	levelGain     = 3.0
	levelEMAAlpha = 0.3
	readChunkSize = 3200
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
)

// Recorder buffers one capture at a time and exposes a smoothed input level.
type Recorder struct {
	source  Source
	cfg     CaptureConfig
	tempDir string
	log     zerolog.Logger

	mu     sync.Mutex
	active *capture
	level  atomic.Uint64
}

type capture struct {
	stream Stream
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	pcm     []byte
	readErr error
}

func NewRecorder(source Source, cfg CaptureConfig, tempDir string, log zerolog.Logger) *Recorder {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Recorder{source: source, cfg: cfg.withDefaults(), tempDir: tempDir, log: log}
}

// Start begins capturing. The capture outlives ctx; it ends on Stop or Finish.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrAlreadyRecording
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	captureCtx, cancel := context.WithCancel(context.Background())
	stream, err := r.source.Start(captureCtx, r.cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("start capture: %w", err)
	}

	active := &capture{stream: stream, cancel: cancel, done: make(chan struct{})}
	r.active = active
	r.setLevel(0)
	go r.drain(active)

	r.log.Info().
		Int("sample_rate", r.cfg.SampleRate).
		Int("channels", r.cfg.Channels).
		Str("input", r.cfg.InputFormat+":"+r.cfg.InputDevice).
		Msg("capture started")
	return nil
}

// Stop discards the current capture.
func (r *Recorder) Stop() error {
	active, err := r.detach()
	if err != nil {
		return err
	}
	return r.halt(active)
}

// Finish ends the capture and writes it to a WAV file. The caller owns the file.
func (r *Recorder) Finish() (string, error) {
	active, err := r.detach()
	if err != nil {
		return "", err
	}
	if err := r.halt(active); err != nil {
		r.log.Warn().Err(err).Msg("capture stopped uncleanly")
	}

	active.mu.Lock()
	pcm, readErr := active.pcm, active.readErr
	active.mu.Unlock()

	if len(pcm) == 0 {
		if readErr != nil {
			return "", fmt.Errorf("capture failed: %w", readErr)
		}
		return "", errors.New("no audio captured")
	}

	path := filepath.Join(r.tempDir, fmt.Sprintf("aitotype_recording_%d_%d.wav", os.Getpid(), time.Now().UnixMilli()))
	if err := writeWAV(path, pcm, r.cfg.SampleRate, r.cfg.Channels); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	r.log.Info().
		Dur("duration", pcmDuration(len(pcm), r.cfg.SampleRate, r.cfg.Channels)).
		Str("path", path).
		Msg("capture finished")
	return path, nil
}

// Level returns the smoothed input level in [0,1], or 0 when idle.
func (r *Recorder) Level() float64 {
	r.mu.Lock()
	recording := r.active != nil
	r.mu.Unlock()
	if !recording {
		return 0
	}
	return math.Float64frombits(r.level.Load())
}

// Recording reports whether a capture is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *Recorder) detach() (*capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := r.active
	if active == nil {
		return nil, ErrNotRecording
	}
	r.active = nil
	r.setLevel(0)
	return active, nil
}

func (r *Recorder) halt(active *capture) error {
	err := active.stream.Stop()
	<-active.done
	active.cancel()
	return err
}

func (r *Recorder) drain(active *capture) {
	defer close(active.done)

	buf := make([]byte, readChunkSize)
	var carry []byte
	for {
		n, err := active.stream.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			whole := len(chunk) &^ 1
			active.mu.Lock()
			active.pcm = append(active.pcm, chunk[:whole]...)
			active.mu.Unlock()
			r.updateLevel(rms(chunk[:whole]))
			carry = append(carry[:0], chunk[whole:]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				active.mu.Lock()
				active.readErr = err
				active.mu.Unlock()
			}
			return
		}
	}
}

func (r *Recorder) updateLevel(value float64) {
	normalized := clamp01(value * levelGain)
	prev := math.Float64frombits(r.level.Load())
	smoothed := levelEMAAlpha*normalized + (1-levelEMAAlpha)*prev
	if math.IsNaN(smoothed) || math.IsInf(smoothed, 0) {
		smoothed = 0
	}
	r.setLevel(clamp01(smoothed))
}

func (r *Recorder) setLevel(level float64) {
	r.level.Store(math.Float64bits(level))
}

// rms returns the root mean square of s16le samples, normalized to [0,1].
func rms(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(samples))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func pcmDuration(bytes int, sampleRate int, channels int) time.Duration {
	frames := bytes / 2 / channels
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func writeWAV(path string, pcm []byte, sampleRate int, channels int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = file.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("close wav: %w", err)
	}
	return file.Close()
}
