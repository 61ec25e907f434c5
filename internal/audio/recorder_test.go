package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderFinishWritesWAV(t *testing.T) {
	t.Parallel()

	pcm := sinePCM(1600, 12000)
	source := &fakeSource{pcm: pcm}
	recorder := NewRecorder(source, CaptureConfig{SampleRate: 16000, Channels: 1}, t.TempDir(), zerolog.Nop())

	require.NoError(t, recorder.Start(context.Background()))
	assert.True(t, recorder.Recording())
	assert.ErrorIs(t, recorder.Start(context.Background()), ErrAlreadyRecording)

	waitUntil(t, func() bool { return source.stream().drained() })
	assert.Greater(t, recorder.Level(), 0.0)
	assert.LessOrEqual(t, recorder.Level(), 1.0)

	path, err := recorder.Finish()
	require.NoError(t, err)
	defer os.Remove(path)
	assert.False(t, recorder.Recording())
	assert.Zero(t, recorder.Level())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	decoder := wav.NewDecoder(file)
	require.True(t, decoder.IsValidFile())
	buf, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 16000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, 1600)
	assert.Equal(t, int(int16(binary.LittleEndian.Uint16(pcm[2:]))), buf.Data[1])
}

func TestRecorderStopDiscards(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := &fakeSource{pcm: sinePCM(320, 8000)}
	recorder := NewRecorder(source, CaptureConfig{}, dir, zerolog.Nop())

	require.NoError(t, recorder.Start(context.Background()))
	require.NoError(t, recorder.Stop())
	assert.ErrorIs(t, recorder.Stop(), ErrNotRecording)
	_, err := recorder.Finish()
	assert.ErrorIs(t, err, ErrNotRecording)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorderFinishWithoutAudio(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(&fakeSource{}, CaptureConfig{}, t.TempDir(), zerolog.Nop())
	require.NoError(t, recorder.Start(context.Background()))

	_, err := recorder.Finish()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio captured")
}

func TestRecorderStartFailure(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(&fakeSource{startErr: errors.New("device busy")}, CaptureConfig{}, t.TempDir(), zerolog.Nop())
	err := recorder.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device busy")
	assert.False(t, recorder.Recording())
}

func TestRMSAndLevelSmoothing(t *testing.T) {
	t.Parallel()

	assert.Zero(t, rms(nil))
	full := make([]byte, 4)
	binary.LittleEndian.PutUint16(full, uint16(int16(32767)))
	binary.LittleEndian.PutUint16(full[2:], uint16(0x8001))
	assert.InDelta(t, 1.0, rms(full), 1e-9)

	recorder := NewRecorder(&fakeSource{}, CaptureConfig{}, "", zerolog.Nop())
	recorder.updateLevel(1.0)
	assert.InDelta(t, 0.3, math.Float64frombits(recorder.level.Load()), 1e-9)
}

func TestPCMDuration(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Second, pcmDuration(32000, 16000, 1))
	assert.Equal(t, 500*time.Millisecond, pcmDuration(32000, 16000, 2))
}

func sinePCM(samples int, amplitude int16) []byte {
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met")
}

type fakeSource struct {
	pcm      []byte
	startErr error

	mu      sync.Mutex
	current *fakeStream
}

func (f *fakeSource) Start(_ context.Context, _ CaptureConfig) (Stream, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	stream := &fakeStream{reader: bytes.NewReader(f.pcm), stopped: make(chan struct{})}
	f.mu.Lock()
	f.current = stream
	f.mu.Unlock()
	return stream, nil
}

func (f *fakeSource) stream() *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// fakeStream serves its PCM in small reads, then blocks until stopped like a live device.
type fakeStream struct {
	mu       sync.Mutex
	reader   *bytes.Reader
	empty    bool
	stopped  chan struct{}
	stopOnce sync.Once
}

func (s *fakeStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(p) > 333 {
		p = p[:333]
	}
	n, _ := s.reader.Read(p)
	if n == 0 {
		s.empty = true
	}
	s.mu.Unlock()
	if n > 0 {
		return n, nil
	}
	<-s.stopped
	return 0, io.EOF
}

func (s *fakeStream) Stop() error {
	s.stopOnce.Do(func() { close(s.stopped) })
	return nil
}

func (s *fakeStream) drained() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.empty
}
