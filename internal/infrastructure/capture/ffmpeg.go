package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/usecase/recording"
)

const statusInterval = 500 * time.Millisecond

// FFmpegDevice records microphone audio to an m4a file using ffmpeg.
// Pause and resume are implemented with SIGSTOP/SIGCONT so the encoder
// keeps its state across pauses.
type FFmpegDevice struct {
	command string
	logger  *zap.Logger
}

// NewFFmpegDevice creates a capture device backed by the given ffmpeg binary
func NewFFmpegDevice(command string, logger *zap.Logger) *FFmpegDevice {
	if command == "" {
		command = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegDevice{command: command, logger: logger}
}

// RequestPermission checks that the recorder binary is available. There
// is no interactive permission prompt on a server host; a missing or
// unusable binary is the equivalent of a denied microphone.
func (d *FFmpegDevice) RequestPermission(_ context.Context) (bool, error) {
	if _, err := exec.LookPath(d.command); err != nil {
		return false, nil
	}
	return true, nil
}

// Start spawns ffmpeg writing to a fresh file in cfg.OutputDir
func (d *FFmpegDevice) Start(ctx context.Context, cfg recording.CaptureConfig) (recording.CaptureSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.BitRate <= 0 {
		cfg.BitRate = 128000
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}
	outputPath := filepath.Join(cfg.OutputDir, uuid.NewString()+".m4a")

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-c:a", "aac",
		"-b:a", strconv.Itoa(cfg.BitRate),
		outputPath,
	}

	// The process must outlive the request that started it, so it is
	// deliberately not bound to ctx.
	cmd := exec.Command(d.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Give ffmpeg a moment to fail fast on a bad device.
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	s := &ffmpegSession{
		outputPath: outputPath,
		process:    cmd.Process,
		waitErr:    waitErr,
		stderr:     &stderr,
		updates:    make(chan recording.CaptureStatus, 1),
		done:       make(chan struct{}),
		startedAt:  time.Now(),
		logger:     d.logger,
	}
	go s.watch()

	return s, nil
}

type ffmpegSession struct {
	outputPath string
	process    *os.Process
	waitErr    <-chan error
	stderr     *bytes.Buffer

	updates chan recording.CaptureStatus
	done    chan struct{}

	mu         sync.Mutex
	startedAt  time.Time
	pausedAt   time.Time
	pausedFor  time.Duration
	paused     bool
	dead       bool
	stopped    bool
	stopOnce   sync.Once
	stopResult *recording.CaptureResult
	stopErr    error

	logger *zap.Logger
}

// elapsed returns capture time excluding paused stretches. Caller holds mu.
func (s *ffmpegSession) elapsedLocked() time.Duration {
	elapsed := time.Since(s.startedAt) - s.pausedFor
	if s.paused {
		elapsed -= time.Since(s.pausedAt)
	}
	return elapsed
}

// watch emits periodic status snapshots and notices an unexpected exit
func (s *ffmpegSession) watch() {
	defer close(s.updates)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case err := <-s.waitErr:
			s.mu.Lock()
			stopped := s.stopped
			s.dead = true
			elapsed := s.elapsedLocked()
			s.mu.Unlock()
			if stopped {
				return
			}
			// The process died without Stop being called.
			s.logger.Warn("ffmpeg exited unexpectedly",
				zap.String("output", s.outputPath),
				zap.Error(err))
			s.emit(recording.CaptureStatus{
				ElapsedMillis: elapsed.Milliseconds(),
				IsActive:      false,
				CanContinue:   false,
			})
			return
		case <-ticker.C:
			s.mu.Lock()
			status := recording.CaptureStatus{
				ElapsedMillis: s.elapsedLocked().Milliseconds(),
				IsActive:      !s.paused,
				CanContinue:   true,
			}
			s.mu.Unlock()
			s.emit(status)
		}
	}
}

// emit delivers a status without blocking, dropping stale snapshots
func (s *ffmpegSession) emit(status recording.CaptureStatus) {
	select {
	case s.updates <- status:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- status:
		default:
		}
	}
}

func (s *ffmpegSession) Updates() <-chan recording.CaptureStatus {
	return s.updates
}

func (s *ffmpegSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead || s.stopped {
		return errors.New("capture session is no longer running")
	}
	if s.paused {
		return nil
	}
	if err := s.process.Signal(syscall.SIGSTOP); err != nil {
		return fmt.Errorf("failed to pause recorder: %w", err)
	}
	s.paused = true
	s.pausedAt = time.Now()
	return nil
}

func (s *ffmpegSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead || s.stopped {
		return errors.New("capture session is no longer running")
	}
	if !s.paused {
		return nil
	}
	if err := s.process.Signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("failed to resume recorder: %w", err)
	}
	s.pausedFor += time.Since(s.pausedAt)
	s.paused = false
	return nil
}

// Stop finalizes the recording. ffmpeg needs SIGINT (not SIGKILL) to
// write the m4a trailer, otherwise the file is unplayable.
func (s *ffmpegSession) Stop() (*recording.CaptureResult, error) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.paused {
			// A paused process cannot handle SIGINT.
			_ = s.process.Signal(syscall.SIGCONT)
			s.pausedFor += time.Since(s.pausedAt)
			s.paused = false
		}
		s.stopped = true
		duration := s.elapsedLocked()
		dead := s.dead
		s.mu.Unlock()

		close(s.done)

		if !dead {
			_ = s.process.Signal(os.Interrupt)
			select {
			case <-s.waitErr:
			case <-time.After(3 * time.Second):
				_ = s.process.Kill()
				<-s.waitErr
			}
		}

		if _, err := os.Stat(s.outputPath); err != nil {
			s.stopErr = fmt.Errorf("recording file missing after stop: %w: %s", err, bytes.TrimSpace(s.stderr.Bytes()))
			return
		}

		s.stopResult = &recording.CaptureResult{
			AudioFileLocation: s.outputPath,
			DurationMillis:    duration.Milliseconds(),
		}
	})

	return s.stopResult, s.stopErr
}
