package recording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
)

// State is the controller's lifecycle position
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateStopping  State = "stopping"
)

// Status is a snapshot of the controller's observable fields
type Status struct {
	IsRecording    bool   `json:"isRecording"`
	IsPaused       bool   `json:"isPaused"`
	IsProcessing   bool   `json:"isProcessing"`
	DurationMillis int64  `json:"durationMillis"`
	ActiveSermonID string `json:"activeSermonId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Controller mediates the recording lifecycle and guarantees exactly
// one pipeline hand-off per recording. At most one capture session is
// active at a time; pipeline runs for earlier recordings may still be
// in flight while a new capture starts.
type Controller struct {
	device     CaptureDevice
	processor  Processor
	repo       repositories.SermonRepository
	captureCfg CaptureConfig
	logger     *zap.Logger
	now        func() time.Time

	mu             sync.Mutex
	state          State
	session        CaptureSession
	activeSermonID string
	durationMillis int64
	processing     int
	lastErr        string
}

// NewController creates a recording controller
func NewController(device CaptureDevice, processor Processor, repo repositories.SermonRepository, captureCfg CaptureConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		device:     device,
		processor:  processor,
		repo:       repo,
		captureCfg: captureCfg,
		logger:     logger,
		now:        time.Now,
		state:      StateIdle,
	}
}

// StartRecording creates a placeholder sermon record, persists it, and
// begins audio capture. The record exists in the store before capture
// is confirmed stable so a crash leaves a recoverable placeholder.
// Returns the new record id.
func (c *Controller) StartRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", entities.ErrRecorderBusy
	}
	c.state = StateStarting // reserve the slot while we acquire resources
	c.mu.Unlock()

	fail := func(err error) (string, error) {
		c.mu.Lock()
		c.state = StateIdle
		c.lastErr = err.Error()
		c.mu.Unlock()
		return "", err
	}

	granted, err := c.device.RequestPermission(ctx)
	if err != nil {
		return fail(fmt.Errorf("permission check failed: %w", err))
	}
	if !granted {
		return fail(entities.ErrPermissionDenied)
	}

	sermon := entities.NewSermon(c.now())
	if err := c.repo.Insert(ctx, sermon); err != nil {
		return fail(fmt.Errorf("failed to persist recording placeholder: %w", err))
	}

	session, err := c.device.Start(ctx, c.captureCfg)
	if err != nil {
		// The placeholder stays, marked so the UI can explain it.
		c.markError(ctx, sermon.ID, fmt.Sprintf("Recording failed to start: %v", err))
		return fail(fmt.Errorf("failed to start capture: %w", err))
	}

	c.mu.Lock()
	c.state = StateRecording
	c.session = session
	c.activeSermonID = sermon.ID
	c.durationMillis = 0
	c.lastErr = ""
	c.mu.Unlock()

	go c.watchUpdates(session, sermon.ID)

	c.logger.Info("🎙️ Recording started", zap.String("sermon_id", sermon.ID))
	return sermon.ID, nil
}

// PauseRecording suspends the active capture
func (c *Controller) PauseRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return entities.ErrNotRecording
	}
	if err := c.session.Pause(); err != nil {
		c.lastErr = err.Error()
		return fmt.Errorf("failed to pause: %w", err)
	}
	c.state = StatePaused
	return nil
}

// ResumeRecording continues a paused capture
func (c *Controller) ResumeRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return entities.ErrNotPaused
	}
	if err := c.session.Resume(); err != nil {
		c.lastErr = err.Error()
		return fmt.Errorf("failed to resume: %w", err)
	}
	c.state = StateRecording
	return nil
}

// StopRecordingAndProcess finalizes capture, persists the audio
// location and duration, then hands the recording to the processor
// without waiting for the pipeline to finish.
func (c *Controller) StopRecordingAndProcess(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording && c.state != StatePaused {
		c.mu.Unlock()
		return entities.ErrNoActiveRecording
	}
	session := c.session
	sermonID := c.activeSermonID
	c.state = StateStopping
	c.mu.Unlock()

	result, err := session.Stop()

	c.mu.Lock()
	c.state = StateIdle
	c.session = nil
	c.activeSermonID = ""
	c.durationMillis = 0
	c.mu.Unlock()

	if err != nil {
		c.markError(ctx, sermonID, fmt.Sprintf("Recording could not be finalized: %v", err))
		c.setLastErr(err.Error())
		return fmt.Errorf("failed to finalize capture: %w", err)
	}

	status := entities.ProcessingStatusProcessing
	if _, err := c.repo.Update(ctx, sermonID, repositories.SermonUpdate{
		AudioURL:         &result.AudioFileLocation,
		DurationMillis:   &result.DurationMillis,
		ProcessingStatus: &status,
	}); err != nil {
		c.markError(ctx, sermonID, fmt.Sprintf("Failed to save recording: %v", err))
		c.setLastErr(err.Error())
		return fmt.Errorf("failed to persist stopped recording: %w", err)
	}

	c.mu.Lock()
	c.processing++
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.processing--
			c.mu.Unlock()
		}()
		c.processor.Process(result.AudioFileLocation, sermonID)
	}()

	c.logger.Info("⏹️ Recording stopped, processing started",
		zap.String("sermon_id", sermonID),
		zap.Int64("duration_ms", result.DurationMillis))
	return nil
}

// Status returns the controller's observable fields
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		IsRecording:    c.state == StateRecording || c.state == StatePaused,
		IsPaused:       c.state == StatePaused,
		IsProcessing:   c.processing > 0,
		DurationMillis: c.durationMillis,
		ActiveSermonID: c.activeSermonID,
		Error:          c.lastErr,
	}
}

// watchUpdates consumes session status snapshots, tracking elapsed time
// and noticing a capture that died underneath us.
func (c *Controller) watchUpdates(session CaptureSession, sermonID string) {
	for status := range session.Updates() {
		c.mu.Lock()
		if c.session != session {
			// A stop already happened; these are stale snapshots.
			c.mu.Unlock()
			return
		}
		c.durationMillis = status.ElapsedMillis

		if !status.CanContinue {
			// The capture died without a stop call.
			c.state = StateIdle
			c.session = nil
			c.activeSermonID = ""
			c.lastErr = "Recording stopped unexpectedly"
			c.mu.Unlock()

			c.logger.Error("capture session failed", zap.String("sermon_id", sermonID))
			c.markError(context.Background(), sermonID, "Recording stopped unexpectedly")
			return
		}
		c.mu.Unlock()
	}
}

func (c *Controller) setLastErr(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *Controller) markError(ctx context.Context, sermonID, message string) {
	status := entities.ProcessingStatusError
	if _, err := c.repo.Update(ctx, sermonID, repositories.SermonUpdate{
		ProcessingStatus: &status,
		ProcessingError:  &message,
	}); err != nil {
		c.logger.Error("failed to mark sermon as errored",
			zap.String("sermon_id", sermonID),
			zap.Error(err))
	}
}
