package recording

import "context"

// CaptureStatus is a periodic snapshot of a running capture session
type CaptureStatus struct {
	// ElapsedMillis is capture time excluding paused stretches.
	ElapsedMillis int64
	// IsActive is false while the capture is paused.
	IsActive bool
	// CanContinue is false once the session has died and cannot resume.
	CanContinue bool
}

// CaptureResult is the outcome of a stopped capture session
type CaptureResult struct {
	// AudioFileLocation is the local path of the finished recording.
	AudioFileLocation string
	// DurationMillis is the total captured duration.
	DurationMillis int64
}

// CaptureConfig selects the audio input for a session
type CaptureConfig struct {
	OutputDir   string
	InputFormat string
	InputDevice string
	SampleRate  int
	Channels    int
	BitRate     int
}

// CaptureSession is one active microphone recording
type CaptureSession interface {
	// Pause suspends capture. Paused time does not count toward the
	// recording duration.
	Pause() error

	// Resume continues a paused capture.
	Resume() error

	// Stop finalizes the recording and returns the finished file.
	Stop() (*CaptureResult, error)

	// Updates emits periodic status snapshots. The channel is closed
	// when the session ends for any reason.
	Updates() <-chan CaptureStatus
}

// CaptureDevice abstracts the platform audio recorder
type CaptureDevice interface {
	// RequestPermission reports whether microphone access is granted.
	RequestPermission(ctx context.Context) (bool, error)

	// Start begins a new capture session.
	Start(ctx context.Context, cfg CaptureConfig) (CaptureSession, error)
}

// Processor runs the post-recording pipeline for one sermon. Process
// blocks until the pipeline reaches a terminal state; the controller
// runs it on its own goroutine.
type Processor interface {
	Process(audioFileLocation, sermonID string)
}
