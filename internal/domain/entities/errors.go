package entities

import "errors"

// Domain errors
var (
	ErrSermonNotFound    = errors.New("sermon not found")
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrRecorderBusy      = errors.New("another recording is already active")
	ErrNoActiveRecording = errors.New("no active recording")
	ErrNotRecording      = errors.New("recorder is not recording")
	ErrNotPaused         = errors.New("recorder is not paused")
	ErrEmptyTranscript   = errors.New("transcript text is empty")
)
