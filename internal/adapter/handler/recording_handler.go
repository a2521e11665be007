package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/errors"
	recordingdto "github.com/huytrandev/sermon-scribe/internal/adapter/dto/recording"
	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/usecase/recording"
)

// Recording exposes the recording lifecycle
type Recording struct {
	controller *recording.Controller
	logger     *zap.Logger
}

// NewRecordingHandler creates a recording handler
func NewRecordingHandler(controller *recording.Controller, logger *zap.Logger) *Recording {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recording{controller: controller, logger: logger}
}

// Start begins a new recording and returns the new sermon id
func (h *Recording) Start(c echo.Context) error {
	id, err := h.controller.StartRecording(c.Request().Context())
	if err != nil {
		return handleError(c, h.logger, mapRecordingError(err))
	}
	return handleSuccess(c, h.logger, recordingdto.StartResponse{SermonID: id})
}

// Pause suspends the active recording
func (h *Recording) Pause(c echo.Context) error {
	if err := h.controller.PauseRecording(); err != nil {
		return handleError(c, h.logger, mapRecordingError(err))
	}
	return handleSuccess(c, h.logger, h.controller.Status())
}

// Resume continues a paused recording
func (h *Recording) Resume(c echo.Context) error {
	if err := h.controller.ResumeRecording(); err != nil {
		return handleError(c, h.logger, mapRecordingError(err))
	}
	return handleSuccess(c, h.logger, h.controller.Status())
}

// Stop finalizes the recording and kicks off the processing pipeline
func (h *Recording) Stop(c echo.Context) error {
	if err := h.controller.StopRecordingAndProcess(c.Request().Context()); err != nil {
		return handleError(c, h.logger, mapRecordingError(err))
	}
	return handleSuccess(c, h.logger, h.controller.Status())
}

// Status reports the controller's observable fields
func (h *Recording) Status(c echo.Context) error {
	return handleSuccess(c, h.logger, h.controller.Status())
}

// mapRecordingError translates domain errors into API errors
func mapRecordingError(err error) error {
	switch {
	case stdErrors.Is(err, entities.ErrPermissionDenied):
		return errors.ErrMicrophonePermissionDenied()
	case stdErrors.Is(err, entities.ErrRecorderBusy):
		return errors.ErrRecorderBusy()
	case stdErrors.Is(err, entities.ErrNoActiveRecording),
		stdErrors.Is(err, entities.ErrNotRecording),
		stdErrors.Is(err, entities.ErrNotPaused):
		return errors.ErrNoActiveRecording()
	default:
		return errors.ErrInternal(err)
	}
}
