package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/errors"
	sermondto "github.com/huytrandev/sermon-scribe/internal/adapter/dto/sermon"
	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
)

// Sermon exposes CRUD over the sermon record collection
type Sermon struct {
	repo   repositories.SermonRepository
	logger *zap.Logger
}

// NewSermonHandler creates a sermon handler
func NewSermonHandler(repo repositories.SermonRepository, logger *zap.Logger) *Sermon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sermon{repo: repo, logger: logger}
}

// List returns all sermons, newest first
func (h *Sermon) List(c echo.Context) error {
	sermons, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		return handleError(c, h.logger, errors.ErrStoreFailed(err))
	}
	return handleSuccess(c, h.logger, sermondto.ListResponse{
		Sermons: sermons,
		Total:   len(sermons),
	})
}

// Get returns a single sermon by id
func (h *Sermon) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return handleError(c, h.logger, errors.ErrInvalidArgument("sermon id is required"))
	}

	sermon, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return handleError(c, h.logger, errors.ErrStoreFailed(err))
	}
	if sermon == nil {
		return handleError(c, h.logger, errors.ErrNotFound("Sermon"))
	}
	return handleSuccess(c, h.logger, sermon)
}

// Update merges user-editable fields into a sermon record
func (h *Sermon) Update(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return handleError(c, h.logger, errors.ErrInvalidArgument("sermon id is required"))
	}

	var req sermondto.UpdateSermonRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, h.logger, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return handleError(c, h.logger, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Title == nil && req.Notes == nil {
		return handleError(c, h.logger, errors.ErrInvalidArgument("nothing to update"))
	}

	sermon, err := h.repo.Update(c.Request().Context(), id, repositories.SermonUpdate{
		Title: req.Title,
		Notes: req.Notes,
	})
	if err != nil {
		if stdErrors.Is(err, entities.ErrSermonNotFound) {
			return handleError(c, h.logger, errors.ErrNotFound("Sermon"))
		}
		return handleError(c, h.logger, errors.ErrStoreFailed(err))
	}
	return handleSuccess(c, h.logger, sermon)
}

// Delete removes a sermon record
func (h *Sermon) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return handleError(c, h.logger, errors.ErrInvalidArgument("sermon id is required"))
	}

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return handleError(c, h.logger, errors.ErrStoreFailed(err))
	}
	return handleSuccess(c, h.logger, nil)
}

// DeleteAll clears the whole collection
func (h *Sermon) DeleteAll(c echo.Context) error {
	if err := h.repo.ClearAll(c.Request().Context()); err != nil {
		return handleError(c, h.logger, errors.ErrStoreFailed(err))
	}
	return handleSuccess(c, h.logger, nil)
}
