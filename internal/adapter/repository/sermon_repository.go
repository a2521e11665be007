package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/cache"
)

// sermonRepository persists the whole sermon collection as one JSON
// array under a single store key. Every write is a read-merge-write of
// the full blob, serialized by a repository-level mutex.
type sermonRepository struct {
	store  cache.BlobStore
	key    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSermonRepository creates a blob-backed sermon repository
func NewSermonRepository(store cache.BlobStore, key string, logger *zap.Logger) repositories.SermonRepository {
	if key == "" {
		key = "savedSermons"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sermonRepository{
		store:  store,
		key:    key,
		logger: logger,
	}
}

// load reads and decodes the stored collection. A missing key or
// malformed blob yields an empty slice so one bad write can never make
// the whole library unreadable.
func (r *sermonRepository) load(ctx context.Context) ([]entities.Sermon, error) {
	raw, exists, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read sermon store: %w", err)
	}
	if !exists || raw == "" {
		return []entities.Sermon{}, nil
	}

	var sermons []entities.Sermon
	if err := json.Unmarshal([]byte(raw), &sermons); err != nil {
		r.logger.Warn("stored sermon data is corrupted, treating as empty",
			zap.String("key", r.key),
			zap.Error(err))
		return []entities.Sermon{}, nil
	}
	return sermons, nil
}

func (r *sermonRepository) save(ctx context.Context, sermons []entities.Sermon) error {
	raw, err := json.Marshal(sermons)
	if err != nil {
		return fmt.Errorf("failed to encode sermon collection: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("failed to write sermon store: %w", err)
	}
	return nil
}

// GetAll returns all sermons, most recent first
func (r *sermonRepository) GetAll(ctx context.Context) ([]entities.Sermon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// GetByID returns the sermon with the given id, or nil if not found
func (r *sermonRepository) GetByID(ctx context.Context, id string) (*entities.Sermon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sermons, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sermons {
		if sermons[i].ID == id {
			s := sermons[i]
			return &s, nil
		}
	}
	return nil, nil
}

// Insert prepends a new sermon so the list stays newest-first
func (r *sermonRepository) Insert(ctx context.Context, sermon *entities.Sermon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sermons, err := r.load(ctx)
	if err != nil {
		return err
	}
	sermons = append([]entities.Sermon{*sermon}, sermons...)
	return r.save(ctx, sermons)
}

// Update merges the given fields into an existing record
func (r *sermonRepository) Update(ctx context.Context, id string, update repositories.SermonUpdate) (*entities.Sermon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sermons, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sermons {
		if sermons[i].ID != id {
			continue
		}
		applyUpdate(&sermons[i], update)
		if err := r.save(ctx, sermons); err != nil {
			return nil, err
		}
		s := sermons[i]
		return &s, nil
	}
	return nil, entities.ErrSermonNotFound
}

func applyUpdate(s *entities.Sermon, update repositories.SermonUpdate) {
	if update.Title != nil {
		s.Title = *update.Title
	}
	if update.Notes != nil {
		s.Notes = *update.Notes
	}
	if update.Transcript != nil {
		s.Transcript = *update.Transcript
	}
	if update.TranscriptData != nil {
		s.TranscriptData = update.TranscriptData
	}
	if update.Summary != nil {
		s.Summary = update.Summary
	}
	if update.AudioURL != nil {
		s.AudioURL = *update.AudioURL
	}
	if update.DurationMillis != nil {
		s.DurationMillis = *update.DurationMillis
	}
	if update.ProcessingStatus != nil {
		s.ProcessingStatus = *update.ProcessingStatus
	}
	if update.ProcessingError != nil {
		s.ProcessingError = *update.ProcessingError
	}
}

// Delete removes the sermon with the given id
func (r *sermonRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sermons, err := r.load(ctx)
	if err != nil {
		return err
	}

	filtered := sermons[:0]
	for _, s := range sermons {
		if s.ID != id {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == len(sermons) {
		// Nothing removed, skip the write.
		return nil
	}
	return r.save(ctx, filtered)
}

// ClearAll removes every stored sermon
func (r *sermonRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, r.key)
}
