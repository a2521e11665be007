package repositories

import (
	"context"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
)

// SermonUpdate carries a partial update for a sermon record. Nil fields
// are left unchanged; the merge is per-field, so pipeline writes never
// clobber user edits to title or notes.
type SermonUpdate struct {
	Title            *string
	Notes            *string
	Transcript       *string
	TranscriptData   *entities.TranscriptData
	Summary          *entities.StructuredSummary
	AudioURL         *string
	DurationMillis   *int64
	ProcessingStatus *entities.ProcessingStatus
	// ProcessingError set to the empty string clears the field.
	ProcessingError *string
}

// SermonRepository defines sermon record persistence operations
type SermonRepository interface {
	// GetAll returns all sermons, most recent first. Malformed or missing
	// stored data yields an empty slice, never an error.
	GetAll(ctx context.Context) ([]entities.Sermon, error)

	// GetByID returns the sermon with the given id, or nil if not found.
	GetByID(ctx context.Context, id string) (*entities.Sermon, error)

	// Insert prepends a new sermon to the collection.
	Insert(ctx context.Context, sermon *entities.Sermon) error

	// Update merges the given fields into an existing record and returns
	// the updated sermon. Returns entities.ErrSermonNotFound if the id
	// does not exist; the stored collection is left untouched in that case.
	Update(ctx context.Context, id string, update SermonUpdate) (*entities.Sermon, error)

	// Delete removes the sermon with the given id. Deleting a missing id
	// is not an error.
	Delete(ctx context.Context, id string) error

	// ClearAll removes every stored sermon.
	ClearAll(ctx context.Context) error
}
