package sermon

import "github.com/huytrandev/sermon-scribe/internal/domain/entities"

// ListResponse wraps the stored collection, newest first
type ListResponse struct {
	Sermons []entities.Sermon `json:"sermons"`
	Total   int               `json:"total"`
}
