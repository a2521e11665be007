package entities

import (
	"fmt"
	"time"
)

// ProcessingStatus represents the pipeline state of a sermon recording
type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing" // Pipeline running (or not yet started)
	ProcessingStatusCompleted  ProcessingStatus = "completed"  // Transcript persisted, pipeline done
	ProcessingStatusError      ProcessingStatus = "error"      // Pipeline failed, see ProcessingError
)

// SermonType classifies a sermon in the structured summary
type SermonType string

const (
	SermonTypeExpository SermonType = "expository"
	SermonTypeTextual    SermonType = "textual"
	SermonTypeTopical    SermonType = "topical"
	SermonTypeNarrative  SermonType = "narrative"
	SermonTypeOther      SermonType = "other"
)

// StructuredSummary is the AI-generated summary attached to a sermon
// after successful summarization.
type StructuredSummary struct {
	SermonType SermonType `json:"sermonType" validate:"required,oneof=expository textual topical narrative other"`
	Overview   string     `json:"overview" validate:"required"`
	Scriptures []string   `json:"scriptures"`
	KeyPoints  []string   `json:"keyPoints"`
}

// TranscriptWord is a single word with millisecond offsets and confidence
type TranscriptWord struct {
	Text        string  `json:"text"`
	StartMillis int64   `json:"start"`
	EndMillis   int64   `json:"end"`
	Confidence  float64 `json:"confidence"`
}

// TranscriptParagraph is a paragraph-level segment of the transcript
type TranscriptParagraph struct {
	Text        string  `json:"text"`
	StartMillis int64   `json:"start"`
	EndMillis   int64   `json:"end"`
	Confidence  float64 `json:"confidence"`
}

// TranscriptData holds the detailed transcript returned by the vendor's
// enrichment endpoints. Present only when the enrichment fetch succeeded.
type TranscriptData struct {
	Words      []TranscriptWord      `json:"words,omitempty"`
	Paragraphs []TranscriptParagraph `json:"paragraphs,omitempty"`
}

// Sermon is the persisted unit representing one recording and its
// derived artifacts. It is the contract between the processing pipeline
// and the UI: the store is the single source of truth for pipeline state.
type Sermon struct {
	ID               string             `json:"id"`
	Date             string             `json:"date"`
	Title            string             `json:"title,omitempty"`
	Transcript       string             `json:"transcript"`
	TranscriptData   *TranscriptData    `json:"transcriptData,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	AudioURL         string             `json:"audioUrl,omitempty"`
	DurationMillis   int64              `json:"durationMillis,omitempty"`
	Summary          *StructuredSummary `json:"summary,omitempty"`
	ProcessingStatus ProcessingStatus   `json:"processingStatus,omitempty"`
	ProcessingError  string             `json:"processingError,omitempty"`
}

// NewSermon creates a placeholder sermon record for a recording that is
// about to start. The id is timestamp-derived and immutable.
func NewSermon(now time.Time) *Sermon {
	return &Sermon{
		ID:               fmt.Sprintf("rec_%d", now.UnixMilli()),
		Date:             now.Format(time.RFC3339),
		Title:            fmt.Sprintf("Recording - %s", now.Format("3:04:05 PM")),
		Transcript:       "",
		ProcessingStatus: ProcessingStatusProcessing,
	}
}

// IsProcessing reports whether the pipeline has not yet reached a terminal state
func (s *Sermon) IsProcessing() bool {
	return s.ProcessingStatus == ProcessingStatusProcessing
}

// IsTerminal reports whether the pipeline reached completed or error
func (s *Sermon) IsTerminal() bool {
	return s.ProcessingStatus == ProcessingStatusCompleted || s.ProcessingStatus == ProcessingStatusError
}

// CreatedAt parses the record's creation timestamp. Returns the zero
// time if the date field is malformed.
func (s *Sermon) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339, s.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
