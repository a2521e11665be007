package processing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
	"github.com/huytrandev/sermon-scribe/pkg/jobcontext"
	"github.com/huytrandev/sermon-scribe/pkg/transcribe"
)

// Transcriber is the three-call vendor protocol the pipeline drives
type Transcriber interface {
	Upload(ctx context.Context, filePath string) (string, error)
	SubmitJob(ctx context.Context, audioURL string) (string, error)
	PollUntilDone(ctx context.Context, jobID string) (*transcribe.Result, error)
	FetchParagraphs(ctx context.Context, jobID string) ([]entities.TranscriptParagraph, error)
}

// Summarizer produces a structured summary from transcript text
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*entities.StructuredSummary, error)
}

// Archiver copies a finished recording to durable storage. Best effort.
type Archiver interface {
	ArchiveAudio(ctx context.Context, sermonID, filePath string) error
}

// Orchestrator advances one finished recording from local audio file to
// a terminal stored status. All outcomes are written to the record
// store; nothing is reported back to the caller.
type Orchestrator struct {
	repo        repositories.SermonRepository
	transcriber Transcriber
	summarizer  Summarizer
	archiver    Archiver
	runTimeout  time.Duration
	logger      *zap.Logger
}

// NewOrchestrator creates a processing orchestrator. summarizer and
// archiver may be nil, in which case those stages are skipped.
func NewOrchestrator(repo repositories.SermonRepository, transcriber Transcriber, summarizer Summarizer, archiver Archiver, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		repo:        repo,
		transcriber: transcriber,
		summarizer:  summarizer,
		archiver:    archiver,
		runTimeout:  15 * time.Minute,
		logger:      logger,
	}
}

// Process runs the pipeline for one recording and blocks until it
// reaches a terminal state. Upload, submit, and poll run in strict
// sequence; summarization and enrichment are best effort. Success or
// failure, exactly one final write lands in the store, and the audio
// file location is never changed or deleted.
func (o *Orchestrator) Process(audioFileLocation, sermonID string) {
	ctx, cancel := jobcontext.RunBegin(context.Background(), sermonID, o.runTimeout)
	defer cancel()

	log := o.logger.With(zap.String("sermon_id", sermonID))
	if runID, ok := jobcontext.GetRunID(ctx); ok {
		log = log.With(zap.String("run_id", runID.String()))
	}
	log.Info("⚙️ Processing pipeline started", zap.String("audio", audioFileLocation))

	var (
		transcript     string
		transcriptData *entities.TranscriptData
		summary        *entities.StructuredSummary
		pipelineErr    error
	)

	// The final write always runs, success or failure.
	defer func() {
		o.finalize(ctx, sermonID, transcript, transcriptData, summary, pipelineErr)
	}()

	// Stage 1: upload.
	ctx = jobcontext.WithStage(ctx, "upload")
	audioURL, err := o.transcriber.Upload(ctx, audioFileLocation)
	if err != nil {
		pipelineErr = fmt.Errorf("upload failed: %w", err)
		return
	}
	log.Info("📤 Audio uploaded", zap.String("audio_url", audioURL))

	// Stage 2: submit.
	ctx = jobcontext.WithStage(ctx, "submit")
	jobID, err := o.transcriber.SubmitJob(ctx, audioURL)
	if err != nil {
		pipelineErr = fmt.Errorf("transcription submission failed: %w", err)
		return
	}
	log.Info("📝 Transcription job submitted", zap.String("job_id", jobID))

	// Stage 3: poll until the vendor reports a terminal state.
	ctx = jobcontext.WithStage(ctx, "poll")
	result, err := o.transcriber.PollUntilDone(ctx, jobID)
	if err != nil {
		pipelineErr = fmt.Errorf("transcription failed: %w", err)
		return
	}
	if strings.TrimSpace(result.Text) == "" {
		pipelineErr = entities.ErrEmptyTranscript
		return
	}
	transcript = result.Text
	log.Info("✅ Transcription completed",
		zap.Int("chars", len(transcript)),
		zap.Duration("elapsed", jobcontext.Elapsed(ctx)))

	// Paragraph detail is an enrichment; a failure here never fails
	// the pipeline.
	if paragraphs, err := o.transcriber.FetchParagraphs(ctx, jobID); err != nil {
		log.Warn("paragraph enrichment failed, keeping plain transcript", zap.Error(err))
	} else if len(paragraphs) > 0 {
		transcriptData = &entities.TranscriptData{
			Words:      result.Words,
			Paragraphs: paragraphs,
		}
	}

	// Stage 4: summarize, best effort.
	if o.summarizer != nil {
		ctx = jobcontext.WithStage(ctx, "summarize")
		s, err := o.summarizer.Summarize(ctx, transcript)
		if err != nil {
			log.Warn("summarization failed, completing with transcript only", zap.Error(err))
		} else {
			summary = s
			log.Info("🧾 Summary generated", zap.String("sermon_type", string(s.SermonType)))
		}
	}

	// Archive the audio copy after the pipeline outcome is decided.
	// The local file stays in place either way.
	if o.archiver != nil {
		if err := o.archiver.ArchiveAudio(ctx, sermonID, audioFileLocation); err != nil {
			log.Warn("audio archive failed", zap.Error(err))
		}
	}
}

// finalize writes the single terminal update for a pipeline run
func (o *Orchestrator) finalize(ctx context.Context, sermonID, transcript string, transcriptData *entities.TranscriptData, summary *entities.StructuredSummary, pipelineErr error) {
	update := repositories.SermonUpdate{}

	if pipelineErr == nil {
		status := entities.ProcessingStatusCompleted
		clearErr := ""
		update.ProcessingStatus = &status
		update.Transcript = &transcript
		update.TranscriptData = transcriptData
		update.Summary = summary
		update.ProcessingError = &clearErr
	} else {
		status := entities.ProcessingStatusError
		message := pipelineErr.Error()
		update.ProcessingStatus = &status
		update.ProcessingError = &message
	}

	// The run context may already be cancelled or expired; the final
	// write must still go through.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := o.repo.Update(writeCtx, sermonID, update); err != nil {
		o.logger.Error("failed to persist pipeline outcome",
			zap.String("sermon_id", sermonID),
			zap.Error(err))
		return
	}

	if pipelineErr == nil {
		o.logger.Info("🏁 Processing pipeline completed", zap.String("sermon_id", sermonID))
	} else {
		o.logger.Error("❌ Processing pipeline failed",
			zap.String("sermon_id", sermonID),
			zap.String("stage", jobcontext.GetStage(ctx)),
			zap.Error(pipelineErr))
	}
}

// ReconcileStale marks recordings stuck in processing from a previous
// run as errored. The in-memory pipeline does not survive a restart, so
// anything still processing after olderThan can never complete.
func (o *Orchestrator) ReconcileStale(ctx context.Context, olderThan time.Duration) error {
	sermons, err := o.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan sermon store: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	for _, s := range sermons {
		if !s.IsProcessing() {
			continue
		}
		createdAt := s.CreatedAt()
		if createdAt.IsZero() || createdAt.After(cutoff) {
			continue
		}

		status := entities.ProcessingStatusError
		message := "Processing was interrupted and could not be resumed"
		if _, err := o.repo.Update(ctx, s.ID, repositories.SermonUpdate{
			ProcessingStatus: &status,
			ProcessingError:  &message,
		}); err != nil {
			o.logger.Error("failed to reconcile stale sermon",
				zap.String("sermon_id", s.ID),
				zap.Error(err))
			continue
		}
		o.logger.Warn("🧹 Marked stale recording as errored",
			zap.String("sermon_id", s.ID),
			zap.Time("created_at", createdAt))
	}
	return nil
}
