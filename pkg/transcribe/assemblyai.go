package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/pkg/config"
)

// ErrPollTimeout is returned when a transcription job does not reach a
// terminal status within the configured polling budget.
var ErrPollTimeout = errors.New("transcription polling budget exhausted")

// UploadError reports a non-2xx response from the upload endpoint. The
// vendor response body is preserved for diagnostics.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("audio upload failed with status %d: %s", e.StatusCode, e.Body)
}

// SubmitError reports a rejected job submission
type SubmitError struct {
	StatusCode int
	Reason     string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("transcription job submission failed with status %d: %s", e.StatusCode, e.Reason)
}

// JobError reports a job that the vendor marked as failed
type JobError struct {
	JobID   string
	Message string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("transcription job %s failed: %s", e.JobID, e.Message)
}

// Result is the outcome of a completed transcription job
type Result struct {
	JobID string
	Text  string
	Words []entities.TranscriptWord
}

// Client is a minimal AssemblyAI client covering the batch transcription
// flow: upload, submit, poll, and paragraph enrichment.
type Client struct {
	apiKey          string
	baseURL         string
	client          *http.Client
	uploadClient    *http.Client
	pollInterval    time.Duration
	maxPollAttempts int
	logger          *zap.Logger
}

// NewClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables and defaults.
func NewClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *Client {
	var (
		apiKey          string
		baseURL         = "https://api.assemblyai.com/v2"
		pollInterval    = 5 * time.Second
		maxPollAttempts = 60
		requestTimeout  = 30 * time.Second
		uploadTimeout   = 5 * time.Minute
	)
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.PollInterval > 0 {
			pollInterval = cfg.PollInterval
		}
		if cfg.MaxPollAttempts > 0 {
			maxPollAttempts = cfg.MaxPollAttempts
		}
		if cfg.RequestTimeout > 0 {
			requestTimeout = cfg.RequestTimeout
		}
		if cfg.UploadTimeout > 0 {
			uploadTimeout = cfg.UploadTimeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:          apiKey,
		baseURL:         baseURL,
		client:          &http.Client{Timeout: requestTimeout},
		uploadClient:    &http.Client{Timeout: uploadTimeout},
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		logger:          logger,
	}
}

// uploadResponse is the response from /upload
type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// submitRequest is the payload for /transcript
type submitRequest struct {
	AudioURL string `json:"audio_url"`
}

// transcriptResponse is the polled job state
type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
	Words  []struct {
		Text       string  `json:"text"`
		Start      int64   `json:"start"`
		End        int64   `json:"end"`
		Confidence float64 `json:"confidence"`
	} `json:"words"`
}

// paragraphsResponse is the response from /transcript/{id}/paragraphs
type paragraphsResponse struct {
	Paragraphs []struct {
		Text       string  `json:"text"`
		Start      int64   `json:"start"`
		End        int64   `json:"end"`
		Confidence float64 `json:"confidence"`
	} `json:"paragraphs"`
}

// Upload streams a local audio file to the vendor and returns the
// hosted audio URL. The request is made once; the caller decides how a
// failure is surfaced. Uploads run on their own client whose timeout
// allows for large files.
func (c *Client) Upload(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("audio upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if ur.UploadURL == "" {
		return "", &UploadError{StatusCode: resp.StatusCode, Body: "missing upload_url in response"}
	}
	return ur.UploadURL, nil
}

// SubmitJob asks the vendor to transcribe the given audio URL and
// returns the job id.
func (c *Client) SubmitJob(ctx context.Context, audioURL string) (string, error) {
	b, err := json.Marshal(submitRequest{AudioURL: audioURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/transcript", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &SubmitError{StatusCode: resp.StatusCode, Reason: string(body)}
	}

	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if tr.ID == "" {
		return "", &SubmitError{StatusCode: resp.StatusCode, Reason: "missing job id in response"}
	}
	return tr.ID, nil
}

// PollUntilDone polls the job status at a fixed interval until it
// reaches a terminal state or the attempt budget runs out. A vendor
// "error" status stops polling immediately.
func (c *Client) PollUntilDone(ctx context.Context, jobID string) (*Result, error) {
	var result *Result

	operation := func() error {
		tr, err := c.fetchJob(ctx, jobID)
		if err != nil {
			// Transient fetch failures count against the budget but
			// do not fail the job.
			c.logger.Warn("transcription status fetch failed",
				zap.String("job_id", jobID),
				zap.Error(err))
			return err
		}

		switch tr.Status {
		case "completed":
			words := make([]entities.TranscriptWord, 0, len(tr.Words))
			for _, w := range tr.Words {
				words = append(words, entities.TranscriptWord{
					Text:        w.Text,
					StartMillis: w.Start,
					EndMillis:   w.End,
					Confidence:  w.Confidence,
				})
			}
			result = &Result{JobID: jobID, Text: tr.Text, Words: words}
			return nil
		case "error":
			msg := tr.Error
			if msg == "" {
				msg = "unknown vendor error"
			}
			return backoff.Permanent(&JobError{JobID: jobID, Message: msg})
		default:
			return fmt.Errorf("job %s still %s", jobID, tr.Status)
		}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.pollInterval), uint64(c.maxPollAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, b); err != nil {
		var jobErr *JobError
		if errors.As(err, &jobErr) {
			return nil, jobErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPollTimeout, err)
	}
	return result, nil
}

// FetchParagraphs retrieves paragraph segments for a completed job.
// Callers treat a failure here as non-fatal enrichment.
func (c *Client) FetchParagraphs(ctx context.Context, jobID string) ([]entities.TranscriptParagraph, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/transcript/"+jobID+"/paragraphs", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paragraphs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("paragraphs fetch returned status %d", resp.StatusCode)
	}

	var pr paragraphsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("failed to decode paragraphs response: %w", err)
	}

	paragraphs := make([]entities.TranscriptParagraph, 0, len(pr.Paragraphs))
	for _, p := range pr.Paragraphs {
		paragraphs = append(paragraphs, entities.TranscriptParagraph{
			Text:        p.Text,
			StartMillis: p.Start,
			EndMillis:   p.End,
			Confidence:  p.Confidence,
		})
	}
	return paragraphs, nil
}

func (c *Client) fetchJob(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status fetch returned %d", resp.StatusCode)
	}

	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &tr, nil
}
