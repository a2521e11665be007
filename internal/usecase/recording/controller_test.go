package recording

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huytrandev/sermon-scribe/internal/adapter/repository"
	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/cache"
)

type fakeSession struct {
	mu       sync.Mutex
	paused   bool
	stopped  bool
	stopErr  error
	result   CaptureResult
	pauseErr error
	updates  chan CaptureStatus
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		result:  CaptureResult{AudioFileLocation: "/tmp/audio.m4a", DurationMillis: 10000},
		updates: make(chan CaptureStatus, 4),
	}
}

func (s *fakeSession) Pause() error {
	if s.pauseErr != nil {
		return s.pauseErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	return nil
}

func (s *fakeSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	return nil
}

func (s *fakeSession) Stop() (*CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.stopErr != nil {
		return nil, s.stopErr
	}
	r := s.result
	return &r, nil
}

func (s *fakeSession) Updates() <-chan CaptureStatus {
	return s.updates
}

type fakeDevice struct {
	granted  bool
	startErr error
	session  *fakeSession
}

func (d *fakeDevice) RequestPermission(_ context.Context) (bool, error) {
	return d.granted, nil
}

func (d *fakeDevice) Start(_ context.Context, _ CaptureConfig) (CaptureSession, error) {
	if d.startErr != nil {
		return nil, d.startErr
	}
	return d.session, nil
}

type fakeProcessor struct {
	mu      sync.Mutex
	calls   []string
	block   chan struct{}
	started chan struct{}
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{started: make(chan struct{}, 4)}
}

func (p *fakeProcessor) Process(audioFileLocation, sermonID string) {
	p.mu.Lock()
	p.calls = append(p.calls, sermonID)
	p.mu.Unlock()
	p.started <- struct{}{}
	if p.block != nil {
		<-p.block
	}
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestController(t *testing.T, device *fakeDevice, processor *fakeProcessor) (*Controller, repositories.SermonRepository) {
	t.Helper()
	repo := repository.NewSermonRepository(cache.NewMemoryStore(), "savedSermons", nil)
	ctrl := NewController(device, processor, repo, CaptureConfig{}, nil)
	return ctrl, repo
}

func TestStartRecording_PersistsPlaceholderBeforeCapture(t *testing.T) {
	device := &fakeDevice{granted: true, session: newFakeSession()}
	ctrl, repo := newTestController(t, device, newFakeProcessor())

	id, err := ctrl.StartRecording(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil {
		t.Fatal("placeholder record not persisted")
	}
	if stored.ProcessingStatus != entities.ProcessingStatusProcessing {
		t.Fatalf("expected processing status, got %s", stored.ProcessingStatus)
	}
	if stored.Transcript != "" {
		t.Fatalf("expected empty transcript, got %q", stored.Transcript)
	}

	status := ctrl.Status()
	if !status.IsRecording || status.IsPaused {
		t.Fatalf("unexpected status after start: %+v", status)
	}
}

func TestStartRecording_PermissionDenied(t *testing.T) {
	device := &fakeDevice{granted: false}
	ctrl, repo := newTestController(t, device, newFakeProcessor())

	_, err := ctrl.StartRecording(context.Background())
	if !errors.Is(err, entities.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	sermons, _ := repo.GetAll(context.Background())
	if len(sermons) != 0 {
		t.Fatalf("no record should exist after permission denial, got %d", len(sermons))
	}
	if status := ctrl.Status(); status.IsRecording {
		t.Fatal("controller should be idle after denial")
	}
}

func TestStartRecording_RejectsWhileActive(t *testing.T) {
	device := &fakeDevice{granted: true, session: newFakeSession()}
	ctrl, _ := newTestController(t, device, newFakeProcessor())

	if _, err := ctrl.StartRecording(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if _, err := ctrl.StartRecording(context.Background()); !errors.Is(err, entities.ErrRecorderBusy) {
		t.Fatalf("expected ErrRecorderBusy, got %v", err)
	}
}

func TestStartRecording_CaptureFailureMarksPlaceholder(t *testing.T) {
	device := &fakeDevice{granted: true, startErr: errors.New("device unavailable")}
	ctrl, repo := newTestController(t, device, newFakeProcessor())

	if _, err := ctrl.StartRecording(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}

	sermons, _ := repo.GetAll(context.Background())
	if len(sermons) != 1 {
		t.Fatalf("expected placeholder to remain, got %d records", len(sermons))
	}
	if sermons[0].ProcessingStatus != entities.ProcessingStatusError {
		t.Fatalf("expected placeholder marked error, got %s", sermons[0].ProcessingStatus)
	}
	if status := ctrl.Status(); status.IsRecording {
		t.Fatal("controller should be idle after failed start")
	}
}

func TestPauseResume(t *testing.T) {
	device := &fakeDevice{granted: true, session: newFakeSession()}
	ctrl, _ := newTestController(t, device, newFakeProcessor())

	if err := ctrl.PauseRecording(); !errors.Is(err, entities.ErrNotRecording) {
		t.Fatalf("pause while idle should fail, got %v", err)
	}

	if _, err := ctrl.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ctrl.ResumeRecording(); !errors.Is(err, entities.ErrNotPaused) {
		t.Fatalf("resume while recording should fail, got %v", err)
	}
	if err := ctrl.PauseRecording(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if status := ctrl.Status(); !status.IsPaused {
		t.Fatal("expected paused status")
	}
	if err := ctrl.PauseRecording(); !errors.Is(err, entities.ErrNotRecording) {
		t.Fatalf("double pause should fail, got %v", err)
	}
	if err := ctrl.ResumeRecording(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if status := ctrl.Status(); status.IsPaused {
		t.Fatal("expected resumed status")
	}
}

func TestPause_FailureKeepsState(t *testing.T) {
	session := newFakeSession()
	session.pauseErr = errors.New("signal failed")
	device := &fakeDevice{granted: true, session: session}
	ctrl, _ := newTestController(t, device, newFakeProcessor())

	if _, err := ctrl.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ctrl.PauseRecording(); err == nil {
		t.Fatal("expected pause to fail")
	}

	status := ctrl.Status()
	if !status.IsRecording || status.IsPaused {
		t.Fatalf("state machine corrupted by failed pause: %+v", status)
	}
}

func TestStopRecordingAndProcess_HandsOffExactlyOnce(t *testing.T) {
	session := newFakeSession()
	device := &fakeDevice{granted: true, session: session}
	processor := newFakeProcessor()
	processor.block = make(chan struct{})
	ctrl, repo := newTestController(t, device, processor)

	id, err := ctrl.StartRecording(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ctrl.StopRecordingAndProcess(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	// The stop call returns before the pipeline finishes.
	<-processor.started
	status := ctrl.Status()
	if status.IsRecording {
		t.Fatal("controller should be idle after stop")
	}
	if !status.IsProcessing {
		t.Fatal("processing indicator should be set while the pipeline runs")
	}

	stored, _ := repo.GetByID(context.Background(), id)
	if stored.AudioURL != "/tmp/audio.m4a" {
		t.Fatalf("audio location not persisted: %q", stored.AudioURL)
	}
	if stored.DurationMillis != 10000 {
		t.Fatalf("duration not persisted: %d", stored.DurationMillis)
	}
	if stored.ProcessingStatus != entities.ProcessingStatusProcessing {
		t.Fatalf("expected processing status, got %s", stored.ProcessingStatus)
	}

	close(processor.block)
	waitFor(t, func() bool { return !ctrl.Status().IsProcessing })

	if processor.callCount() != 1 {
		t.Fatalf("expected exactly one pipeline hand-off, got %d", processor.callCount())
	}
	if err := ctrl.StopRecordingAndProcess(context.Background()); !errors.Is(err, entities.ErrNoActiveRecording) {
		t.Fatalf("second stop should fail, got %v", err)
	}
}

func TestStopRecordingAndProcess_FinalizeFailure(t *testing.T) {
	session := newFakeSession()
	session.stopErr = errors.New("no output file")
	device := &fakeDevice{granted: true, session: session}
	processor := newFakeProcessor()
	ctrl, repo := newTestController(t, device, processor)

	id, err := ctrl.StartRecording(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ctrl.StopRecordingAndProcess(context.Background()); err == nil {
		t.Fatal("expected stop to fail")
	}

	stored, _ := repo.GetByID(context.Background(), id)
	if stored.ProcessingStatus != entities.ProcessingStatusError {
		t.Fatalf("expected error status, got %s", stored.ProcessingStatus)
	}
	if stored.ProcessingError == "" {
		t.Fatal("expected a descriptive processing error")
	}
	if processor.callCount() != 0 {
		t.Fatal("no pipeline run should be attempted after finalize failure")
	}
}

func TestWatchUpdates_UnexpectedCaptureFailure(t *testing.T) {
	session := newFakeSession()
	device := &fakeDevice{granted: true, session: session}
	ctrl, repo := newTestController(t, device, newFakeProcessor())

	id, err := ctrl.StartRecording(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	session.updates <- CaptureStatus{ElapsedMillis: 3000, IsActive: false, CanContinue: false}
	close(session.updates)

	waitFor(t, func() bool { return !ctrl.Status().IsRecording })

	stored, _ := repo.GetByID(context.Background(), id)
	if stored.ProcessingStatus != entities.ProcessingStatusError {
		t.Fatalf("expected error status after capture death, got %s", stored.ProcessingStatus)
	}
	if ctrl.Status().Error == "" {
		t.Fatal("expected controller error field to be set")
	}
}

func TestWatchUpdates_TracksDuration(t *testing.T) {
	session := newFakeSession()
	device := &fakeDevice{granted: true, session: session}
	ctrl, _ := newTestController(t, device, newFakeProcessor())

	if _, err := ctrl.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	session.updates <- CaptureStatus{ElapsedMillis: 4200, IsActive: true, CanContinue: true}
	waitFor(t, func() bool { return ctrl.Status().DurationMillis == 4200 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
