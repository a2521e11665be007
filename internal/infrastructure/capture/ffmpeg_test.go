package capture

import (
	"context"
	"testing"

	"github.com/huytrandev/sermon-scribe/internal/usecase/recording"
)

func TestRequestPermission_MissingBinary(t *testing.T) {
	device := NewFFmpegDevice("definitely-not-a-real-recorder", nil)

	granted, err := device.RequestPermission(context.Background())
	if err != nil {
		t.Fatalf("permission check should not error: %v", err)
	}
	if granted {
		t.Fatal("missing binary should read as denied")
	}
}

func TestStart_MissingBinary(t *testing.T) {
	device := NewFFmpegDevice("definitely-not-a-real-recorder", nil)

	_, err := device.Start(context.Background(), recording.CaptureConfig{OutputDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected start to fail for missing binary")
	}
}
