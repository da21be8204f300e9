package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/tubegrab/tubegrab/internal/convert"
	"github.com/tubegrab/tubegrab/internal/model"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(convert.New("", nil), nil)
}

func testRequest(dir string) model.DownloadRequest {
	return model.DownloadRequest{
		URL:     testURL,
		Format:  model.FormatMP4,
		Quality: model.QualityBest,
		Dir:     dir,
	}
}

// waitForTerminal drains the event channel until the job reaches a finished
// state.
func waitForTerminal(t *testing.T, s *Service) model.JobEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Status.IsFinished() {
				return ev
			}
		case <-deadline:
			t.Fatal("Timed out waiting for terminal job event")
		}
	}
}

// writeFakeFFmpeg creates an executable that ignores its flags and creates
// the file named by its last argument, standing in for a real ffmpeg.
func writeFakeFFmpeg(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Fake converter script requires a POSIX shell")
	}
	path := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\n: > \"$out\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake ffmpeg: %v", err)
	}
	return path
}

func TestStartRejectsInvalidRequest(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name string
		req  model.DownloadRequest
	}{
		{"empty url", model.DownloadRequest{Format: model.FormatMP4, Quality: model.QualityBest, Dir: t.TempDir()}},
		{"bad scheme", model.DownloadRequest{URL: "not a url", Format: model.FormatMP4, Quality: model.QualityBest, Dir: t.TempDir()}},
		{"bad format", model.DownloadRequest{URL: testURL, Format: "avi", Quality: model.QualityBest, Dir: t.TempDir()}},
		{"bad quality", model.DownloadRequest{URL: testURL, Format: model.FormatMP4, Quality: "ultra", Dir: t.TempDir()}},
		{"no dir", model.DownloadRequest{URL: testURL, Format: model.FormatMP4, Quality: model.QualityBest}},
	}

	for _, test := range tests {
		if _, err := s.Start(test.req); err == nil {
			t.Errorf("%s: expected Start to fail", test.name)
		}
	}

	if _, ok := s.Current(); ok {
		t.Error("Rejected requests should not leave a job behind")
	}
}

func TestStartRejectsSecondJob(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	release := make(chan struct{})
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		<-release
		path := filepath.Join(dir, "video.mp4")
		os.WriteFile(path, []byte("x"), 0o644)
		return path, nil
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("First Start failed: %v", err)
	}
	if _, err := s.Start(testRequest(dir)); !errors.Is(err, ErrJobActive) {
		t.Errorf("Second Start = %v, expected ErrJobActive", err)
	}

	close(release)
	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusCompleted {
		t.Errorf("Job finished with status %s, expected %s", ev.Status, model.JobStatusCompleted)
	}

	// A finished job no longer blocks new ones.
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		return filepath.Join(dir, "video.mp4"), nil
	}
	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Errorf("Start after completion failed: %v", err)
	}
	waitForTerminal(t, s)
}

func TestMP3RefusedWhenConverterMissing(t *testing.T) {
	dir := t.TempDir()
	s := NewService(convert.New("/nonexistent/ffmpeg", nil), nil)

	ran := false
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		ran = true
		return "", nil
	}

	req := testRequest(dir)
	req.Format = model.FormatMP3
	_, err := s.Start(req)
	if !errors.Is(err, convert.ErrFFmpegNotFound) {
		t.Fatalf("Start = %v, expected ErrFFmpegNotFound", err)
	}
	if ran {
		t.Error("Download must not run when the converter is missing")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("Failed to read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no output files, found %d", len(entries))
	}
}

func TestProgressEventsReachConsumer(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		onProgress(Progress{DownloadedBytes: 25, TotalBytes: 100, Speed: "1.0MB/s", ETASec: 30, Title: "Test Video"})
		onProgress(Progress{DownloadedBytes: 100, TotalBytes: 100, Speed: "1.2MB/s", ETASec: 0, Title: "Test Video"})
		path := filepath.Join(dir, "Test_Video.mp4")
		os.WriteFile(path, []byte("x"), 0o644)
		return path, nil
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sawDownloading := false
	var terminal model.JobEvent
	deadline := time.After(5 * time.Second)
	for terminal.JobID == "" {
		select {
		case ev := <-s.Events():
			if ev.Status == model.JobStatusDownloading && ev.Percent == 25 {
				sawDownloading = true
				if ev.Title != "Test Video" {
					t.Errorf("Event title = %q, expected Test Video", ev.Title)
				}
				if ev.Speed != "1.0MB/s" {
					t.Errorf("Event speed = %q", ev.Speed)
				}
			}
			if ev.Status.IsFinished() {
				terminal = ev
			}
		case <-deadline:
			t.Fatal("Timed out waiting for events")
		}
	}

	if !sawDownloading {
		t.Error("Never saw a 25% downloading event")
	}
	if terminal.Status != model.JobStatusCompleted {
		t.Errorf("Terminal status = %s, expected %s", terminal.Status, model.JobStatusCompleted)
	}
	if terminal.Percent != 100 {
		t.Errorf("Terminal percent = %d, expected 100", terminal.Percent)
	}
	if !strings.HasSuffix(terminal.OutputPath, "Test_Video.mp4") {
		t.Errorf("Terminal OutputPath = %q", terminal.OutputPath)
	}
}

func TestStartWhileBusyHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	release := make(chan struct{})
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		<-release
		path := filepath.Join(dir, "video.mp4")
		os.WriteFile(path, []byte("x"), 0o644)
		return path, nil
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("First Start failed: %v", err)
	}

	// A rejected Start must not create its destination directory.
	otherDir := filepath.Join(t.TempDir(), "never-created")
	if _, err := s.Start(testRequest(otherDir)); !errors.Is(err, ErrJobActive) {
		t.Fatalf("Second Start = %v, expected ErrJobActive", err)
	}
	if _, err := os.Stat(otherDir); !os.IsNotExist(err) {
		t.Errorf("Rejected Start created the destination directory, stat err = %v", err)
	}

	close(release)
	waitForTerminal(t, s)
}

func TestTerminalEventSurvivesFullBuffer(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		// Flood the buffer while the consumer is not draining.
		for i := 0; i < eventBufferSize+50; i++ {
			onProgress(Progress{DownloadedBytes: int64(i), TotalBytes: 1000})
		}
		path := filepath.Join(dir, "video.mp4")
		os.WriteFile(path, []byte("x"), 0o644)
		return path, nil
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusCompleted {
		t.Errorf("Terminal status = %s, expected %s", ev.Status, model.JobStatusCompleted)
	}
}

func TestFailedDownloadRemovesPartialFiles(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	partial := filepath.Join(dir, "video.mp4.part")
	fragment := filepath.Join(dir, "video.ytdl")
	keeper := filepath.Join(dir, "other.mp4")
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		for _, path := range []string{partial, fragment, keeper} {
			if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
				return "", err
			}
		}
		return "", ErrNetwork
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusError {
		t.Fatalf("Status = %s, expected error", ev.Status)
	}

	for _, path := range []string{partial, fragment} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Partial artifact %s should have been removed, stat err = %v", filepath.Base(path), err)
		}
	}
	if _, err := os.Stat(keeper); err != nil {
		t.Errorf("Unrelated file should survive cleanup: %v", err)
	}
}

func TestCanceledDownloadRemovesPartialFiles(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	partial := filepath.Join(dir, "video.webm.part")
	started := make(chan struct{})
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		if err := os.WriteFile(partial, []byte("x"), 0o644); err != nil {
			return "", err
		}
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-started

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusStopped {
		t.Fatalf("Status = %s, expected stopped", ev.Status)
	}
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Errorf("Partial file should not survive a cancel, stat err = %v", err)
	}
}

func TestCancelStopsActiveJob(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	started := make(chan struct{})
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-started

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusStopped {
		t.Errorf("Status after cancel = %s, expected %s", ev.Status, model.JobStatusStopped)
	}

	job, ok := s.Current()
	if !ok || job.Status != model.JobStatusStopped {
		t.Errorf("Current() = %v, %v; expected stopped job", job.Status, ok)
	}
}

func TestCancelWithoutJobFails(t *testing.T) {
	s := newTestService(t)
	if err := s.Cancel(); err == nil {
		t.Error("Cancel with no job should fail")
	}
}

func TestRunnerErrorMarksJobFailed(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		return "", ErrNetwork
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusError {
		t.Errorf("Status = %s, expected %s", ev.Status, model.JobStatusError)
	}
	if !strings.Contains(ev.Err, "network") {
		t.Errorf("Event error = %q, expected network failure", ev.Err)
	}
}

func TestMissingOutputPathMarksJobFailed(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t)

	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		return "", nil
	}

	if _, err := s.Start(testRequest(dir)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusError {
		t.Errorf("Status = %s, expected %s", ev.Status, model.JobStatusError)
	}
}

func TestAudioJobRemovesIntermediateFile(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeFFmpeg(t, t.TempDir())
	s := NewService(convert.New(ffmpeg, nil), nil)

	intermediate := filepath.Join(dir, "song.webm")
	s.run = func(ctx context.Context, req model.DownloadRequest, tmpl string, onProgress func(Progress)) (string, error) {
		if err := os.WriteFile(intermediate, []byte("audio"), 0o644); err != nil {
			return "", err
		}
		return intermediate, nil
	}

	req := testRequest(dir)
	req.Format = model.FormatMP3
	if _, err := s.Start(req); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForTerminal(t, s)
	if ev.Status != model.JobStatusCompleted {
		t.Fatalf("Status = %s (err %q), expected completed", ev.Status, ev.Err)
	}

	mp3 := filepath.Join(dir, "song.mp3")
	if ev.OutputPath != mp3 {
		t.Errorf("OutputPath = %q, expected %q", ev.OutputPath, mp3)
	}
	if _, err := os.Stat(mp3); err != nil {
		t.Errorf("Expected MP3 output to exist: %v", err)
	}
	if _, err := os.Stat(intermediate); !os.IsNotExist(err) {
		t.Errorf("Intermediate file should have been removed, stat err = %v", err)
	}
}
