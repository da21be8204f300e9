package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/convert"
	"github.com/tubegrab/tubegrab/internal/model"
	"github.com/tubegrab/tubegrab/internal/platform"
)

const (
	// How often yt-dlp reports progress.
	progressInterval = 500 * time.Millisecond

	// Events are lossy snapshots; the buffer absorbs a slow consumer.
	eventBufferSize = 256

	jobIDPrefix = "job-"

	outputFilenameTemplate = "%(title)s.%(ext)s"
)

// Temp-file extensions yt-dlp leaves behind when interrupted.
var partialExtensions = []string{".part", ".ytdl"}

// Progress is the library-agnostic progress snapshot handed to the service by
// the runner.
type Progress struct {
	DownloadedBytes int64
	TotalBytes      int64
	Speed           string // human readable, empty if unknown
	ETASec          int    // -1 if unknown
	Title           string // video title once known
}

// runFunc performs the media download and returns the path of the downloaded
// file. Swappable in tests so no yt-dlp binary is needed.
type runFunc func(ctx context.Context, req model.DownloadRequest, outputTemplate string, onProgress func(Progress)) (string, error)

// Service is the download/convert orchestrator. One job at a time.
type Service struct {
	mu        sync.RWMutex
	job       *model.Job
	cancelJob context.CancelFunc

	events    chan model.JobEvent
	converter *convert.Converter
	logger    *zap.Logger
	run       runFunc
}

// NewService creates the orchestrator.
func NewService(converter *convert.Converter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		events:    make(chan model.JobEvent, eventBufferSize),
		converter: converter,
		logger:    logger,
	}
	s.run = s.runYTDLP
	return s
}

// Events returns the channel carrying job progress/status snapshots. The
// consumer must keep draining it while a job is active.
func (s *Service) Events() <-chan model.JobEvent {
	return s.events
}

// Start begins a new download job. Fails immediately (before anything is
// written) when a job is already active, the request is malformed, the
// destination cannot be created, or an MP3 request has no converter.
func (s *Service) Start(req model.DownloadRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// A busy service rejects before any side effect, converter lookup
	// and directory creation included.
	s.mu.RLock()
	busy := s.job != nil && !s.job.Status.IsFinished()
	s.mu.RUnlock()
	if busy {
		return nil, ErrJobActive
	}

	// MP3 requires the converter; refuse up front so no partial file appears.
	if req.Format == model.FormatMP3 {
		if _, err := s.converter.Resolve(); err != nil {
			return nil, err
		}
	}

	if err := platform.CreateDirectoryIfNotExists(req.Dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiskWrite, err)
	}

	s.mu.Lock()
	if s.job != nil && !s.job.Status.IsFinished() {
		s.mu.Unlock()
		return nil, ErrJobActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &model.Job{
		ID:        generateJobID(),
		Request:   req,
		Status:    model.JobStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	s.job = job
	s.cancelJob = cancel
	snapshot := *job
	s.mu.Unlock()

	s.logger.Info("job started",
		zap.String("id", job.ID),
		zap.String("url", req.URL),
		zap.String("format", string(req.Format)),
		zap.String("quality", string(req.Quality)))

	go s.runJob(ctx, cancel, req)

	return &snapshot, nil
}

// Cancel stops the active job. The external library call terminates through
// context cancellation.
func (s *Service) Cancel() error {
	s.mu.Lock()
	if s.job == nil || s.job.Status.IsFinished() {
		s.mu.Unlock()
		return fmt.Errorf("no active job")
	}
	s.job.Status = model.JobStatusStopping
	cancel := s.cancelJob
	ev := s.eventLocked("Stopping")
	s.mu.Unlock()

	s.emit(ev)
	if cancel != nil {
		cancel()
	}
	return nil
}

// Current returns a snapshot of the active or most recent job.
func (s *Service) Current() (model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.job == nil {
		return model.Job{}, false
	}
	return *s.job, true
}

// runJob drives one job through download and, for audio, conversion.
func (s *Service) runJob(ctx context.Context, cancel context.CancelFunc, req model.DownloadRequest) {
	defer cancel()

	s.setStatus(model.JobStatusStarting, "Starting")
	s.setStatus(model.JobStatusDownloading, "Downloading")

	outputTemplate := filepath.Join(req.Dir, outputFilenameTemplate)
	outputPath, err := s.run(ctx, req, outputTemplate, s.onDownloadProgress)
	if err != nil {
		s.removePartials(req.Dir)
		s.finish("", err)
		return
	}
	if outputPath == "" {
		s.finish("", ErrNoOutputFile)
		return
	}

	if req.Format == model.FormatMP3 {
		s.setStatus(model.JobStatusConverting, "Converting to MP3")

		mp3Path := s.audioOutputPath(req.Dir, outputPath)
		convErr := s.converter.ToMP3(ctx, outputPath, mp3Path, s.onConvertProgress)

		// The intermediate download never survives an audio job.
		os.Remove(outputPath)

		if convErr != nil {
			s.finish("", convErr)
			return
		}
		outputPath = mp3Path
	}

	s.finish(outputPath, nil)
}

// removePartials deletes downloader temp artifacts (.part/.ytdl) left in the
// destination by an interrupted or failed download.
func (s *Service) removePartials(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, ext := range partialExtensions {
			if strings.HasSuffix(entry.Name(), ext) {
				if rmErr := os.Remove(filepath.Join(dir, entry.Name())); rmErr != nil {
					s.logger.Warn("failed to remove partial file",
						zap.String("file", entry.Name()), zap.Error(rmErr))
				}
				break
			}
		}
	}
}

// audioOutputPath names the MP3 after the video title when it is known,
// falling back to swapping the downloaded file's extension.
func (s *Service) audioOutputPath(dir, downloadPath string) string {
	s.mu.RLock()
	title := ""
	if s.job != nil {
		title = s.job.Title
	}
	s.mu.RUnlock()

	if title != "" {
		return filepath.Join(dir, platform.SanitizeFilename(title)+".mp3")
	}
	return convert.OutputPathFor(downloadPath)
}

// runYTDLP performs the real download via the go-ytdlp library.
func (s *Service) runYTDLP(ctx context.Context, req model.DownloadRequest, outputTemplate string, onProgress func(Progress)) (string, error) {
	dl := ytdlp.New().
		Format(FormatSelector(req)).
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Output(outputTemplate)

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		p := Progress{
			DownloadedBytes: int64(update.DownloadedBytes),
			TotalBytes:      int64(update.TotalBytes),
			ETASec:          -1,
		}
		if !update.Started.IsZero() {
			elapsed := time.Since(update.Started)
			if elapsed.Seconds() > 0 {
				bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
				p.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
			}
		}
		if eta := update.ETA(); eta > 0 {
			p.ETASec = int(eta.Seconds())
		}
		if update.Info != nil && update.Info.Title != nil {
			p.Title = *update.Info.Title
		}
		onProgress(p)
	})

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return "", classify(err, stderr)
	}

	if result != nil {
		info, infoErr := result.GetExtractedInfo()
		if infoErr == nil && len(info) > 0 && info[0].Filename != nil {
			return *info[0].Filename, nil
		}
	}
	return "", nil
}

// onDownloadProgress maps library progress into the job and emits an event.
func (s *Service) onDownloadProgress(p Progress) {
	s.mu.Lock()
	job := s.job
	if job == nil {
		s.mu.Unlock()
		return
	}
	if p.TotalBytes > 0 {
		percent := float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
		job.Percent = int(percent)
		job.Progress = percent / 100.0
	}
	job.Speed = p.Speed
	job.ETASec = p.ETASec
	if p.Title != "" && job.Title == "" {
		job.Title = p.Title
	}
	ev := s.eventLocked("Downloading")
	s.mu.Unlock()

	s.emit(ev)
}

// onConvertProgress reports converter percentages for the converting stage.
func (s *Service) onConvertProgress(percent int) {
	s.mu.Lock()
	job := s.job
	if job == nil {
		s.mu.Unlock()
		return
	}
	job.Percent = percent
	job.Progress = float64(percent) / 100.0
	ev := s.eventLocked("Converting to MP3")
	s.mu.Unlock()

	s.emit(ev)
}

// setStatus transitions the job and emits an event.
func (s *Service) setStatus(status model.JobStatus, message string) {
	s.mu.Lock()
	job := s.job
	if job == nil || job.Status.IsFinished() {
		s.mu.Unlock()
		return
	}
	job.Status = status
	ev := s.eventLocked(message)
	s.mu.Unlock()

	s.emit(ev)
}

// finish records the terminal state of the job.
func (s *Service) finish(outputPath string, err error) {
	s.mu.Lock()
	job := s.job
	if job == nil {
		s.mu.Unlock()
		return
	}

	message := ""
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		job.Status = model.JobStatusStopped
		message = "Stopped"
	case err != nil:
		job.Status = model.JobStatusError
		job.LastError = err.Error()
		message = "Failed"
	default:
		job.Status = model.JobStatusCompleted
		job.Progress = 1.0
		job.Percent = 100
		job.OutputPath = outputPath
		message = "Completed"
	}
	job.FinishedAt = time.Now()
	ev := s.eventLocked(message)
	id := job.ID
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("job failed", zap.String("id", id), zap.Error(err))
	} else {
		s.logger.Info("job finished", zap.String("id", id), zap.String("output", outputPath))
	}

	s.emitFinal(ev)
}

// eventLocked builds a JobEvent snapshot; callers must hold s.mu.
func (s *Service) eventLocked(message string) model.JobEvent {
	job := s.job
	return model.JobEvent{
		JobID:      job.ID,
		Status:     job.Status,
		Percent:    job.Percent,
		Speed:      job.Speed,
		ETASec:     job.ETASec,
		Title:      job.Title,
		Message:    message,
		Err:        job.LastError,
		OutputPath: job.OutputPath,
	}
}

// emit delivers an event without ever blocking the pipeline; when the buffer
// is full the oldest information is simply superseded by later snapshots.
func (s *Service) emit(ev model.JobEvent) {
	select {
	case s.events <- ev:
	default:
	}
}

// emitFinal delivers a terminal event unconditionally. Nothing supersedes a
// terminal snapshot, so it must not be dropped; the job goroutine is exiting
// and may block here until the consumer catches up.
func (s *Service) emitFinal(ev model.JobEvent) {
	s.events <- ev
}

// generateJobID generates a unique job ID using UUID v7 for better uniqueness
// and time ordering.
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(jobIDPrefix+"%d", time.Now().UnixNano())
	}
	return jobIDPrefix + id.String()
}
