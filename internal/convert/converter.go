package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FFmpeg settings for MP3 extraction
const (
	AudioCodec   = "libmp3lame"
	AudioBitrate = "192k"

	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"

	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"

	ProgressPipeTarget = "pipe:2"
	ProgressTimePrefix = "out_time_us="
)

// ErrFFmpegNotFound means no usable ffmpeg binary could be located. Audio
// conversion is simply unavailable; video downloads keep working.
var ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

// FindFFmpeg returns the path to the ffmpeg binary. A non-empty customPath is
// tried first as a file path, then as a PATH lookup.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: %q", ErrFFmpegNotFound, customPath)
	}
	if p, err := exec.LookPath(FFmpegCommand); err == nil {
		return p, nil
	}
	return "", ErrFFmpegNotFound
}

// FindFFprobe returns the path to the ffprobe binary in PATH.
func FindFFprobe() (string, error) {
	if p, err := exec.LookPath(FFprobeCommand); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("ffprobe binary not found")
}

// Converter extracts MP3 audio from downloaded media files.
type Converter struct {
	ffmpegPath string        // explicit path; empty means look up in PATH
	pathFunc   func() string // dynamic path source, re-read on every Resolve
	logger     *zap.Logger
}

// New creates a converter. ffmpegPath may be empty to use PATH discovery.
func New(ffmpegPath string, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{ffmpegPath: ffmpegPath, logger: logger}
}

// NewDynamic creates a converter that re-reads the ffmpeg path on every
// resolution, so a path changed in settings applies to the next job without
// a restart.
func NewDynamic(pathFunc func() string, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{pathFunc: pathFunc, logger: logger}
}

// Resolve locates the ffmpeg binary this converter would run.
func (c *Converter) Resolve() (string, error) {
	path := c.ffmpegPath
	if c.pathFunc != nil {
		path = c.pathFunc()
	}
	return FindFFmpeg(path)
}

// BuildArgs builds the ffmpeg command arguments for MP3 extraction.
func BuildArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",              // Drop the video stream
		"-c:a", AudioCodec, // Audio codec
		"-b:a", AudioBitrate, // Audio bitrate
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// ToMP3 converts inputPath into outputPath. onProgress (optional) receives
// 0-100 as the conversion advances. A partial output file is removed on
// failure or cancellation.
func (c *Converter) ToMP3(ctx context.Context, inputPath, outputPath string, onProgress func(percent int)) error {
	ffmpeg, err := c.Resolve()
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	duration, err := c.probeDuration(ctx, inputPath)
	if err != nil {
		// Progress scaling is best-effort; convert anyway.
		c.logger.Warn("failed to probe input duration",
			zap.String("input", inputPath),
			zap.Error(err))
		duration = 0
	}

	cmd := exec.CommandContext(ctx, ffmpeg, BuildArgs(inputPath, outputPath)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		monitorProgress(stderr, duration, onProgress)
	}()

	waitErr := cmd.Wait()
	<-done

	if ctx.Err() != nil {
		os.Remove(outputPath)
		return ctx.Err()
	}
	if waitErr != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg failed: %w", waitErr)
	}

	if onProgress != nil {
		onProgress(100)
	}
	c.logger.Info("conversion completed",
		zap.String("input", inputPath),
		zap.String("output", outputPath))
	return nil
}

// probeDuration gets the duration of a media file in seconds using ffprobe.
func (c *Converter) probeDuration(ctx context.Context, filePath string) (float64, error) {
	ffprobe, err := FindFFprobe()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// monitorProgress parses ffmpeg -progress output lines (out_time_us=123456)
// and reports percentages scaled to totalDuration.
func monitorProgress(r io.Reader, totalDuration float64, onProgress func(percent int)) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ProgressTimePrefix) {
			continue
		}

		timeMicroseconds, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil {
			continue
		}

		if totalDuration <= 0 || onProgress == nil {
			continue
		}

		progress := float64(timeMicroseconds) / 1e6 / totalDuration
		if progress > 1.0 {
			progress = 1.0
		}
		onProgress(int(progress * 100))
	}
}

// OutputPathFor derives the .mp3 output path next to the intermediate file.
func OutputPathFor(inputPath string) string {
	if idx := strings.LastIndex(inputPath, "."); idx > 0 {
		return inputPath[:idx] + ".mp3"
	}
	return inputPath + ".mp3"
}
