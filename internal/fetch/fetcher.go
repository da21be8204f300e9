package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/tubegrab/tubegrab/internal/model"
)

// DefaultFetchTimeout bounds one metadata request.
const DefaultFetchTimeout = 60 * time.Second

// runFunc executes the metadata dump and returns stdout/stderr. Swappable in
// tests so no yt-dlp binary is needed.
type runFunc func(ctx context.Context, rawURL string) (stdout, stderr string, err error)

// Fetcher retrieves video metadata for a URL.
type Fetcher struct {
	timeout time.Duration
	logger  *zap.Logger
	run     runFunc
}

// New creates a metadata fetcher.
func New(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		logger:  logger,
	}
	f.run = f.runYTDLP
	return f
}

// SetTimeout sets the timeout for metadata requests.
func (f *Fetcher) SetTimeout(timeout time.Duration) {
	f.timeout = timeout
}

// Fetch resolves the URL into metadata, or fails with a classified error
// (unsupported video, unreachable, no formats).
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.VideoMetadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	stdout, stderr, runErr := f.run(ctx, rawURL)
	if runErr != nil && stdout == "" {
		classified := classify(runErr, stderr)
		f.logger.Warn("metadata fetch failed",
			zap.String("url", rawURL),
			zap.Error(classified))
		return nil, classified
	}

	meta, err := parseMetadata(stdout)
	if err != nil {
		return nil, err
	}

	f.logger.Info("metadata fetched",
		zap.String("url", rawURL),
		zap.String("title", meta.Title),
		zap.Int("formats", len(meta.Formats)))
	return meta, nil
}

// runYTDLP performs the real yt-dlp JSON dump.
func (f *Fetcher) runYTDLP(ctx context.Context, rawURL string) (string, string, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoPlaylist()

	res, err := dl.Run(ctx, rawURL)
	if res != nil {
		return res.Stdout, res.Stderr, err
	}
	return "", "", err
}
