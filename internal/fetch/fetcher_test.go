package fetch

import (
	"context"
	"errors"
	"testing"
)

func TestFetchInvalidURL(t *testing.T) {
	f := New(nil)

	for _, raw := range []string{"", "not a url", "missing-scheme.com/x"} {
		if _, err := f.Fetch(context.Background(), raw); err == nil {
			t.Errorf("Expected error for URL %q, got nil", raw)
		}
	}
}

func TestFetchUsesRunner(t *testing.T) {
	f := New(nil)
	f.run = func(_ context.Context, _ string) (string, string, error) {
		return sampleDump, "", nil
	}

	meta, err := f.Fetch(context.Background(), "https://youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if meta.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got '%s'", meta.Title)
	}
}

func TestFetchClassifiesUnsupported(t *testing.T) {
	f := New(nil)
	f.run = func(_ context.Context, _ string) (string, string, error) {
		return "", "ERROR: [youtube] abc: Private video. Sign in if you've been granted access", errors.New("exit status 1")
	}

	_, err := f.Fetch(context.Background(), "https://youtube.com/watch?v=abc")
	if !errors.Is(err, ErrUnsupportedVideo) {
		t.Errorf("Expected ErrUnsupportedVideo, got %v", err)
	}
}

func TestFetchClassifiesUnreachable(t *testing.T) {
	f := New(nil)
	f.run = func(_ context.Context, _ string) (string, string, error) {
		return "", "ERROR: Unable to download webpage: <urlopen error>", errors.New("exit status 1")
	}

	_, err := f.Fetch(context.Background(), "https://example.com/watch?v=abc")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable, got %v", err)
	}
}

func TestClassifyPassThrough(t *testing.T) {
	original := errors.New("something else entirely")
	if got := classify(original, "unrelated stderr"); !errors.Is(got, original) {
		t.Errorf("Expected unknown errors to pass through, got %v", got)
	}
	if classify(nil, "") != nil {
		t.Error("Expected nil for nil error")
	}
}
