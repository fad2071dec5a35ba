package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ErrFileExists is returned when the target exists and neither
// SkipExisting nor Overwrite is set.
var ErrFileExists = errors.New("file already exists")

// DownloadOptions controls what happens when the output file exists.
type DownloadOptions struct {
	// SkipExisting leaves an existing file untouched and reports it skipped.
	SkipExisting bool
	// Overwrite replaces an existing file. Ignored when SkipExisting is set.
	Overwrite bool
}

// FeedDownload always refreshes the feed.
var FeedDownload = DownloadOptions{Overwrite: true}

// DownloadResult reports the outcome of one download.
type DownloadResult struct {
	Path    string
	Skipped bool
	Bytes   int
}

// maxDownload caps a single response body.
const maxDownload = 64 << 20

// Download fetches url into outputPath. JSON bodies written to a .json
// path are pretty-printed with two-space indentation; bodies that fail to
// parse are written as received.
func (in *Ingester) Download(ctx context.Context, url, outputPath string, opts DownloadOptions) (DownloadResult, error) {
	res := DownloadResult{Path: outputPath}

	if _, err := os.Stat(outputPath); err == nil {
		if opts.SkipExisting {
			res.Skipped = true
			return res, nil
		}
		if !opts.Overwrite {
			return res, fmt.Errorf("%w at %s and overwrite is disabled", ErrFileExists, outputPath)
		}
	}

	if err := in.limiter.Wait(ctx); err != nil {
		return res, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return res, err
	}
	req.Header.Set("User-Agent", in.userAgent)

	resp, err := in.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return res, fmt.Errorf("fetch %s: HTTP status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", url, err)
	}

	if strings.HasSuffix(outputPath, ".json") {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			body = pretty.Bytes()
		}
	}

	if err := writeFileAtomic(outputPath, body); err != nil {
		return res, err
	}
	res.Bytes = len(body)
	return res, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
