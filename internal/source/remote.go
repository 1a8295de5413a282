package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/utils"
)

// DefaultFileID is the Google Drive id of the published student habits archive.
const DefaultFileID = "16wVMAByC-TqBOKzybD2MRxEiZ41bzq5u"

const driveDownloadURL = "https://drive.google.com/uc"

// DriveURL resolves a Google Drive file id to its direct download URL.
func DriveURL(fileID string) string {
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", fileID)
	return driveDownloadURL + "?" + q.Encode()
}

// RetryPolicy controls download retries on network errors, 429 and 5xx.
// MaxAttempts <= 1 disables retries.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Remote downloads an archive once and reuses the local copy afterwards.
type Remote struct {
	// FileID is a Google Drive id; ignored when URL is set.
	FileID string
	URL    string
	// Dest is the local download path; defaults to dataset.zip.
	Dest string
	// Force re-downloads even if Dest exists.
	Force  bool
	Client *http.Client
	Retry  RetryPolicy
	Logger *slog.Logger
}

func (r *Remote) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Remote) dest() string {
	if r.Dest == "" {
		return "dataset.zip"
	}
	return r.Dest
}

// ResolvedURL returns the URL that will be fetched.
func (r *Remote) ResolvedURL() string {
	if r.URL != "" {
		return r.URL
	}
	id := r.FileID
	if id == "" {
		id = DefaultFileID
	}
	return DriveURL(id)
}

func (r *Remote) Open(ctx context.Context) (*Archive, error) {
	path, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Local{Path: path}.Open(ctx)
}

// Fetch makes sure the archive exists at Dest and returns its path.
// An existing file is reused unless Force is set.
func (r *Remote) Fetch(ctx context.Context) (string, error) {
	dest := r.dest()
	if !r.Force && utils.FileExists(dest) {
		r.logger().Info("reusing downloaded archive", "path", dest)
		return dest, nil
	}
	if err := r.Download(ctx, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Download fetches the archive into dest through a temp file and an atomic rename.
func (r *Remote) Download(ctx context.Context, dest string) error {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	target := r.ResolvedURL()
	maxAttempts := r.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := r.Retry.BaseDelay
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		lastErr = r.downloadOnce(ctx, client, target, dest)
		if lastErr == nil {
			r.logger().Info("downloaded archive", "url", target, "path", dest, "took", time.Since(start).Round(time.Millisecond))
			return nil
		}
		if !retryable(lastErr) || attempt == maxAttempts {
			break
		}
		sleep := withJitter(backoff)
		if r.Retry.MaxDelay > 0 && sleep > r.Retry.MaxDelay {
			sleep = r.Retry.MaxDelay
		}
		r.logger().Warn("download failed, retrying", "attempt", attempt, "max", maxAttempts, "in", sleep, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		backoff *= 2
	}
	return lastErr
}

func (r *Remote) downloadOnce(ctx context.Context, client *http.Client, target, dest string) error {
	body, err := r.get(ctx, client, target)
	if err != nil {
		return err
	}
	defer body.Close()
	br := bufio.NewReader(body)
	if isHTML(br) {
		// Drive serves a confirmation page for files it cannot virus-scan.
		confirm, ok := withConfirm(target)
		if !ok {
			return fmt.Errorf("%w: %s returned an HTML page", ErrNotArchive, target)
		}
		body.Close()
		r.logger().Debug("drive confirmation page, retrying with confirm", "url", confirm)
		body, err = r.get(ctx, client, confirm)
		if err != nil {
			return err
		}
		defer body.Close()
		br = bufio.NewReader(body)
		if isHTML(br) {
			return fmt.Errorf("%w: %s returned an HTML page", ErrNotArchive, confirm)
		}
	}
	return writeAtomic(dest, br)
}

func (r *Remote) get(ctx context.Context, client *http.Client, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "habitlens-cli")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &NetworkError{URL: target, StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(b)))}
	}
	return resp.Body, nil
}

func isHTML(br *bufio.Reader) bool {
	head, _ := br.Peek(512)
	return strings.HasPrefix(http.DetectContentType(head), "text/html")
}

// withConfirm adds confirm=t to Drive download URLs.
func withConfirm(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil || !strings.HasSuffix(u.Hostname(), "google.com") {
		return "", false
	}
	q := u.Query()
	if q.Get("confirm") != "" {
		return "", false
	}
	q.Set("confirm", "t")
	u.RawQuery = q.Encode()
	return u.String(), true
}

func writeAtomic(dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &NetworkError{URL: dest, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	if ne.StatusCode == 0 {
		return true
	}
	return ne.StatusCode == http.StatusTooManyRequests || (ne.StatusCode >= 500 && ne.StatusCode <= 599)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	// ±10% jitter
	j := time.Duration(rand.Int63n(int64(d)/5+1)) - d/10
	return d + j
}
