package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/docarc/internal/model"
	"github.com/nao1215/docarc/internal/transport"
)

// copyBufSize is the streaming buffer size for payload writes.
const copyBufSize = 8 * 1024

// tempSuffix marks an in-flight download on disk.
const tempSuffix = ".tmp"

// Downloader fetches discovered files into the archive directory.
//
// Design decision: A payload only ever reaches its final name through an
// atomic rename of a fully written and verified temp file. Any file found
// under the final name is therefore trustworthy enough to verify in place
// instead of re-fetching, which is what makes interrupted runs cheap to
// resume.
type Downloader struct {
	client  *transport.Client
	dir     string
	minSize int64
	logger  *slog.Logger

	// stateMu serializes every archive state mutation, including record
	// fields. Each record belongs to exactly one in-flight fetch, but
	// the caller may marshal the whole state (checkpoint saves) while
	// workers are mid-fetch, so record writes need the lock too.
	stateMu sync.Locker
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithStateLock shares the caller's lock for archive state mutations, so
// the caller can hold the same lock while saving the state.
func WithStateLock(l sync.Locker) Option {
	return func(d *Downloader) {
		d.stateMu = l
	}
}

// New creates a Downloader writing payloads under dir.
func New(client *transport.Client, dir string, minSize int64, logger *slog.Logger, opts ...Option) *Downloader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Downloader{client: client, dir: dir, minSize: minSize, logger: logger, stateMu: &sync.Mutex{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the download directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// TargetPath returns where a record's payload lives on disk. Payloads are
// grouped per dataset so a directory listing mirrors the remote layout.
func (d *Downloader) TargetPath(rec *model.FileRecord) string {
	return filepath.Join(d.dir, fmt.Sprintf("dataset%d", rec.DatasetID), rec.Filename)
}

// Fetch brings one record's payload onto disk, updating the record's
// status in state. The guard ladder runs cheapest check first:
//
//  1. Already verified and still on disk: nothing to do.
//  2. A file already under the final name: verify in place, mark Success.
//  3. Otherwise fetch to a temp file, verify, rename, mark Success.
//
// Any transport or verification failure, a refusal from the origin
// included, marks the record Failed and removes the partial payload; the
// record stays eligible for retry on a later run. Fetch returns an error
// only for faults that should stop the run: cancellation and filesystem
// trouble.
func (d *Downloader) Fetch(ctx context.Context, state *model.ArchiveState, rec *model.FileRecord, referer string) error {
	target := d.TargetPath(rec)

	if rec.Downloaded() {
		if _, err := os.Stat(rec.LocalPath); err == nil {
			d.touch(rec)
			return nil
		}
		d.logger.Warn("verified payload missing from disk, re-fetching",
			"url", rec.URL, "path", rec.LocalPath)
	}

	if _, err := os.Stat(target); err == nil {
		if checksum, size, err := verifyFile(target, d.minSize); err == nil {
			d.markSkipped(state, rec, target, checksum, size)
			d.logger.Debug("existing payload verified in place", "file", rec.Filename)
			return nil
		}
		// Present but unverifiable: replace it.
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove unverifiable payload %s: %w", rec.Filename, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	d.stateMu.Lock()
	rec.AttemptCount++
	d.stateMu.Unlock()

	var opts []transport.RequestOption
	if referer != "" {
		opts = append(opts, transport.WithReferer(referer))
	}
	outcome := d.client.Get(ctx, rec.URL, opts...)
	if outcome.Err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if !outcome.OK() {
		d.markFailed(state, rec, outcome.Describe())
		d.logger.Debug("fetch failed", "url", rec.URL, "cause", outcome.Describe())
		return nil
	}
	defer outcome.Body.Close()

	tmp := target + tempSuffix
	if err := d.writeTemp(tmp, outcome.Body); err != nil {
		os.Remove(tmp)
		d.markFailed(state, rec, err.Error())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.logger.Debug("payload write failed", "url", rec.URL, "error", err)
		return nil
	}

	checksum, size, err := verifyFile(tmp, d.minSize)
	if err != nil {
		os.Remove(tmp)
		d.markFailed(state, rec, err.Error())
		d.logger.Debug("payload failed verification", "url", rec.URL, "error", err)
		return nil
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		d.markFailed(state, rec, err.Error())
		return fmt.Errorf("finalize payload %s: %w", rec.Filename, err)
	}

	d.markSuccess(state, rec, target, checksum, size)
	d.logger.Info("downloaded", "file", rec.Filename, "bytes", size)
	return nil
}

// touch re-stamps a record under the state lock.
func (d *Downloader) touch(rec *model.FileRecord) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	rec.Touch()
}

// markSuccess records a verified download under the state lock.
func (d *Downloader) markSuccess(state *model.ArchiveState, rec *model.FileRecord, path, checksum string, size int64) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	state.MarkSuccess(rec, path, checksum, size)
}

// markSkipped records an in-place verification under the state lock.
func (d *Downloader) markSkipped(state *model.ArchiveState, rec *model.FileRecord, path, checksum string, size int64) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	state.MarkSkipped(rec, path, checksum, size)
}

// markFailed records a failure under the state lock.
func (d *Downloader) markFailed(state *model.ArchiveState, rec *model.FileRecord, cause string) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	state.MarkFailed(rec, cause)
}

// writeTemp streams body into path.
func (d *Downloader) writeTemp(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := make([]byte, copyBufSize)
	if _, err := io.CopyBuffer(f, body, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
