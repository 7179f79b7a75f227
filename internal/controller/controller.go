package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/docarc/internal/cache"
	"github.com/nao1215/docarc/internal/config"
	"github.com/nao1215/docarc/internal/database"
	"github.com/nao1215/docarc/internal/discover"
	"github.com/nao1215/docarc/internal/download"
	"github.com/nao1215/docarc/internal/extract"
	"github.com/nao1215/docarc/internal/model"
	"github.com/nao1215/docarc/internal/transport"
	"github.com/nao1215/docarc/internal/walker"
)

// Run modes recorded in the run history.
const (
	ModeDiscover = "discover"
	ModeArchive  = "archive"
)

// recentRunLimit is how many historical runs the stats report includes.
const recentRunLimit = 10

// Controller wires the archive components together and drives a run from
// start to final save.
//
// Design decision: All persistence flows through the controller or through
// components it hands the store to, so there is exactly one answer to
// "when was state last saved": after every completed dataset walk, every
// SaveEvery downloads, at discovery checkpoints, and once at the end of
// the run. Everything in between is at most SaveEvery downloads of
// re-doable work.
type Controller struct {
	cfg        *config.Config
	store      *cache.Store
	state      *model.ArchiveState
	client     *transport.Client
	walker     *walker.Walker
	downloader *download.Downloader
	logger     *slog.Logger

	// stateMu serializes every archive state access shared by download
	// workers: record mutations inside the downloader, the sinceSave
	// counter, and the checkpoint save that marshals the whole state.
	stateMu   sync.Mutex
	sinceSave int
}

// New builds a Controller from configuration, loading any existing state.
func New(cfg *config.Config, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := cache.NewStore(cfg.StateDir(), logger)
	if err != nil {
		return nil, err
	}

	clientOpts := []transport.Option{
		transport.WithDelayWindow(cfg.MinDelay, cfg.MaxDelay),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithLogger(logger),
	}
	extensions := cfg.Extensions
	if cfg.Collections != nil {
		cc := cfg.Collections.GetCollectionConfig(cfg.Collection)
		if cc.Cookie != "" {
			clientOpts = append(clientOpts, transport.WithCookie(cc.Cookie))
		}
		if len(cc.Headers) > 0 {
			clientOpts = append(clientOpts, transport.WithHeaders(cc.Headers))
		}
		if cc.MinDelay > 0 || cc.MaxDelay > 0 {
			clientOpts = append(clientOpts, transport.WithDelayWindow(delayWindow(cfg, cc)))
		}
		if len(cc.Extensions) > 0 {
			extensions = cc.Extensions
		}
	}
	client := transport.NewClient(cfg.Timeout, clientOpts...)

	extractor := extract.New(extract.WithExtensions(extensions))
	w := walker.New(client, extractor, store,
		cfg.BaseURL, cfg.Collection, cfg.EmptyPageThreshold, cfg.MaxPages, logger)

	c := &Controller{
		cfg:    cfg,
		store:  store,
		state:  store.Load(),
		client: client,
		walker: w,
		logger: logger,
	}
	c.downloader = download.New(client, cfg.DownloadDir(), cfg.MinFileSize, logger,
		download.WithStateLock(&c.stateMu))
	return c, nil
}

// delayWindow merges a collection's delay overrides over the global
// politeness window. A collection that only stretches the ceiling keeps
// the global floor; overrides never shrink the window to zero by omission.
func delayWindow(cfg *config.Config, cc config.CollectionConfig) (minD, maxD time.Duration) {
	minD, maxD = cfg.MinDelay, cfg.MaxDelay
	if cc.MinDelay > 0 {
		minD = cc.MinDelay.Std()
	}
	if cc.MaxDelay > 0 {
		maxD = cc.MaxDelay.Std()
	}
	return minD, maxD
}

// State exposes the loaded archive state.
func (c *Controller) State() *model.ArchiveState {
	return c.state
}

// DiscoverAndArchive sweeps the dataset id space from startID. When
// downloadFiles is true each dataset's pending files are downloaded as
// soon as its walk completes; otherwise the run only records what exists.
//
// The returned summary is always valid, even when the run was interrupted
// or ended on a blocked origin. A cancellation is reported through the
// summary's Interrupted flag, not as an error: the progress made is real
// and has been saved.
func (c *Controller) DiscoverAndArchive(ctx context.Context, startID int, downloadFiles bool) (*model.RunSummary, error) {
	run := &model.RunSummary{
		Mode:      ModeDiscover,
		StartedAt: time.Now().UTC(),
	}
	if downloadFiles {
		run.Mode = ModeArchive
	}

	downloadedBefore := c.state.TotalDownloaded
	failedBefore := c.state.TotalFailed

	var opts []discover.Option
	opts = append(opts,
		discover.WithDatasetPause(c.cfg.MinDatasetPause, c.cfg.MaxDatasetPause),
		discover.WithLogger(c.logger),
	)
	if downloadFiles {
		opts = append(opts, discover.WithDatasetFunc(c.downloadDataset))
	}
	disc := discover.New(c.walker, c.store, c.cfg.FailureThreshold, opts...)

	summary, runErr := disc.DiscoverAll(ctx, c.state, startID)

	run.FinishedAt = time.Now().UTC()
	run.DatasetsFound = summary.DatasetsFound
	run.FilesDiscovered = summary.NewFiles
	run.FilesDownloaded = c.state.TotalDownloaded - downloadedBefore
	run.FilesFailed = c.state.TotalFailed - failedBefore
	run.MaxDatasetFound = c.state.MaxDatasetFound

	if errors.Is(runErr, context.Canceled) {
		run.Interrupted = true
		runErr = nil
	}

	if err := c.store.Save(c.state); err != nil {
		if runErr == nil {
			runErr = err
		}
		c.logger.Error("final state save failed", "error", err)
	}
	c.recordRun(run)

	return run, runErr
}

// downloadDataset fetches every pending file of one dataset, bounded by
// the configured worker count.
//
// Design decision: We use errgroup.SetLimit rather than a hand-built
// worker pool because it handles the concurrency and first-error
// propagation correctly with less machinery. The default worker count of
// one keeps the run strictly sequential; parallelism is opt-in.
func (c *Controller) downloadDataset(ctx context.Context, state *model.ArchiveState, datasetID int) error {
	pending := state.PendingForDataset(datasetID)
	if len(pending) == 0 {
		return nil
	}

	c.logger.Info("downloading dataset files", "dataset", datasetID, "pending", len(pending))
	referer := walker.DatasetURL(c.cfg.BaseURL, c.cfg.Collection, datasetID)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for _, rec := range pending {
		rec := rec
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := c.downloader.Fetch(ctx, state, rec, referer); err != nil {
				return err
			}
			return c.maybeCheckpoint()
		})
	}

	return g.Wait()
}

// maybeCheckpoint saves the state once SaveEvery downloads have completed
// since the last save. The lock stays held through the save itself:
// marshaling the state while another worker mutates a record is a race.
func (c *Controller) maybeCheckpoint() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.sinceSave++
	if c.sinceSave < c.cfg.SaveEvery {
		return nil
	}
	c.sinceSave = 0

	if err := c.store.Save(c.state); err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}
	return nil
}

// recordRun appends the run to the history database. History is
// best-effort: a failure is logged and swallowed because the JSON state
// already holds everything that matters.
func (c *Controller) recordRun(run *model.RunSummary) {
	db, err := database.Open(c.cfg.DataDir, database.DefaultOptions())
	if err != nil {
		c.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer db.Close()

	if _, err := db.InsertRunSummary(context.Background(), run); err != nil {
		c.logger.Warn("could not record run", "error", err)
	}
}

// Stats builds a report from the saved state, the download directory, and
// the run history. It never touches the network.
func (c *Controller) Stats(ctx context.Context) (*model.StatsReport, error) {
	report := model.NewStatsReport(c.state)

	count, size, err := scanDownloadDir(c.cfg.DownloadDir())
	if err != nil {
		return nil, fmt.Errorf("scan download directory: %w", err)
	}
	report.LocalFileCount = count
	report.LocalSizeBytes = size

	db, err := database.Open(c.cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err == nil {
		defer db.Close()
		runs, err := db.RecentRuns(ctx, recentRunLimit)
		if err != nil {
			return nil, fmt.Errorf("read run history: %w", err)
		}
		report.RecentRuns = runs
	}

	return report, nil
}

// ErrNotConfirmed is returned by Cleanup when the caller has not
// explicitly confirmed the deletion.
var ErrNotConfirmed = errors.New("cleanup not confirmed")

// Cleanup deletes the archive state, its backup, the run history, and
// every downloaded payload. The confirmed parameter must be true;
// collecting that confirmation (prompt, flag) is the caller's problem,
// which keeps Cleanup itself free of terminal interaction.
func (c *Controller) Cleanup(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.store.Reset(); err != nil {
		return err
	}
	if err := os.Remove(database.FilePath(c.cfg.DataDir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove run history: %w", err)
	}
	if err := os.RemoveAll(c.cfg.DownloadDir()); err != nil {
		return fmt.Errorf("remove downloads: %w", err)
	}
	c.state.Reset()
	return nil
}

// scanDownloadDir totals the regular files under dir, ignoring temp files
// from interrupted downloads. A missing directory counts as empty.
func scanDownloadDir(dir string) (count int, size int64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) == ".tmp" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	return count, size, err
}
