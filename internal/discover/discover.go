package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nao1215/docarc/internal/cache"
	"github.com/nao1215/docarc/internal/model"
	"github.com/nao1215/docarc/internal/probe"
	"github.com/nao1215/docarc/internal/walker"
)

// checkpointEvery is how many dataset probes may pass between state
// checkpoints during discovery.
const checkpointEvery = 10

// DatasetFunc runs after each existing dataset has been walked. The run
// controller uses it to download the dataset's files before discovery
// moves on.
type DatasetFunc func(ctx context.Context, state *model.ArchiveState, datasetID int) error

// Summary reports what one discovery sweep did.
type Summary struct {
	// DatasetsProbed counts ids checked, including misses.
	DatasetsProbed int

	// DatasetsFound counts ids that resolved to an existing dataset,
	// whether walked now or on an earlier run.
	DatasetsFound int

	// NewFiles counts URLs added to the state by this sweep.
	NewFiles int

	// LastProbed is the highest id checked before the sweep ended.
	LastProbed int
}

// Discoverer sweeps the dataset id space upward from a starting id until
// a streak of consecutive missing datasets marks the end of the space.
//
// Design decision: The id space has no directory; the only way to learn
// its extent is to probe. Ids are assumed densely allocated, so a long
// run of misses is read as the end rather than a gap. The streak length
// trades wasted probes against the risk of stopping short of a real gap.
type Discoverer struct {
	walker    *walker.Walker
	store     *cache.Store
	threshold int
	minPause  time.Duration
	maxPause  time.Duration
	onDataset DatasetFunc
	logger    *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithDatasetPause sets the randomized pause window between datasets.
func WithDatasetPause(minPause, maxPause time.Duration) Option {
	return func(d *Discoverer) {
		d.minPause = minPause
		d.maxPause = maxPause
	}
}

// WithDatasetFunc sets a callback invoked after each existing dataset is
// walked.
func WithDatasetFunc(fn DatasetFunc) Option {
	return func(d *Discoverer) {
		d.onDataset = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// New creates a Discoverer. The store may be nil, in which case no
// checkpoints are written during the sweep.
func New(w *walker.Walker, store *cache.Store, threshold int, opts ...Option) *Discoverer {
	d := &Discoverer{
		walker:    w,
		store:     store,
		threshold: threshold,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscoverAll probes dataset ids upward from startID, walking each
// existing dataset, until the miss streak is exhausted or the context is
// cancelled. Already scanned datasets count as hits without touching the
// network, so a resumed sweep races through known territory.
func (d *Discoverer) DiscoverAll(ctx context.Context, state *model.ArchiveState, startID int) (*Summary, error) {
	if startID < 1 {
		startID = 1
	}

	summary := &Summary{}
	streak := probe.NewFailureStreak(d.threshold)

	for id := startID; !streak.Exhausted(); id++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.DatasetsProbed++
		summary.LastProbed = id

		if state.DatasetsScanned[id] {
			streak.Observe(true)
			summary.DatasetsFound++
			d.logger.Debug("dataset already scanned", "dataset", id)
			// The walk is done but earlier runs may have left files
			// pending; the callback picks those up.
			if d.onDataset != nil {
				if err := d.onDataset(ctx, state, id); err != nil {
					return summary, fmt.Errorf("dataset %d: %w", id, err)
				}
			}
			continue
		}

		res, err := d.walker.WalkDataset(ctx, state, id)
		switch {
		case errors.Is(err, walker.ErrDatasetNotFound):
			streak.Observe(false)
			d.logger.Debug("dataset missing", "dataset", id, "miss_streak", streak.Count())
		case errors.Is(err, walker.ErrDatasetUnconfirmed):
			// Nothing answered; the id may still exist. It stays
			// unscanned so a later run probes it again, but the miss
			// streak advances so a dead origin cannot stall the sweep.
			streak.Observe(false)
			d.logger.Warn("dataset unreachable", "dataset", id, "miss_streak", streak.Count())
		case errors.Is(err, walker.ErrBlocked):
			// A refusal is a standing signal to go no further, but the
			// sweep itself must still terminate; count it like a miss.
			streak.Observe(false)
			d.logger.Warn("probe blocked by origin", "dataset", id, "miss_streak", streak.Count())
		case err != nil:
			return summary, err
		default:
			streak.Observe(true)
			summary.DatasetsFound++
			summary.NewFiles += res.NewFiles
			state.ObserveDataset(id)

			if d.onDataset != nil {
				if err := d.onDataset(ctx, state, id); err != nil {
					return summary, fmt.Errorf("dataset %d: %w", id, err)
				}
			}
			if err := d.pause(ctx); err != nil {
				return summary, err
			}
		}

		if d.store != nil && summary.DatasetsProbed%checkpointEvery == 0 {
			if err := d.store.Save(state); err != nil {
				return summary, fmt.Errorf("checkpoint after %d probes: %w", summary.DatasetsProbed, err)
			}
		}
	}

	d.logger.Info("discovery sweep complete",
		"probed", summary.DatasetsProbed,
		"found", summary.DatasetsFound,
		"new_files", summary.NewFiles,
		"max_dataset", state.MaxDatasetFound)
	return summary, nil
}

// pause sleeps a uniformly random duration in the dataset pause window.
func (d *Discoverer) pause(ctx context.Context) error {
	dur := d.minPause
	if span := d.maxPause - d.minPause; span > 0 {
		dur += time.Duration(rand.Int63n(int64(span)))
	}
	if dur <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(dur):
		return nil
	}
}
