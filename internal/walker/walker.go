package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/docarc/internal/cache"
	"github.com/nao1215/docarc/internal/extract"
	"github.com/nao1215/docarc/internal/model"
	"github.com/nao1215/docarc/internal/probe"
	"github.com/nao1215/docarc/internal/transport"
)

var (
	// ErrBlocked means the origin refused service for this client
	// identity; continuing would only deepen the block.
	ErrBlocked = errors.New("walker: access blocked by origin")

	// ErrDatasetNotFound means the dataset's first page does not exist.
	ErrDatasetNotFound = errors.New("walker: dataset not found")

	// ErrDatasetUnconfirmed means no page of the dataset ever answered
	// with a successful response, so the walk proved neither existence
	// nor absence. The dataset must not be marked scanned; a later run
	// probes it again.
	ErrDatasetUnconfirmed = errors.New("walker: dataset existence unconfirmed")
)

// Result summarizes one completed dataset walk.
type Result struct {
	// DatasetID is the dataset that was walked.
	DatasetID int

	// PagesFetched counts pages actually requested, including empty ones.
	PagesFetched int

	// LinksFound counts document links seen across all pages, including
	// re-discoveries of already known URLs.
	LinksFound int

	// NewFiles counts URLs added to the archive state by this walk.
	NewFiles int
}

// Walker enumerates every listing page of a dataset and records the
// document links it finds.
//
// Design decision: The page count of a dataset is not advertised
// anywhere, so termination rests on a streak of consecutive empty pages
// rather than a known total. A transient fetch failure feeds the same
// streak as a genuinely empty page because the walker cannot tell them
// apart, and retry-forever on an unbounded page space never terminates.
// A NotFound, by contrast, is authoritative: the listing 404s past its
// last page, so the walk ends there at once.
type Walker struct {
	client         *transport.Client
	extractor      *extract.Extractor
	store          *cache.Store
	baseURL        string
	collection     string
	emptyThreshold int
	maxPages       int
	logger         *slog.Logger
}

// New creates a Walker. The store may be nil, in which case the caller
// owns persistence.
func New(client *transport.Client, extractor *extract.Extractor, store *cache.Store,
	baseURL, collection string, emptyThreshold, maxPages int, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Walker{
		client:         client,
		extractor:      extractor,
		store:          store,
		baseURL:        baseURL,
		collection:     collection,
		emptyThreshold: emptyThreshold,
		maxPages:       maxPages,
		logger:         logger,
	}
}

// DatasetURL builds the canonical first-page URL for a dataset.
func DatasetURL(baseURL, collection string, datasetID int) string {
	return fmt.Sprintf("%s/%s/data-set-%d-files", baseURL, collection, datasetID)
}

// PageURL builds the URL for one page of a dataset listing. Page zero is
// the bare dataset URL; later pages carry a page query parameter.
func PageURL(baseURL, collection string, datasetID, page int) string {
	u := DatasetURL(baseURL, collection, datasetID)
	if page > 0 {
		u = fmt.Sprintf("%s?page=%d", u, page)
	}
	return u
}

// WalkDataset fetches the dataset's pages in order until the empty-page
// streak or the page ceiling ends the walk, updating state as it goes.
// On a clean finish it marks the dataset scanned and, when a store is
// attached, persists the state.
//
// ErrBlocked, ErrDatasetNotFound, and ErrDatasetUnconfirmed are the hard
// outcomes: the origin refused service, the dataset id is unallocated, or
// every page fetch failed and the id's status is still unknown.
func (w *Walker) WalkDataset(ctx context.Context, state *model.ArchiveState, datasetID int) (*Result, error) {
	res := &Result{DatasetID: datasetID}
	streak := probe.NewFailureStreak(w.emptyThreshold)
	referer := fmt.Sprintf("%s/%s", w.baseURL, w.collection)
	confirmed := false

walk:
	for page := 0; page < w.maxPages && !streak.Exhausted(); page++ {
		pageURL := PageURL(w.baseURL, w.collection, datasetID, page)

		outcome := w.client.Get(ctx, pageURL, transport.WithReferer(referer))
		if outcome.Err != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.PagesFetched++
		referer = pageURL

		switch outcome.Kind {
		case transport.KindBlocked:
			return res, fmt.Errorf("%w: dataset %d page %d", ErrBlocked, datasetID, page)
		case transport.KindNotFound:
			if page == 0 {
				return res, fmt.Errorf("%w: id %d", ErrDatasetNotFound, datasetID)
			}
			// The listing 404s past its last page; nothing exists here
			// or beyond.
			break walk
		case transport.KindTimeout, transport.KindNetworkError:
			w.logger.Debug("page fetch failed", "dataset", datasetID, "page", page, "cause", outcome.Describe())
			streak.Observe(false)
			continue
		case transport.KindOK:
			confirmed = true
		}

		records, err := w.extractor.Extract(outcome.Body, pageURL, datasetID)
		outcome.Body.Close()
		if err != nil {
			w.logger.Debug("page parse failed", "dataset", datasetID, "page", page, "error", err)
			streak.Observe(false)
			continue
		}

		streak.Observe(len(records) > 0)
		res.LinksFound += len(records)
		for _, rec := range records {
			if state.AddRecord(rec) {
				res.NewFiles++
			}
		}
		w.logger.Debug("page walked", "dataset", datasetID, "page", page, "links", len(records))
	}

	if !confirmed {
		return res, fmt.Errorf("%w: id %d", ErrDatasetUnconfirmed, datasetID)
	}

	state.MarkDatasetScanned(datasetID)
	if w.store != nil {
		if err := w.store.Save(state); err != nil {
			return res, fmt.Errorf("persist state after dataset %d: %w", datasetID, err)
		}
	}

	w.logger.Info("dataset walk complete",
		"dataset", datasetID, "pages", res.PagesFetched, "new_files", res.NewFiles)
	return res, nil
}
