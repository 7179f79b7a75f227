package model

import "time"

// RunSummary describes one completed discover/archive run. Summaries are
// appended to the run-history database and surfaced by the stats command.
type RunSummary struct {
	// ID is the database row id, zero until persisted.
	ID int64 `json:"id,omitempty"`

	// Mode distinguishes discovery-only runs from full archive runs.
	Mode string `json:"mode"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// DatasetsFound is the number of datasets confirmed this run.
	DatasetsFound int `json:"datasets_found"`

	// FilesDiscovered counts records newly added this run.
	FilesDiscovered int `json:"files_discovered"`

	// FilesDownloaded counts verified downloads completed this run.
	FilesDownloaded int `json:"files_downloaded"`

	// FilesFailed counts download attempts that failed this run.
	FilesFailed int `json:"files_failed"`

	// MaxDatasetFound is the watermark at the end of the run.
	MaxDatasetFound int `json:"max_dataset_found"`

	// Interrupted reports whether the run was cut short by a signal.
	Interrupted bool `json:"interrupted"`
}

// Duration returns the wall-clock length of the run.
func (r *RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StatsReport is a read-only snapshot combining the persisted archive
// state with what is actually on disk. It is computed without any network
// access.
type StatsReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	// Tracked files by status, from the archive state.
	TotalDiscovered int `json:"total_discovered"`
	TotalDownloaded int `json:"total_downloaded"`
	TotalFailed     int `json:"total_failed"`
	TotalSkipped    int `json:"total_skipped"`
	TotalPending    int `json:"total_pending"`

	// Dataset coverage.
	DatasetsScanned []int `json:"datasets_scanned"`
	MaxDatasetFound int   `json:"max_dataset_found"`

	// What is actually on disk under the download root.
	LocalFileCount int   `json:"local_file_count"`
	LocalSizeBytes int64 `json:"local_size_bytes"`

	// StateCreatedAt is when the archive was first initialized.
	StateCreatedAt time.Time `json:"state_created_at"`

	// RecentRuns lists the latest run summaries, newest first.
	RecentRuns []RunSummary `json:"recent_runs,omitempty"`
}

// NewStatsReport derives the state-backed portion of a report. Disk
// totals and run history are filled in by the caller.
func NewStatsReport(state *ArchiveState) *StatsReport {
	pending := 0
	for _, rec := range state.Files {
		if rec.Status == StatusPending {
			pending++
		}
	}
	return &StatsReport{
		GeneratedAt:     time.Now().UTC(),
		TotalDiscovered: state.TotalDiscovered,
		TotalDownloaded: state.TotalDownloaded,
		TotalFailed:     state.TotalFailed,
		TotalSkipped:    state.TotalSkipped,
		TotalPending:    pending,
		DatasetsScanned: state.ScannedDatasets(),
		MaxDatasetFound: state.MaxDatasetFound,
		StateCreatedAt:  state.CreatedAt,
	}
}
