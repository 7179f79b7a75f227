package model

import (
	"sort"
	"time"
)

// SchemaVersion is the current state file schema version. Bump when the
// persisted shape changes in a way old readers cannot tolerate.
const SchemaVersion = "2.0"

// ArchiveState is the single source of truth for one archive: every file
// ever discovered, which datasets were scanned, and aggregate counters.
//
// Design decision: The status counters are derivable by summing Files by
// status. They exist only so that stats and progress logging avoid an
// O(n) scan on every report; every mutation goes through a method on
// ArchiveState that keeps them consistent, and RecomputeCounters restores
// them after loading a state file written by an older or interrupted
// process. TotalSkipped is the exception: it counts payloads recovered by
// in-place verification rather than fetched, which no status records, so
// it only ever accumulates.
type ArchiveState struct {
	// SchemaVersion identifies the persisted format.
	SchemaVersion string `json:"schema_version"`

	// CreatedAt is when the archive was first initialized.
	CreatedAt time.Time `json:"created_at"`

	// LastUpdatedAt is when the state was last persisted.
	LastUpdatedAt time.Time `json:"last_updated_at"`

	// Files maps download URL to its record.
	Files map[string]*FileRecord `json:"files"`

	// DatasetsScanned holds the ids of datasets whose page walk completed.
	DatasetsScanned map[int]bool `json:"-"`

	// MaxDatasetFound is the highest dataset id confirmed to exist.
	// Invariant: MaxDatasetFound >= max(DatasetsScanned).
	MaxDatasetFound int `json:"max_dataset_found"`

	// Aggregate counters, kept in sync by the mutation methods below.
	TotalDiscovered int `json:"total_discovered"`
	TotalDownloaded int `json:"total_downloaded"`
	TotalFailed     int `json:"total_failed"`
	TotalSkipped    int `json:"total_skipped"`
}

// NewArchiveState creates an empty state for a first run.
func NewArchiveState() *ArchiveState {
	now := time.Now().UTC()
	return &ArchiveState{
		SchemaVersion:   SchemaVersion,
		CreatedAt:       now,
		LastUpdatedAt:   now,
		Files:           make(map[string]*FileRecord),
		DatasetsScanned: make(map[int]bool),
	}
}

// AddRecord inserts a newly discovered record and bumps the discovery
// counter. It reports whether the record was actually new; an already
// known URL is re-stamped instead (idempotent re-discovery).
func (s *ArchiveState) AddRecord(rec *FileRecord) bool {
	if existing, ok := s.Files[rec.URL]; ok {
		existing.Touch()
		return false
	}
	s.Files[rec.URL] = rec
	s.TotalDiscovered++
	return true
}

// MarkDatasetScanned records a completed page walk and raises the
// watermark if needed.
func (s *ArchiveState) MarkDatasetScanned(datasetID int) {
	s.DatasetsScanned[datasetID] = true
	if datasetID > s.MaxDatasetFound {
		s.MaxDatasetFound = datasetID
	}
}

// ObserveDataset raises the watermark for a dataset confirmed to exist,
// without marking it scanned.
func (s *ArchiveState) ObserveDataset(datasetID int) {
	if datasetID > s.MaxDatasetFound {
		s.MaxDatasetFound = datasetID
	}
}

// MarkSuccess transitions a record to Success after a verified download.
func (s *ArchiveState) MarkSuccess(rec *FileRecord, localPath, checksum string, size int64) {
	s.retireCounter(rec.Status)
	rec.Status = StatusSuccess
	rec.LocalPath = localPath
	rec.Checksum = checksum
	rec.SizeBytes = size
	rec.LastError = ""
	rec.Touch()
	s.TotalDownloaded++
}

// MarkSkipped transitions a record to Success after an in-place
// verification of a file that was already on disk. Downstream consumers
// read only Success records, so a recovered payload must look exactly
// like a downloaded one; TotalSkipped tracks how many payloads were
// recovered rather than fetched.
func (s *ArchiveState) MarkSkipped(rec *FileRecord, localPath, checksum string, size int64) {
	s.retireCounter(rec.Status)
	rec.Status = StatusSuccess
	rec.LocalPath = localPath
	rec.Checksum = checksum
	rec.SizeBytes = size
	rec.LastError = ""
	rec.Touch()
	s.TotalDownloaded++
	s.TotalSkipped++
}

// MarkFailed transitions a record to Failed, recording the cause. The
// record stays eligible for retry on a future run.
func (s *ArchiveState) MarkFailed(rec *FileRecord, cause string) {
	s.retireCounter(rec.Status)
	rec.Status = StatusFailed
	rec.LastError = cause
	rec.Touch()
	s.TotalFailed++
}

// retireCounter decrements the counter associated with a record's current
// status before it transitions away from it.
func (s *ArchiveState) retireCounter(old Status) {
	switch old {
	case StatusSuccess:
		s.TotalDownloaded--
	case StatusFailed:
		s.TotalFailed--
	case StatusSkipped:
		// Legacy records from older state files; they count as downloaded.
		s.TotalDownloaded--
	case StatusPending:
		// Pending has no dedicated counter beyond TotalDiscovered.
	}
}

// RecomputeCounters rebuilds all aggregate counters from Files. Called
// after load so a state file mutated by a crashed process still satisfies
// the counter invariant. TotalSkipped is a cumulative statistic, not
// derivable from statuses, so it survives untouched.
func (s *ArchiveState) RecomputeCounters() {
	s.TotalDiscovered = len(s.Files)
	s.TotalDownloaded = 0
	s.TotalFailed = 0
	for _, rec := range s.Files {
		switch rec.Status {
		case StatusSuccess, StatusSkipped:
			s.TotalDownloaded++
		case StatusFailed:
			s.TotalFailed++
		case StatusPending:
		}
	}
	for id := range s.DatasetsScanned {
		if id > s.MaxDatasetFound {
			s.MaxDatasetFound = id
		}
	}
}

// PendingForDataset returns the records in a dataset that still need a
// download attempt (Pending or Failed), ordered by URL for deterministic
// processing.
func (s *ArchiveState) PendingForDataset(datasetID int) []*FileRecord {
	var out []*FileRecord
	for _, rec := range s.Files {
		if rec.DatasetID != datasetID {
			continue
		}
		if rec.Status == StatusPending || rec.Status == StatusFailed {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// ScannedDatasets returns the scanned dataset ids in ascending order.
func (s *ArchiveState) ScannedDatasets() []int {
	ids := make([]int, 0, len(s.DatasetsScanned))
	for id := range s.DatasetsScanned {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Reset empties the state in place, keeping CreatedAt. Used by cleanup.
func (s *ArchiveState) Reset() {
	s.Files = make(map[string]*FileRecord)
	s.DatasetsScanned = make(map[int]bool)
	s.MaxDatasetFound = 0
	s.TotalDiscovered = 0
	s.TotalDownloaded = 0
	s.TotalFailed = 0
	s.TotalSkipped = 0
}
