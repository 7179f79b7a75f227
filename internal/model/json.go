package model

import (
	"encoding/json"
	"time"
)

// archiveStateJSON is the wire shape of ArchiveState. DatasetsScanned is
// persisted as a sorted list of integers rather than a map so the state
// file stays diffable and readable by external tooling.
type archiveStateJSON struct {
	SchemaVersion   string                 `json:"schema_version"`
	CreatedAt       time.Time              `json:"created_at"`
	LastUpdatedAt   time.Time              `json:"last_updated_at"`
	Files           map[string]*FileRecord `json:"files"`
	DatasetsScanned []int                  `json:"datasets_scanned"`
	MaxDatasetFound int                    `json:"max_dataset_found"`
	TotalDiscovered int                    `json:"total_discovered"`
	TotalDownloaded int                    `json:"total_downloaded"`
	TotalFailed     int                    `json:"total_failed"`
	TotalSkipped    int                    `json:"total_skipped"`
}

// MarshalJSON implements json.Marshaler.
func (s *ArchiveState) MarshalJSON() ([]byte, error) {
	return json.Marshal(archiveStateJSON{
		SchemaVersion:   s.SchemaVersion,
		CreatedAt:       s.CreatedAt,
		LastUpdatedAt:   s.LastUpdatedAt,
		Files:           s.Files,
		DatasetsScanned: s.ScannedDatasets(),
		MaxDatasetFound: s.MaxDatasetFound,
		TotalDiscovered: s.TotalDiscovered,
		TotalDownloaded: s.TotalDownloaded,
		TotalFailed:     s.TotalFailed,
		TotalSkipped:    s.TotalSkipped,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ArchiveState) UnmarshalJSON(data []byte) error {
	var raw archiveStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.SchemaVersion = raw.SchemaVersion
	s.CreatedAt = raw.CreatedAt
	s.LastUpdatedAt = raw.LastUpdatedAt
	s.Files = raw.Files
	if s.Files == nil {
		s.Files = make(map[string]*FileRecord)
	}
	s.DatasetsScanned = make(map[int]bool, len(raw.DatasetsScanned))
	for _, id := range raw.DatasetsScanned {
		s.DatasetsScanned[id] = true
	}
	s.MaxDatasetFound = raw.MaxDatasetFound
	s.TotalDiscovered = raw.TotalDiscovered
	s.TotalDownloaded = raw.TotalDownloaded
	s.TotalFailed = raw.TotalFailed
	s.TotalSkipped = raw.TotalSkipped
	return nil
}
