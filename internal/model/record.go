package model

import (
	"time"
)

// Status represents the download lifecycle state of a discovered file.
//
// Design decision: We use a string-backed type rather than iota because
// the value is persisted in the state file and must stay stable across
// releases. Strings also make the state file readable when inspected
// by hand or by external collaborators.
type Status string

// File download statuses.
const (
	// StatusPending marks a file that has been discovered but not yet
	// downloaded.
	StatusPending Status = "pending"

	// StatusSuccess marks a file that was downloaded and verified.
	// A Success record always has LocalPath and Checksum set.
	StatusSuccess Status = "success"

	// StatusFailed marks a file whose last download attempt failed.
	// Failed records remain eligible for retry on a future run.
	StatusFailed Status = "failed"

	// StatusSkipped is a legacy status written by earlier versions for
	// files verified in place. New runs promote such files straight to
	// Success; the value stays recognized so old state files still load.
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// FileRecord tracks one distinct file URL ever discovered in the remote
// repository. Records are never deleted, only re-verified; the URL is the
// identity key across the whole archive.
type FileRecord struct {
	// URL is the fully resolved download URL. It is globally unique
	// within an ArchiveState.
	URL string `json:"url"`

	// Filename is the percent-decoded basename used on disk.
	Filename string `json:"filename"`

	// DatasetID is the dataset the file was discovered in.
	DatasetID int `json:"dataset_id"`

	// DiscoveredAt is when the file URL was first seen.
	DiscoveredAt time.Time `json:"discovered_at"`

	// LastCheckedAt is when the record was last re-seen during a walk or
	// touched by a download attempt. Nil until the first re-check.
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`

	// Status is the current download state.
	Status Status `json:"status"`

	// LocalPath is the verified on-disk location. Set only for Success
	// and Skipped records.
	LocalPath string `json:"local_path,omitempty"`

	// SizeBytes is the verified payload size. Zero until verified.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// Checksum is the hex SHA-256 of the verified payload.
	Checksum string `json:"checksum,omitempty"`

	// AttemptCount is the number of download attempts across all runs.
	// It only ever increases.
	AttemptCount int `json:"attempt_count"`

	// LastError describes the most recent failure, empty after success.
	LastError string `json:"last_error,omitempty"`
}

// NewFileRecord creates a pending record for a freshly discovered URL.
func NewFileRecord(url, filename string, datasetID int) *FileRecord {
	return &FileRecord{
		URL:          url,
		Filename:     filename,
		DatasetID:    datasetID,
		DiscoveredAt: time.Now().UTC(),
		Status:       StatusPending,
	}
}

// Touch stamps the record as re-seen now.
func (r *FileRecord) Touch() {
	now := time.Now().UTC()
	r.LastCheckedAt = &now
}

// Downloaded reports whether the record points at a verified payload.
func (r *FileRecord) Downloaded() bool {
	return (r.Status == StatusSuccess || r.Status == StatusSkipped) && r.LocalPath != ""
}
