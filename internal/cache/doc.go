// Package cache persists the archive state to disk with atomic writes
// and a one-generation backup.
package cache
