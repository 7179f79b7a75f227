// Package model defines the core data structures shared across docarc:
// file records, the archive state they live in, and the read-only
// statistics snapshot produced for reporting.
//
// The types in this package are deliberately free of I/O. Persistence is
// handled by the cache package, mutation by the walker and downloader,
// so that invariants (unique URLs, counter consistency) can be tested
// without touching the network or the filesystem.
package model
