// Package extract parses document listing pages and yields candidate
// file records for the archive.
package extract
