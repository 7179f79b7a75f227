// Package download fetches discovered payloads with atomic writes and
// content verification.
package download
