// Package transport implements the polite HTTP layer every docarc
// component goes through: a mandatory randomized pre-request delay, a
// fixed browser-like identity, and classification of responses into the
// outcomes the probing loops act on (ok, blocked, not found, timeout,
// network error).
package transport
