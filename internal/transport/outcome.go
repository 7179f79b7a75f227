package transport

import (
	"fmt"
	"io"
)

// Kind classifies the result of one polite request. Callers branch on the
// kind, never on raw status codes: Blocked and NotFound are authoritative
// stop signals for probing loops, while Timeout and NetworkError only
// count toward failure thresholds.
type Kind int

// Outcome kinds.
const (
	// KindOK means a 2xx response; Body carries the payload stream.
	KindOK Kind = iota

	// KindBlocked means the server explicitly refused the request
	// (HTTP 403). This is a standing signal to stop probing, not merely
	// a failed attempt.
	KindBlocked

	// KindNotFound means the resource does not exist (HTTP 404).
	KindNotFound

	// KindTimeout means the request exceeded its deadline.
	KindTimeout

	// KindNetworkError covers transport failures and unexpected HTTP
	// statuses; Err carries detail.
	KindNetworkError
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindBlocked:
		return "blocked"
	case KindNotFound:
		return "not found"
	case KindTimeout:
		return "timeout"
	case KindNetworkError:
		return "network error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one request through the polite transport.
type Outcome struct {
	// Kind classifies the result.
	Kind Kind

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Body is the response stream for KindOK outcomes. The caller owns it
	// and must close it. Nil for every other kind.
	Body io.ReadCloser

	// Err carries detail for KindTimeout and KindNetworkError.
	Err error
}

// OK reports whether the outcome carries a readable body.
func (o Outcome) OK() bool {
	return o.Kind == KindOK
}

// Describe returns a human-readable summary suitable for FileRecord
// last_error fields.
func (o Outcome) Describe() string {
	switch o.Kind {
	case KindOK:
		return fmt.Sprintf("HTTP %d", o.StatusCode)
	case KindBlocked:
		return "access blocked (HTTP 403)"
	case KindNotFound:
		return "not found (HTTP 404)"
	case KindTimeout:
		return "request timeout"
	case KindNetworkError:
		if o.StatusCode != 0 {
			return fmt.Sprintf("HTTP %d", o.StatusCode)
		}
		if o.Err != nil {
			return o.Err.Error()
		}
		return "network error"
	default:
		return o.Kind.String()
	}
}
