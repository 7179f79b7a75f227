package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Delays and thresholds mirror what the
// target repository tolerates in practice; all of them can be overridden
// via CLI flags or the .docarc config file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docarc"

	// DefaultBaseURL is the root of the remote document repository.
	DefaultBaseURL = "https://www.justice.gov"

	// DefaultCollection is the path segment between the base URL and the
	// per-dataset listing pages.
	DefaultCollection = "epstein/doj-disclosures"

	// DefaultMinDelay and DefaultMaxDelay bound the mandatory randomized
	// pause before every outbound request. The pause is the only throttle
	// docarc applies; shrinking it risks a server-side block that halts
	// the entire run, which is far more expensive than the waiting.
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 5 * time.Second

	// DefaultTimeout is the per-request timeout. Listing pages are small
	// but document payloads can be tens of megabytes on a slow origin.
	DefaultTimeout = 60 * time.Second

	// DefaultFailureThreshold is how many consecutive missing datasets end
	// discovery. Dataset ids are assumed densely allocated from 1 upward,
	// so ten misses in a row is taken as the end of the space.
	DefaultFailureThreshold = 10

	// DefaultEmptyPageThreshold is how many consecutive empty pages end a
	// dataset's page walk.
	DefaultEmptyPageThreshold = 3

	// DefaultMaxPages is the hard page ceiling per dataset. It exists only
	// to guarantee termination under pathological server behavior; the
	// empty-page threshold is the normal stopping condition.
	DefaultMaxPages = 1000

	// DefaultSaveEvery is how many downloads may complete between
	// checkpoint saves of the archive state.
	DefaultSaveEvery = 10

	// DefaultMinDatasetPause and DefaultMaxDatasetPause bound the
	// randomized pause between datasets during a full archive run.
	DefaultMinDatasetPause = 5 * time.Second
	DefaultMaxDatasetPause = 15 * time.Second

	// DefaultWorkers is the number of parallel download workers. The
	// default of 1 keeps the whole run strictly sequential; discovery is
	// always sequential regardless of this setting.
	DefaultWorkers = 1

	// DefaultMinFileSize is the smallest payload accepted as a real
	// document. Anything below this is a truncated body or an error page.
	DefaultMinFileSize = 1024

	// DefaultUserAgent is the browser-like identity sent with every
	// request. The remote repository serves different content to clients
	// it classifies as bots, so docarc presents as a desktop browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// DefaultExtensions is the accepted file extension set for link
// extraction. Only links ending in one of these are treated as documents.
var DefaultExtensions = []string{".pdf"}

// Config holds all settings for a docarc invocation. It is populated from
// CLI flags plus the optional .docarc file and passed into components via
// dependency injection; there is no global configuration state.
//
// Design decision: A single flat struct keeps the option count manageable
// and every default visible in one place. Collection-specific overrides
// live in File/CollectionConfig, not here.
type Config struct {
	// BaseURL is the scheme and host of the remote repository.
	BaseURL string

	// Collection is the path segment identifying the document collection.
	Collection string

	// DataDir is the root under which payloads, state, and the run
	// history database are stored.
	DataDir string

	// MinDelay and MaxDelay bound the politeness delay before each request.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// FailureThreshold ends dataset discovery after this many consecutive
	// missing datasets.
	FailureThreshold int

	// EmptyPageThreshold ends a page walk after this many consecutive
	// pages without document links.
	EmptyPageThreshold int

	// MaxPages is the hard per-dataset page ceiling.
	MaxPages int

	// SaveEvery is the checkpoint interval, in completed downloads.
	SaveEvery int

	// MinDatasetPause and MaxDatasetPause bound the randomized pause
	// between datasets during a sweep.
	MinDatasetPause time.Duration
	MaxDatasetPause time.Duration

	// Workers is the download worker count. Values above 1 parallelize
	// the download phase only.
	Workers int

	// MinFileSize is the verification size floor in bytes.
	MinFileSize int64

	// UserAgent overrides the identity header.
	UserAgent string

	// Extensions is the accepted extension set for extracted links.
	Extensions []string

	// ConfigFilePath is an explicit .docarc path; empty means search the
	// working directory and then the home directory.
	ConfigFilePath string

	// Collections holds per-collection overrides loaded from the config
	// file (cookies, headers, delays).
	Collections *File

	// Verbose enables slog.LevelDebug output.
	Verbose bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		Collection:         DefaultCollection,
		DataDir:            XDGDataDir(),
		MinDelay:           DefaultMinDelay,
		MaxDelay:           DefaultMaxDelay,
		Timeout:            DefaultTimeout,
		FailureThreshold:   DefaultFailureThreshold,
		EmptyPageThreshold: DefaultEmptyPageThreshold,
		MaxPages:           DefaultMaxPages,
		SaveEvery:          DefaultSaveEvery,
		MinDatasetPause:    DefaultMinDatasetPause,
		MaxDatasetPause:    DefaultMaxDatasetPause,
		Workers:            DefaultWorkers,
		MinFileSize:        DefaultMinFileSize,
		UserAgent:          DefaultUserAgent,
		Extensions:         append([]string(nil), DefaultExtensions...),
	}
}

// XDGDataDir returns the XDG data directory for docarc.
// On Linux: ~/.local/share/docarc
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for docarc.
// On Linux: ~/.cache/docarc
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DownloadDir returns the directory payloads are written under.
func (c *Config) DownloadDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// StateDir returns the directory holding the state file and its backup.
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any network activity; a
// validation failure is one of the few fatal errors in docarc.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.Collection == "" {
		return ErrNoCollection
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelayWindow
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.FailureThreshold <= 0 {
		return ErrInvalidFailureThreshold
	}
	if c.EmptyPageThreshold <= 0 {
		return ErrInvalidEmptyPageThreshold
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MinFileSize < 0 {
		return ErrInvalidMinFileSize
	}
	return nil
}
