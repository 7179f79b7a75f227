package extract

import (
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/docarc/internal/model"
)

// DefaultDenylist lists filename substrings that mark decorative site
// assets rather than documents. A listing page sprinkles its chrome
// (icons, arrows, logos) between the real links, and those assets often
// share the accepted extensions.
var DefaultDenylist = []string{"icon", "logo", "favicon", "button", "arrow", "small", "tiny"}

// Extractor turns a listing page body into candidate file records.
//
// Design decision: We parse with golang.org/x/net/html rather than regex
// because listing pages are machine-generated but not guaranteed
// well-formed, and a DOM walk survives attribute reordering and embedded
// markup that breaks pattern matching.
//
// Extract is a pure function of its inputs: it never consults the archive
// state, so page parsing is testable with nothing but strings.
type Extractor struct {
	// extensions is the accepted extension set, lowercase with dots.
	extensions []string

	// denylist filters decorative assets by filename substring.
	denylist []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithExtensions sets the accepted file extension set.
func WithExtensions(exts []string) Option {
	return func(e *Extractor) {
		e.extensions = normalizeExtensions(exts)
	}
}

// WithDenylist sets the decorative-asset denylist.
func WithDenylist(deny []string) Option {
	return func(e *Extractor) {
		e.denylist = deny
	}
}

// New creates an Extractor accepting .pdf documents by default.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		extensions: []string{".pdf"},
		denylist:   DefaultDenylist,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans an HTML page for document links and returns one pending
// record per distinct resolved URL. Relative references are resolved
// against pageURL; filenames are percent-decoded and NFC-normalized so
// the same remote name always maps to the same on-disk name.
func (e *Extractor) Extract(body io.Reader, pageURL string, datasetID int) ([]*model.FileRecord, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var records []*model.FileRecord
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if rec := e.candidate(base, href, datasetID); rec != nil && !seen[rec.URL] {
					seen[rec.URL] = true
					records = append(records, rec)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return records, nil
}

// candidate resolves one href and returns a pending record, or nil when
// the link is not an acceptable document.
func (e *Extractor) candidate(base *url.URL, href string, datasetID int) *model.FileRecord {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(u)
	resolved.Fragment = ""

	if !e.acceptedExtension(resolved.Path) {
		return nil
	}

	filename := path.Base(resolved.Path)
	if filename == "." || filename == "/" {
		return nil
	}
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}
	filename = norm.NFC.String(filename)

	lower := strings.ToLower(filename)
	for _, deny := range e.denylist {
		if strings.Contains(lower, deny) {
			return nil
		}
	}

	return model.NewFileRecord(resolved.String(), filename, datasetID)
}

// acceptedExtension checks the URL path (not the query) against the
// accepted extension set.
func (e *Extractor) acceptedExtension(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	for _, ext := range e.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// normalizeExtensions lowercases extensions and ensures leading dots.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
