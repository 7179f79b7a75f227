package download

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// pdfMagic is the signature every PDF payload starts with. The origin
// answers some document URLs with an HTML error page and status 200, so
// the payload itself is the only trustworthy signal.
var pdfMagic = []byte("%PDF-")

var (
	// ErrTooSmall means the payload is below the minimum plausible
	// document size and is treated as truncated or an error page.
	ErrTooSmall = errors.New("download: payload below size floor")

	// ErrBadMagic means the payload does not start with the expected
	// file signature.
	ErrBadMagic = errors.New("download: payload has wrong file signature")
)

// verifyFile checks an on-disk payload against the size floor and, for
// PDF names, the PDF signature. It returns the payload's hex SHA-256 and
// size on success.
func verifyFile(path string, minSize int64) (checksum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	size = info.Size()
	if size < minSize {
		return "", 0, fmt.Errorf("%w: %d bytes < %d", ErrTooSmall, size, minSize)
	}

	if wantsPDFMagic(path) {
		head := make([]byte, len(pdfMagic))
		if _, err := io.ReadFull(f, head); err != nil {
			return "", 0, fmt.Errorf("%w: short read", ErrBadMagic)
		}
		if !bytes.Equal(head, pdfMagic) {
			return "", 0, fmt.Errorf("%w: got %q", ErrBadMagic, head)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", 0, err
		}
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// wantsPDFMagic reports whether the path should carry a PDF signature.
// In-flight downloads are verified at their temp path, so the temp suffix
// is stripped before looking at the extension.
func wantsPDFMagic(path string) bool {
	path = strings.TrimSuffix(path, tempSuffix)
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
