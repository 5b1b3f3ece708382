// Package encoding handles the text encodings and path conventions found in
// OBJ/MTL files written by other tools.
package encoding

import (
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultCharset is used when no charset is configured.
const DefaultCharset = "utf-8"

// Lookup resolves a charset label ("utf-8", "gbk", "euc-kr", "shift_jis", ...).
// An empty label means UTF-8.
func Lookup(label string) (encoding.Encoding, error) {
	if label == "" {
		label = DefaultCharset
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	return enc, nil
}

// NewReader returns a reader that decodes r from the given charset to UTF-8.
// A UTF-8 byte order mark is stripped.
func NewReader(r io.Reader, label string) (io.Reader, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter returns a writer that encodes UTF-8 text into the given charset.
// Characters the charset cannot represent fail the write.
func NewWriter(w io.Writer, label string) (io.Writer, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return w, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

// NormalizePath converts a texture or library path from an MTL/OBJ file to
// forward slashes and collapses doubled separators, so paths written on
// Windows ("C:\\tex\\wood.png", "D://tex//wood.png") resolve on any OS.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return p
	}
	vol := ""
	if len(p) >= 2 && p[1] == ':' {
		vol, p = p[:2], p[2:]
	}
	return vol + path.Clean(p)
}
