package dataset

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported encodings.
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf-8"
)

// NormalizeEncoding maps accepted aliases onto a canonical encoding name.
func NormalizeEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// decode wraps r so that it yields UTF-8 text.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := NormalizeEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == EncodingLatin1 {
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	}
	// strip a leading BOM if present
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
}
