package tsv

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw export bytes to UTF-8 text.
// Order: UTF-8, UTF-16 (only with a BOM), Windows-1252, lossy UTF-8.
func Decode(raw []byte) string {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(raw); err == nil {
			return string(out)
		}
	}

	// A UTF-8 BOM is dropped whichever decoder ends up reading the rest.
	raw = bytes.TrimPrefix(raw, bomUTF8)
	if utf8.Valid(raw) {
		return string(raw)
	}

	if out, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil && utf8.Valid(out) {
		return string(out)
	}

	return strings.ToValidUTF8(string(raw), "�")
}
