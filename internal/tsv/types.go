package tsv

import (
	"regexp"
	"strconv"
	"strings"
)

// Row maps every header of a table to its value for one record.
type Row map[string]string

// Table holds one parsed export file.
type Table struct {
	Path    string
	Headers []string
	Rows    []Row
}

// HasHeader reports whether the table has a column named h.
func (t *Table) HasHeader(h string) bool {
	for _, x := range t.Headers {
		if x == h {
			return true
		}
	}
	return false
}

// Get returns the first non-empty trimmed value among keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Int parses the value of key, returning def when missing or malformed.
func (r Row) Int(key string, def int) int {
	n, err := strconv.Atoi(r.Get(key))
	if err != nil {
		return def
	}
	return n
}

// Float parses the value of key. ok is false when missing or malformed.
func (r Row) Float(key string) (v float64, ok bool) {
	f, err := strconv.ParseFloat(r.Get(key), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool accepts "1" or "true" (any case).
func (r Row) Bool(key string) bool {
	v := strings.ToLower(r.Get(key))
	return v == "1" || v == "true"
}

// FormID returns the upper-cased FormID column.
func (r Row) FormID() string {
	return strings.ToUpper(r.Get("FormID"))
}

// EDID returns the EDID column.
func (r Row) EDID() string {
	return r.Get("EDID")
}

// Text joins every non-empty value of the row with spaces, in header order
// when headers are given, otherwise in sorted key order.
func (r Row) Text(headers []string) string {
	var parts []string
	if len(headers) == 0 {
		headers = sortedKeys(r)
	}
	for _, h := range headers {
		if v := r[h]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

var hexFormID = regexp.MustCompile(`^[0-9A-F]{8}$`)

// IsFormID reports whether s is an 8-hex-digit FormID (upper case).
func IsFormID(s string) bool {
	return hexFormID.MatchString(s)
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
