// Package urlfmt renders object keys as URLs.
package urlfmt

import (
	"net/url"
	"strings"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// Formatter prepends Prefix to escaped object keys.
type Formatter struct {
	Prefix string
	// Bucket is inserted as "bucket/" between Prefix and the key when
	// IncludeBucket is set, e.g. for prefixes ending in "s3://".
	Bucket        string
	IncludeBucket bool
}

// URL renders a single key.
func (f Formatter) URL(key model.ObjectKey) string {
	var b strings.Builder
	b.WriteString(f.Prefix)
	if f.IncludeBucket {
		b.WriteString(escapeSegment(f.Bucket))
		b.WriteByte('/')
	}
	b.WriteString(EscapeKey(key))
	return b.String()
}

// Record renders both keys of a pair.
func (f Formatter) Record(p model.Pair) model.PairRecord {
	return model.PairRecord{
		Source:    f.URL(p.Source),
		Candidate: f.URL(p.Candidate),
	}
}

// Records renders pairs in order.
func (f Formatter) Records(pairs []model.Pair) []model.PairRecord {
	out := make([]model.PairRecord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, f.Record(p))
	}
	return out
}

// EscapeKey escapes each "/"-separated segment of key, keeping the separators.
// Only unreserved characters survive, so the result is safe inside a query
// value as well as a path.
func EscapeKey(key model.ObjectKey) string {
	segments := strings.Split(string(key), "/")
	for i, s := range segments {
		segments[i] = escapeSegment(s)
	}
	return strings.Join(segments, "/")
}

// escapeSegment percent-encodes everything but RFC 3986 unreserved characters.
// QueryEscape turns spaces into "+", which would decode back as a literal plus
// in a path; a literal "+" is already "%2B" at this point.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
