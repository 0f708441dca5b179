// Package httpparse implements the tolerant-but-RFC-anchored HTTP/1.1
// request parser: spec.md §4.2. It follows the teacher's zero-copy
// scanning style (server/protocol/parser.go, internal/request.go) — a
// single forward cursor over the accumulated byte buffer — but returns a
// single enumerated Outcome instead of the teacher's boolean-pair-plus-
// mutable-error-code shape, per the §9 "Parser mutability" redesign note.
package httpparse

// Outcome classifies what Parse discovered about the prefix of buf it
// examined.
type Outcome int

const (
	// Incomplete: no violation found yet, but not enough bytes are
	// present to know the request is fully formed. Keep waiting.
	Incomplete Outcome = iota
	// Complete: the request parsed cleanly; Result.Request is populated.
	Complete
	// Invalid: the request is malformed; Result.ErrorCode names the
	// HTTP status to answer with (400, 411, or 413).
	Invalid
)

// maxHeaderBytes bounds how many bytes of header data we will scan before
// giving up and answering 400 — the spec's open question on header-size
// limits (§9), answered here per SPEC_FULL.md §4.2.
const maxHeaderBytes = 16 * 1024

var validMethods = map[string]bool{
	"GET": true, "POST": true, "DELETE": true, "HEAD": true,
	"OPTIONS": true, "PUT": true, "PATCH": true, "TRACE": true,
	"CONNECT": true, "PROPFIND": true,
}

// Request is the parsed, read-only-after-parse HTTP request.
type Request struct {
	Method    string
	URI       string
	Version   string            // "HTTP/1.0" or "HTTP/1.1"
	Headers   map[string]string // names lowercased, single value
	Body      []byte
	KeepAlive bool
}

// Header looks up a header by its lowercase name (names are lowercased at
// parse time and the lookup is exact, so callers must lowercase their key;
// see GetHeader for the case-insensitive accessor).
func (r *Request) Header(lowerName string) (string, bool) {
	v, ok := r.Headers[lowerName]
	return v, ok
}

// GetHeader is the case-insensitive accessor spec.md §8 names directly
// ("getHeader(n) returns the same value for any ASCII-case permutation
// of n").
func (r *Request) GetHeader(name string) (string, bool) {
	return r.Header(lowerASCII(name))
}

// Result is what Parse returns for one attempt over buf.
type Result struct {
	Outcome       Outcome
	Request       *Request
	ErrorCode     int // 0, 400, 411, or 413 — only meaningful when Outcome == Invalid
	BytesConsumed int // only meaningful when Outcome == Complete
}

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
