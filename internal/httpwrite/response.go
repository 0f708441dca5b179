// Package httpwrite builds wire-format HTTP/1.1 responses: a Response
// value plus a single-allocation serializer in the style of the teacher's
// server/protocol/builder.go, generalized to the status codes and header
// behavior spec.md §4.7 requires.
package httpwrite

import (
	"strconv"
)

// statusTable is a flat lookup, same shape as the teacher's BuildResp
// table: fixed-size slice indexed by code, because the set of codes is
// small and known ahead of time.
var statusTable = [600]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	411: "Length Required",
	413: "Payload Too Large",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
}

// StatusText returns the canonical reason phrase for code, or "Unknown"
// for any code the table above does not carry.
func StatusText(code int) string {
	if code >= 0 && code < len(statusTable) {
		if s := statusTable[code]; s != "" {
			return s
		}
	}
	return "Unknown"
}

// headerPair preserves insertion order, so headers go on the wire in the
// order they were first set.
type headerPair struct {
	Name, Value string
}

// Response is a mutable-during-construction HTTP response. Zero value is
// not usable; use New.
type Response struct {
	Code        int
	Version     string
	headers     []headerPair
	Body        []byte
	SuppressBody bool // set for HEAD responses
}

// New creates a Response with the given status code and HTTP/1.1 version.
func New(code int) *Response {
	return &Response{Code: code, Version: "HTTP/1.1"}
}

// SetHeader sets (or replaces, if already present) a header by name,
// case-sensitively as given — callers pass canonical names.
func (r *Response) SetHeader(name, value string) {
	for i := range r.headers {
		if r.headers[i].Name == name {
			r.headers[i].Value = value
			return
		}
	}
	r.headers = append(r.headers, headerPair{name, value})
}

// Header returns the value set for name, or "" if absent.
func (r *Response) Header(name string) string {
	for _, h := range r.headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// SetBody sets the body and updates Content-Length to match, per spec.md
// §4.7 ("Setting the body always updates Content-Length").
func (r *Response) SetBody(body []byte) {
	r.Body = body
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
}

// Bytes serializes the response to wire format:
//
//	<version> <code> <message> CRLF
//	<Name>: <value> CRLF        (repeated)
//	CRLF
//	<body>                       (omitted when SuppressBody)
func (r *Response) Bytes() []byte {
	msg := StatusText(r.Code)
	size := len(r.Version) + 1 + len(strconv.Itoa(r.Code)) + 1 + len(msg) + 2
	for _, h := range r.headers {
		size += len(h.Name) + 2 + len(h.Value) + 2
	}
	size += 2
	if !r.SuppressBody {
		size += len(r.Body)
	}

	dst := make([]byte, 0, size)
	dst = append(dst, r.Version...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(r.Code), 10)
	dst = append(dst, ' ')
	dst = append(dst, msg...)
	dst = append(dst, '\r', '\n')

	for _, h := range r.headers {
		dst = append(dst, h.Name...)
		dst = append(dst, ':', ' ')
		dst = append(dst, h.Value...)
		dst = append(dst, '\r', '\n')
	}
	dst = append(dst, '\r', '\n')

	if !r.SuppressBody {
		dst = append(dst, r.Body...)
	}
	return dst
}
