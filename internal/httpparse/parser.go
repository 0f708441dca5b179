package httpparse

import (
	"bytes"
	"strings"
)

// lineResult classifies what findLine saw.
type lineResult int

const (
	lineIncomplete lineResult = iota // no terminator found yet
	lineOK                           // a CRLF-terminated line was found
	lineBadEnding                    // a bare LF not preceded by CR
)

// findLine scans buf[start:] for the next line terminator. The spec's
// line-ending policy only accepts CRLF: a bare LF not preceded by CR
// anywhere in the request is a 400, full stop.
func findLine(buf []byte, start int) (line []byte, next int, res lineResult) {
	idx := bytes.IndexByte(buf[start:], '\n')
	if idx == -1 {
		return nil, start, lineIncomplete
	}
	pos := start + idx
	if pos == start || buf[pos-1] != '\r' {
		return nil, pos + 1, lineBadEnding
	}
	return buf[start : pos-1], pos + 1, lineOK
}

// Parse examines buf (the client's accumulated read buffer) and reports
// whether it holds one complete, valid HTTP/1.1 or HTTP/1.0 request at
// its start. It never reads past what it needs, so callers can re-invoke
// it as more bytes arrive without re-validating bytes already consumed by
// an earlier, successful parse.
func Parse(buf []byte) Result {
	reqLine, pos, res := findLine(buf, 0)
	switch res {
	case lineIncomplete:
		return Result{Outcome: Incomplete}
	case lineBadEnding:
		return Result{Outcome: Invalid, ErrorCode: 400}
	}

	method, uri, version, ok := parseRequestLine(reqLine)
	if !ok {
		return Result{Outcome: Invalid, ErrorCode: 400}
	}

	headers := make(map[string]string, 8)
	sawHost := false
	var contentLenStr string
	hasContentLen := false

	headerStart := pos
	for {
		if pos-headerStart > maxHeaderBytes {
			return Result{Outcome: Invalid, ErrorCode: 400}
		}

		line, next, lres := findLine(buf, pos)
		switch lres {
		case lineIncomplete:
			if len(buf)-headerStart > maxHeaderBytes {
				return Result{Outcome: Invalid, ErrorCode: 400}
			}
			return Result{Outcome: Incomplete}
		case lineBadEnding:
			return Result{Outcome: Invalid, ErrorCode: 400}
		}
		pos = next

		if len(line) == 0 {
			break // header terminator blank line
		}

		name, value, ok := parseHeaderLine(line)
		if !ok {
			return Result{Outcome: Invalid, ErrorCode: 400}
		}

		if name == "host" {
			if sawHost {
				return Result{Outcome: Invalid, ErrorCode: 400}
			}
			sawHost = true
		}
		if name == "content-length" {
			contentLenStr = value
			hasContentLen = true
		}

		headers[name] = value
	}

	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return Result{Outcome: Invalid, ErrorCode: 400}
	}

	if version == "HTTP/1.1" && !sawHost {
		if !(method == "GET" && hasContentLen) {
			return Result{Outcome: Invalid, ErrorCode: 400}
		}
	}

	var contentLen int64
	if hasContentLen {
		n, errCode := parseContentLength(contentLenStr)
		if errCode != 0 {
			return Result{Outcome: Invalid, ErrorCode: errCode}
		}
		contentLen = n
	} else if method == "POST" || method == "PUT" || method == "PATCH" {
		if int64(len(buf))-int64(pos) > 0 {
			return Result{Outcome: Invalid, ErrorCode: 411}
		}
	}

	var body []byte
	consumed := pos
	if hasContentLen && contentLen > 0 {
		if int64(len(buf))-int64(pos) < contentLen {
			return Result{Outcome: Incomplete}
		}
		body = buf[pos : pos+int(contentLen)]
		consumed = pos + int(contentLen)
	}

	req := &Request{
		Method:  method,
		URI:     uri,
		Version: version,
		Headers: headers,
		Body:    body,
	}
	req.KeepAlive = computeKeepAlive(version, headers)

	return Result{Outcome: Complete, Request: req, BytesConsumed: consumed}
}

// PeekContentLength scans as much of buf as is already present and
// reports the declared Content-Length, without requiring the body itself
// to have arrived yet. It lets the engine's read-handler run the
// body-size gate against max_body_size "before waiting for the full
// body" (spec.md §4.4 step 1) — Parse itself only exposes Content-Length
// once the whole request, body included, is in hand. ok is false when no
// complete header block is present yet or no Content-Length header was
// sent.
func PeekContentLength(buf []byte) (n int64, ok bool) {
	_, pos, res := findLine(buf, 0)
	if res != lineOK {
		return 0, false
	}
	for {
		line, next, lres := findLine(buf, pos)
		if lres != lineOK {
			return 0, false
		}
		pos = next
		if len(line) == 0 {
			return n, ok
		}
		name, value, hok := parseHeaderLine(line)
		if !hok {
			return 0, false
		}
		if name == "content-length" {
			v, errCode := parseContentLength(value)
			if errCode != 0 {
				return 0, false
			}
			n, ok = v, true
		}
	}
}

func parseRequestLine(line []byte) (method, uri, version string, ok bool) {
	if len(line) == 0 {
		return "", "", "", false
	}
	for _, b := range line {
		if b < 0x20 {
			return "", "", "", false
		}
	}

	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if len(p) == 0 {
			return "", "", "", false
		}
	}

	method = string(parts[0])
	uri = string(parts[1])
	version = string(parts[2])

	if !validMethods[method] {
		return "", "", "", false
	}
	if uri[0] != '/' {
		return "", "", "", false
	}
	for i := 0; i < len(uri); i++ {
		if uri[i] < 0x20 || uri[i] == 0x7F {
			return "", "", "", false
		}
	}
	return method, uri, version, true
}

func parseHeaderLine(line []byte) (name, value string, ok bool) {
	idx := bytes.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}
	rawName := line[:idx]
	for _, b := range rawName {
		if b == ' ' || b == '\t' {
			return "", "", false
		}
	}
	name = lowerASCII(string(rawName))

	val := strings.TrimSpace(string(line[idx+1:]))
	return name, val, true
}

// parseContentLength validates a Content-Length value per spec.md §4.2:
// empty, negative, or non-digit -> 400; more than 10 digits -> 413.
func parseContentLength(s string) (n int64, errCode int) {
	if s == "" {
		return 0, 400
	}
	if s[0] == '-' {
		return 0, 400
	}
	if len(s) > 10 {
		return 0, 413
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, 400
		}
	}
	var v int64
	for i := 0; i < len(s); i++ {
		v = v*10 + int64(s[i]-'0')
	}
	return v, 0
}

func computeKeepAlive(version string, headers map[string]string) bool {
	conn := strings.ToLower(headers["connection"])
	if version == "HTTP/1.1" {
		return conn != "close"
	}
	return conn == "keep-alive"
}
