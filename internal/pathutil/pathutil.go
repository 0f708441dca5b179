// Package pathutil holds the URL decoding, path sanitization, and
// extension-to-MIME lookup the router needs before it touches the
// filesystem.
package pathutil

import (
	"net/url"
	"strings"
)

// Decode percent-decodes a request-target path component. On malformed
// escapes it returns the original string unchanged and ok=false; callers
// treat that as a 400.
func Decode(raw string) (decoded string, ok bool) {
	d, err := url.PathUnescape(raw)
	if err != nil {
		return raw, false
	}
	return d, true
}

// Sanitize reports whether uri is safe to resolve against a Location
// root: non-empty, starting with "/", free of ".." segments, "//", "\",
// NUL, and any control byte other than the ones the request line itself
// already rejects. This mirrors spec.md §4.3 step 1 and the "Path safety"
// invariant in §8.
func Sanitize(uri string) bool {
	if uri == "" || uri[0] != '/' {
		return false
	}
	if strings.Contains(uri, "..") {
		return false
	}
	if strings.Contains(uri, "//") {
		return false
	}
	if strings.ContainsRune(uri, '\\') {
		return false
	}
	for i := 0; i < len(uri); i++ {
		b := uri[i]
		if b == 0x00 {
			return false
		}
		if b < 0x20 && b != '\t' {
			return false
		}
	}
	return true
}

// mimeTypes is a flat extension->MIME lookup table, deliberately small and
// explicit rather than delegating to the OS mime database (which varies by
// platform and is not guaranteed to be present in a minimal container).
var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
	".xml":  "application/xml",
	".gz":   "application/gzip",
	".zip":  "application/zip",
}

// MIMEType returns the MIME type for name's extension, defaulting to
// application/octet-stream for unrecognized or missing extensions.
func MIMEType(name string) string {
	ext := extOf(name)
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// extOf returns the lowercase extension (including the leading dot) of
// name, or "" if there is none.
func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	// a dotfile with no further extension ("/.env") has no extension
	if strings.LastIndexByte(name, '/') >= i {
		return ""
	}
	return strings.ToLower(name[i:])
}

// ExtOf is the exported form used by the router for CGI-extension lookup.
func ExtOf(name string) string {
	return extOf(name)
}
