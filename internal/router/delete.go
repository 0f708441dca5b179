package router

import (
	"os"
	"strings"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/httpwrite"
	"github.com/s00inx/webserv/internal/pathutil"
)

// serveDelete implements spec.md §4.3's DELETE dispatch: remove a single
// file from the location's upload directory. uri is the raw (not yet
// percent-decoded) request URI — the basename is the only part of a
// DELETE target this router ever decodes, and it is decoded exactly
// once, matching _examples/original_source/src/ConnectionHandler.cpp.
func (rt *Router) serveDelete(sc *config.ServerConfig, loc *config.Location, uri string) *httpwrite.Response {
	if loc.UploadPath == "" {
		return rt.errorResponse(sc, 404)
	}

	base := basename(uri)
	decoded, ok := pathutil.Decode(base)
	if !ok {
		return rt.errorResponse(sc, 400)
	}
	if decoded == "" || strings.Contains(decoded, "..") || strings.ContainsAny(decoded, "/\\") {
		return rt.errorResponse(sc, 400)
	}

	target := joinRoot(loc.UploadPath+"/", decoded)
	fi := statOrNil(target)
	if fi == nil {
		return rt.errorResponse(sc, 404)
	}
	if fi.IsDir() {
		return rt.errorResponse(sc, 400)
	}

	if err := os.Remove(target); err != nil {
		return rt.errorResponse(sc, 500)
	}

	body := "<html><body>Deleted " + decoded + "</body></html>"
	return httpwrite.NewOK("text/html", []byte(body))
}

// basename returns the final "/"-separated segment of uri.
func basename(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
