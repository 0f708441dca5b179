// Package router implements the request router and its GET/HEAD/POST/
// DELETE/PUT handlers: spec.md §4.3. Handlers take the parsed
// httpparse.Request and return an *httpwrite.Response; the event loop
// serializes it. Longest-prefix location matching replaces the teacher's
// radix/param trie (wrong tool for a short, ordered Location list — see
// DESIGN.md).
package router

import (
	"os"
	"strconv"
	"strings"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/cgi"
	"github.com/s00inx/webserv/internal/errpage"
	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
	"github.com/s00inx/webserv/internal/pathutil"
)

// Router dispatches parsed requests against a ServerConfig's Location
// table and produces a Response. It holds no per-request state.
type Router struct {
	cgiRunner cgi.Runner
}

// New creates a Router. A nil cgiRunner uses cgi.Run directly.
func New(cgiRunner cgi.Runner) *Router {
	if cgiRunner == nil {
		cgiRunner = cgi.RunnerFunc(cgi.Run)
	}
	return &Router{cgiRunner: cgiRunner}
}

// Serve is the router's single entry point: spec.md §4.3 steps 1-6,
// always producing exactly one Response (the "Router totality" invariant
// in §8).
func (rt *Router) Serve(req *httpparse.Request, sc *config.ServerConfig) *httpwrite.Response {
	uri := req.URI
	if !pathutil.Sanitize(uri) {
		return rt.errorResponse(sc, 400)
	}

	loc := sc.FindLocation(uri)
	if loc == nil {
		return rt.errorResponse(sc, 404)
	}

	if loc.Redirect != "" {
		return buildRedirect(loc.Redirect)
	}

	if !loc.AllowsMethod(req.Method) {
		return httpwrite.NewMethodNotAllowed(loc.AllowHeader(), errpage.Body(sc, 405, httpwrite.StatusText(405)))
	}

	if cl, ok := req.GetHeader("content-length"); ok {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > sc.EffectiveMaxBodySize() {
			return rt.errorResponse(sc, 413)
		}
	}

	switch req.Method {
	case "GET", "HEAD":
		resp := rt.serveGet(req, sc, loc, uri)
		if req.Method == "HEAD" {
			resp.SuppressBody = true
		}
		return resp
	case "POST":
		return rt.servePost(req, sc, loc, uri)
	case "DELETE":
		return rt.serveDelete(sc, loc, uri)
	case "PUT":
		return rt.servePut(req, sc, loc)
	default:
		return rt.errorResponse(sc, 405)
	}
}

// errorResponse produces a standard error response for status, using the
// server's configured custom error page when available.
func (rt *Router) errorResponse(sc *config.ServerConfig, status int) *httpwrite.Response {
	return httpwrite.NewError(status, errpage.Body(sc, status, httpwrite.StatusText(status)))
}

// ErrorResponse exposes errorResponse to callers outside the router — the
// event loop's parse-error (400/411/413) and timeout-sweep (400/408)
// paths need the same custom-error-page lookup the router itself uses.
func (rt *Router) ErrorResponse(sc *config.ServerConfig, status int) *httpwrite.Response {
	return rt.errorResponse(sc, status)
}

func buildRedirect(spec string) *httpwrite.Response {
	code := 301
	target := spec
	if sp := strings.IndexByte(spec, ' '); sp > 0 {
		if c, err := strconv.Atoi(spec[:sp]); err == nil && c >= 300 && c < 400 {
			code = c
			target = strings.TrimSpace(spec[sp+1:])
		}
	}
	body := []byte("<html><body>Redirecting to <a href=\"" + target + "\">" + target + "</a></body></html>")
	return httpwrite.NewRedirect(code, target, body)
}

// joinRoot concatenates a Location's filesystem root with the sanitized
// URI nginx-style — never stripping the location prefix, per spec.md
// §4.3's explicit "Path construction MUST NOT strip the location prefix".
func joinRoot(root, uri string) string {
	if strings.HasSuffix(root, "/") && strings.HasPrefix(uri, "/") {
		return root + uri[1:]
	}
	return root + uri
}

// statOrNil is a small helper so handlers can write "not found" logic
// without repeating the os.IsNotExist dance everywhere.
func statOrNil(path string) os.FileInfo {
	fi, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return fi
}
