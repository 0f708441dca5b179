package router

import (
	"os"
	"sort"
	"strings"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/errpage"
	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
	"github.com/s00inx/webserv/internal/pathutil"
)

// serveGet implements spec.md §4.3's GET/HEAD dispatch: static file,
// index file, autoindex listing, or CGI, built against the same path for
// both verbs (HEAD suppresses the body afterward, in Serve).
func (rt *Router) serveGet(req *httpparse.Request, sc *config.ServerConfig, loc *config.Location, uri string) *httpwrite.Response {
	fsPath := joinRoot(loc.Root, uri)
	fi := statOrNil(fsPath)
	if fi == nil {
		return rt.errorResponse(sc, 404)
	}

	if fi.IsDir() {
		return rt.serveDirectory(sc, loc, fsPath, uri)
	}
	return rt.serveFile(req, sc, loc, fsPath)
}

func (rt *Router) serveDirectory(sc *config.ServerConfig, loc *config.Location, fsDir, uri string) *httpwrite.Response {
	for _, idx := range loc.IndexFiles {
		idxPath := joinRoot(fsDir+"/", idx)
		if fi := statOrNil(idxPath); fi != nil && !fi.IsDir() {
			body, err := os.ReadFile(idxPath)
			if err != nil {
				return rt.errorResponse(sc, 403)
			}
			return httpwrite.NewOK(pathutil.MIMEType(idx), body)
		}
	}

	if loc.Autoindex {
		return autoindex(fsDir, uri)
	}
	return rt.errorResponse(sc, 403)
}

func (rt *Router) serveFile(req *httpparse.Request, sc *config.ServerConfig, loc *config.Location, fsPath string) *httpwrite.Response {
	ext := pathutil.ExtOf(fsPath)
	if interp, ok := loc.CGIExtensions[ext]; ok {
		resp, err := rt.cgiRunner.Run(fsPath, interp, req)
		if err != nil {
			return rt.errorResponse(sc, 500)
		}
		return resp
	}

	body, err := os.ReadFile(fsPath)
	if err != nil {
		return rt.errorResponse(sc, 403)
	}
	return httpwrite.NewOK(pathutil.MIMEType(fsPath), body)
}

// autoindex synthesizes an HTML directory listing, skipping "." and "..".
func autoindex(fsDir, uri string) *httpwrite.Response {
	entries, err := os.ReadDir(fsDir)
	if err != nil {
		return httpwrite.NewError(403, errpage.Default(403, httpwrite.StatusText(403)))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	base := uri
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	var b strings.Builder
	b.WriteString("<html><head><title>Index of ")
	b.WriteString(uri)
	b.WriteString("</title></head><body><h1>Index of ")
	b.WriteString(uri)
	b.WriteString("</h1><ul>")
	for _, name := range names {
		b.WriteString(`<li><a href="`)
		b.WriteString(base)
		b.WriteString(name)
		b.WriteString(`">`)
		b.WriteString(name)
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul></body></html>")

	return httpwrite.NewOK("text/html", []byte(b.String()))
}
