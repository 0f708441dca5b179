package router

import (
	"fmt"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
	"github.com/s00inx/webserv/internal/pathutil"
)

// servePost implements spec.md §4.3's POST dispatch: CGI, upload, or echo.
func (rt *Router) servePost(req *httpparse.Request, sc *config.ServerConfig, loc *config.Location, uri string) *httpwrite.Response {
	ext := pathutil.ExtOf(uri)
	if interp, ok := loc.CGIExtensions[ext]; ok {
		fsPath := joinRoot(loc.Root, uri)
		resp, err := rt.cgiRunner.Run(fsPath, interp, req)
		if err != nil {
			return rt.errorResponse(sc, 500)
		}
		return resp
	}

	if loc.UploadPath != "" {
		return rt.handleUpload(sc, loc, req)
	}

	body := fmt.Sprintf("method: %s\nuri: %s\nbody: %s\n", req.Method, uri, req.Body)
	return httpwrite.NewOK("text/plain", []byte(body))
}
