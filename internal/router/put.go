package router

import (
	"os"
	"strconv"
	"time"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
)

// servePut implements spec.md §4.3's PUT dispatch: write the request body
// to a timestamped file under the location's upload directory.
func (rt *Router) servePut(req *httpparse.Request, sc *config.ServerConfig, loc *config.Location) *httpwrite.Response {
	if loc.UploadPath == "" {
		return rt.errorResponse(sc, 404)
	}

	name := "uploaded_file_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	target := joinRoot(loc.UploadPath+"/", name)

	if err := os.WriteFile(target, req.Body, 0o644); err != nil {
		return rt.errorResponse(sc, 500)
	}

	body := "<html><body>Wrote " + target + "</body></html>"
	return httpwrite.NewOK("text/html", []byte(body))
}
