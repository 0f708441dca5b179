package router

import (
	"bytes"
	"mime"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
)

// handleUpload implements spec.md §4.3's upload handler for POST requests
// against a Location with an upload_path: a multipart/form-data part, or
// (if the request isn't multipart) the raw body under a synthesized name.
func (rt *Router) handleUpload(sc *config.ServerConfig, loc *config.Location, req *httpparse.Request) *httpwrite.Response {
	filename, content, ok := extractUpload(req)
	if !ok {
		return rt.errorResponse(sc, 400)
	}

	target := joinRoot(loc.UploadPath+"/", filename)
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return rt.errorResponse(sc, 500)
	}

	body := "<html><body>Uploaded " + filename + "</body></html>"
	return httpwrite.NewOK("text/html", []byte(body))
}

// extractUpload returns the filename and content to write for req's body,
// per spec.md §4.3's "Upload handler" paragraph.
func extractUpload(req *httpparse.Request) (filename string, content []byte, ok bool) {
	ct, _ := req.GetHeader("content-type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return extractMultipart(ct, req.Body)
	}

	name := "upload_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".bin"
	return name, req.Body, true
}

// extractMultipart pulls the first part's filename and content out of a
// multipart/form-data body, by hand per spec.md's literal description
// (locate the first part's header terminator, then the body runs up to
// the CRLF preceding the next boundary), rather than mime/multipart's
// full reader, which expects the part to already be framed as the spec
// describes it being hand-split here.
func extractMultipart(contentType string, body []byte) (filename string, content []byte, ok bool) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", nil, false
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", nil, false
	}
	delim := []byte("--" + boundary)

	start := bytes.Index(body, delim)
	if start < 0 {
		return "", nil, false
	}
	partStart := start + len(delim)

	headerEnd := bytes.Index(body[partStart:], []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return "", nil, false
	}
	headers := body[partStart : partStart+headerEnd]
	contentStart := partStart + headerEnd + 4

	next := bytes.Index(body[contentStart:], delim)
	var partBody []byte
	if next < 0 {
		partBody = body[contentStart:]
	} else {
		partBody = body[contentStart : contentStart+next]
		partBody = bytes.TrimSuffix(partBody, []byte("\r\n"))
	}

	name := filenameFromDisposition(string(headers))
	if name == "" {
		name = "upload_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".bin"
	}
	return name, partBody, true
}

// filenameFromDisposition extracts the filename="..." attribute of a
// Content-Disposition header line within headers.
func filenameFromDisposition(headers string) string {
	idx := strings.Index(strings.ToLower(headers), "filename=\"")
	if idx < 0 {
		return ""
	}
	rest := headers[idx+len("filename=\""):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
