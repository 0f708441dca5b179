package httpwrite

// NewError builds a minimal text/html error response for the given
// status, with Connection: close and the given body (the router supplies
// either a configured custom error page's contents or a default body via
// internal/errpage).
func NewError(code int, body []byte) *Response {
	r := New(code)
	r.SetHeader("Content-Type", "text/html")
	r.SetHeader("Connection", "close")
	r.SetBody(body)
	return r
}

// NewMethodNotAllowed builds a 405 with the Allow header spec.md §4.3
// step 4 requires.
func NewMethodNotAllowed(allow string, body []byte) *Response {
	r := NewError(405, body)
	r.SetHeader("Allow", allow)
	return r
}

// NewRedirect builds a 3xx redirect to target.
func NewRedirect(code int, target string, body []byte) *Response {
	r := New(code)
	r.SetHeader("Location", target)
	r.SetHeader("Content-Type", "text/html")
	r.SetBody(body)
	return r
}

// NewOK builds a 200 with the given content type and body.
func NewOK(contentType string, body []byte) *Response {
	r := New(200)
	r.SetHeader("Content-Type", contentType)
	r.SetBody(body)
	return r
}
