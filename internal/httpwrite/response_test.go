package httpwrite

import (
	"strings"
	"testing"
)

func TestResponseBytesGET(t *testing.T) {
	r := New(200)
	r.SetHeader("Content-Type", "text/html")
	r.SetBody([]byte("HI"))

	got := string(r.Bytes())
	if !strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line: %q", got)
	}
	if !strings.Contains(got, "Content-Length: 2\r\n") {
		t.Errorf("expected Content-Length: 2, got %q", got)
	}
	if !strings.HasSuffix(got, "\r\n\r\nHI") {
		t.Errorf("expected body HI at end, got %q", got)
	}
}

func TestResponseBytesHEADSuppressesBody(t *testing.T) {
	r := New(200)
	r.SetBody([]byte("HI"))
	r.SuppressBody = true

	got := string(r.Bytes())
	if strings.Contains(got, "HI") {
		t.Errorf("HEAD response must not contain body bytes: %q", got)
	}
	if !strings.Contains(got, "Content-Length: 2\r\n") {
		t.Errorf("expected Content-Length to remain 2, got %q", got)
	}
}

func TestStatusTextUnknown(t *testing.T) {
	if StatusText(599) != "Unknown" {
		t.Error("expected Unknown for unmapped code")
	}
	if StatusText(200) != "OK" {
		t.Error("expected OK for 200")
	}
}

func TestNewMethodNotAllowedSetsAllow(t *testing.T) {
	r := NewMethodNotAllowed("GET, HEAD", []byte("nope"))
	if r.Header("Allow") != "GET, HEAD" {
		t.Errorf("Allow header = %q", r.Header("Allow"))
	}
	if r.Header("Connection") != "close" {
		t.Error("expected Connection: close on error response")
	}
}
