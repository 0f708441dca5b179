package cgi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/s00inx/webserv/internal/httpparse"
)

func TestRunEchoScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "echo.sh")
	content := "#!/bin/sh\nprintf 'Content-Type: text/plain\\r\\n\\r\\nok'\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	req := &httpparse.Request{Method: "GET", URI: "/cgi/echo.sh"}
	resp, err := Run(script, "/bin/sh", req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Code != 200 {
		t.Errorf("Code = %d, want 200", resp.Code)
	}
	if !strings.HasSuffix(string(resp.Body), "ok") {
		t.Errorf("body = %q, want suffix ok", resp.Body)
	}
	if resp.Header("Content-Type") != "text/html" {
		t.Errorf("Content-Type = %q, want text/html (CGI headers are dropped)", resp.Header("Content-Type"))
	}
}

func TestRunNonZeroExitIsError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	req := &httpparse.Request{Method: "GET", URI: "/cgi/fail.sh"}
	_, err := Run(script, "/bin/sh", req)
	if err == nil {
		t.Fatal("expected error on non-zero exit")
	}
}

func TestSplitBodyBareLF(t *testing.T) {
	got := splitBody([]byte("Content-Type: text/plain\n\nhello"))
	if string(got) != "hello" {
		t.Errorf("splitBody = %q", got)
	}
}
