// Package cgi implements the CGI executor: spec.md §4.6. Semantics
// (pipes, environment vector, header/body split, exit-status gating) are
// grounded on _examples/original_source/src/ConnectionHandler.cpp's
// executeCgiScript; implemented with os/exec rather than hand-rolled
// fork/exec/waitpid, the idiomatic Go tool for exactly this job (see
// DESIGN.md).
package cgi

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/httpwrite"
)

// Runner executes a CGI script and builds the Response for it. It is an
// interface so internal/router can be tested against a fake without
// spawning real processes.
type Runner interface {
	Run(scriptPath, interpreter string, req *httpparse.Request) (*httpwrite.Response, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(scriptPath, interpreter string, req *httpparse.Request) (*httpwrite.Response, error)

func (f RunnerFunc) Run(scriptPath, interpreter string, req *httpparse.Request) (*httpwrite.Response, error) {
	return f(scriptPath, interpreter, req)
}

// maxRunTime bounds how long the loop can be blocked by a runaway script;
// the spec's §4.6/§9 note that this executor is synchronous with respect
// to the event loop, so a hard ceiling here keeps one bad script from
// starving every other client indefinitely.
const maxRunTime = 30 * time.Second

// Run invokes interpreter with scriptPath as its sole argument, feeding
// req's body on stdin and collecting stdout, per spec.md §4.6.
func Run(scriptPath, interpreter string, req *httpparse.Request) (*httpwrite.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), maxRunTime)
	defer cancel()

	cmd := exec.CommandContext(ctx, interpreter, scriptPath)
	cmd.Env = buildEnv(scriptPath, req)

	if len(req.Body) > 0 {
		cmd.Stdin = bytes.NewReader(req.Body)
	}

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cgi: %s %s: %w", interpreter, scriptPath, err)
	}

	body := splitBody(out.Bytes())
	return httpwrite.NewOK("text/html", body), nil
}

// splitBody drops everything up to and including the first blank-line
// separator (CGI header/body split), matching either \r\n\r\n or \n\n.
func splitBody(out []byte) []byte {
	if idx := bytes.Index(out, []byte("\r\n\r\n")); idx != -1 {
		return out[idx+4:]
	}
	if idx := bytes.Index(out, []byte("\n\n")); idx != -1 {
		return out[idx+2:]
	}
	return out
}

func buildEnv(scriptPath string, req *httpparse.Request) []string {
	contentType, _ := req.GetHeader("content-type")
	contentLength, _ := req.GetHeader("content-length")

	return []string{
		"REQUEST_METHOD=" + req.Method,
		"CONTENT_TYPE=" + contentType,
		"CONTENT_LENGTH=" + contentLength,
		"SCRIPT_NAME=" + scriptPath,
		"PATH_INFO=" + req.URI,
		"QUERY_STRING=",
		"SERVER_PROTOCOL=HTTP/1.1",
		"GATEWAY_INTERFACE=CGI/1.1",
		"PATH=/usr/bin:/bin",
	}
}
