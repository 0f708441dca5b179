package engine

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/netutil"
	"github.com/s00inx/webserv/internal/router"
)

// startTestLoop binds sc to a local port, registers it with a fresh
// Loop, and runs the loop in a background goroutine until the returned
// shutdown func is called. Grounded on the teacher's engine_test.go
// (server/engine/engine_test.go) — real net.Dial against a running loop,
// not a mock, per spec.md §8's end-to-end scenarios.
func startTestLoop(t *testing.T, sc *config.ServerConfig) (target string, shutdown func()) {
	t.Helper()

	var fd int
	var err error
	port := uint16(19100)
	for i := 0; i < 40; i++ {
		fd, err = netutil.Listen("127.0.0.1", port)
		if err == nil {
			break
		}
		port++
	}
	if err != nil {
		t.Fatalf("could not bind a test listener: %v", err)
	}
	sc.Host, sc.Port = "127.0.0.1", port

	loop, err := New(router.New(nil), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if err := loop.AddListener(fd, sc); err != nil {
		t.Fatalf("AddListener: %v", err)
	}

	var stop atomic.Bool
	done := make(chan error, 1)
	go func() { done <- loop.Run(stop.Load) }()

	target = net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	waitForListener(t, target)

	shutdown = func() {
		stop.Store(true)
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("event loop did not shut down in time")
		}
	}
	return target, shutdown
}

func waitForListener(t *testing.T, target string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		conn, err := net.DialTimeout("tcp", target, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("listener at %s never came up", target)
}

func basicConfig() *config.ServerConfig {
	return &config.ServerConfig{
		MaxBodySize: config.DefaultMaxBodySize,
		Locations: []*config.Location{
			{Path: "/", Methods: []string{"GET"}, Root: "testdata/www", IndexFiles: []string{"index.html"}},
			{Path: "/big", Methods: []string{"POST"}, Root: "testdata/www"},
		},
	}
}

func readHTTPResponse(t *testing.T, conn net.Conn) *http.Response {
	t.Helper()
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return string(b)
}

// spec.md §8 scenario 1: simple GET with index.
func TestLoopServesSimpleGET(t *testing.T) {
	sc := basicConfig()
	target, shutdown := startTestLoop(t, sc)
	defer shutdown()

	conn, err := net.DialTimeout("tcp", target, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	resp := readHTTPResponse(t, conn)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "HI" {
		t.Errorf("body = %q, want HI", body)
	}
}

// Keep-alive persistence: spec.md §8 invariant. A second request on the
// same connection must still be served.
func TestLoopKeepAlivePersistsAcrossRequests(t *testing.T) {
	sc := basicConfig()
	target, shutdown := startTestLoop(t, sc)
	defer shutdown()

	conn, err := net.DialTimeout("tcp", target, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	for i := 0; i < 2; i++ {
		conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
		resp := readHTTPResponse(t, conn)
		if resp.StatusCode != 200 {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
		readBody(t, resp)
	}
}

// spec.md §8 scenario 5: oversize body is rejected before the body is
// read, from the declared Content-Length alone.
func TestLoopRejectsOversizeBodyFast(t *testing.T) {
	sc := basicConfig()
	sc.MaxBodySize = 100
	target, shutdown := startTestLoop(t, sc)
	defer shutdown()

	conn, err := net.DialTimeout("tcp", target, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	conn.Write([]byte("POST /big HTTP/1.1\r\nHost: x\r\nContent-Length: 10000\r\n\r\n"))
	resp := readHTTPResponse(t, conn)
	if resp.StatusCode != 413 {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
}

// A request missing Host on HTTP/1.1 is answered with 400 and the
// connection is not kept alive: spec.md §8 scenario 2.
func TestLoopMissingHostIs400(t *testing.T) {
	sc := basicConfig()
	target, shutdown := startTestLoop(t, sc)
	defer shutdown()

	conn, err := net.DialTimeout("tcp", target, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	resp := readHTTPResponse(t, conn)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if resp.Header.Get("Connection") != "close" {
		t.Errorf("Connection header = %q, want close", resp.Header.Get("Connection"))
	}
}
