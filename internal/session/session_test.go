package session

import (
	"testing"
	"time"

	"github.com/s00inx/webserv/config"
)

func TestConsumeReadSlidesRemainder(t *testing.T) {
	sc := &config.ServerConfig{}
	s := New(3, sc, time.Now())
	defer Release(s)

	s.ReadBuf = append(s.ReadBuf, []byte("GET / HTTP/1.1\r\n\r\nGET /2 HTTP/1.1\r\n\r\n")...)
	firstLen := len("GET / HTTP/1.1\r\n\r\n")
	s.ConsumeRead(firstLen)

	want := "GET /2 HTTP/1.1\r\n\r\n"
	if string(s.ReadBuf) != want {
		t.Fatalf("ReadBuf = %q, want %q", s.ReadBuf, want)
	}
}

func TestResetForKeepAlivePreservesFlag(t *testing.T) {
	sc := &config.ServerConfig{}
	s := New(3, sc, time.Now())
	defer Release(s)

	s.KeepAlive = true
	s.QueueWrite([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	s.BytesSent = len(s.WriteBuf)

	s.ResetForKeepAlive()

	if !s.KeepAlive {
		t.Error("KeepAlive flag was cleared, want preserved")
	}
	if len(s.ReadBuf) != 0 || len(s.WriteBuf) != 0 || s.BytesSent != 0 {
		t.Errorf("buffers not cleared: read=%d write=%d sent=%d", len(s.ReadBuf), len(s.WriteBuf), s.BytesSent)
	}
}

func TestWriteDone(t *testing.T) {
	sc := &config.ServerConfig{}
	s := New(3, sc, time.Now())
	defer Release(s)

	s.QueueWrite([]byte("abc"))
	if s.WriteDone() {
		t.Fatal("WriteDone() = true before any bytes sent")
	}
	s.BytesSent = 3
	if !s.WriteDone() {
		t.Fatal("WriteDone() = false after all bytes sent")
	}
}
