// Package session holds the per-connection state the event loop owns
// exclusively: read/write buffers, timestamps, and the keep-alive flag.
// Shape follows the teacher's server/engine/session.go ("one struct,
// pooled, Reset before returning"), generalized from the teacher's
// fixed-capacity View arena to growable buffers because a kept-alive
// Session outlives many differently-sized requests.
package session

import (
	"sync"
	"time"

	"github.com/s00inx/webserv/config"
)

// Session is one client connection's state. The event loop (internal/engine)
// is its sole owner; nothing else should retain a pointer to one across
// handler invocations.
type Session struct {
	Fd int

	ReadBuf  []byte
	WriteBuf []byte
	BytesSent int

	ConnectedAt    time.Time
	LastActivity   time.Time
	KeepAlive      bool

	// Config is the ServerConfig bound to the listener this client was
	// accepted on (spec.md §4.3: discovered from the socket's local
	// address at accept time, then carried on the session).
	Config *config.ServerConfig
}

// pool reuses Session values across connections, same spirit as the
// teacher's sessionPool (server/engine/pool.go), sized for the smaller
// per-connection footprint a growable-buffer Session needs.
var pool = sync.Pool{
	New: func() any { return &Session{} },
}

// New returns a freshly reset Session bound to fd and sc, pulled from the
// pool.
func New(fd int, sc *config.ServerConfig, now time.Time) *Session {
	s := pool.Get().(*Session)
	s.Fd = fd
	s.Config = sc
	s.ReadBuf = s.ReadBuf[:0]
	s.WriteBuf = s.WriteBuf[:0]
	s.BytesSent = 0
	s.ConnectedAt = now
	s.LastActivity = now
	s.KeepAlive = false
	return s
}

// Release clears sensitive state and returns s to the pool. Callers must
// not use s after calling Release.
func Release(s *Session) {
	s.Fd = -1
	s.Config = nil
	s.ReadBuf = nil
	s.WriteBuf = nil
	s.BytesSent = 0
	pool.Put(s)
}

// ResetForKeepAlive clears both buffers after a response has been fully
// sent on a keep-alive connection, preserving the keep-alive flag per
// spec.md §3 ("for keep-alive, after a response is fully sent the session
// is retained, its buffers cleared, and its keep-alive flag preserved").
func (s *Session) ResetForKeepAlive() {
	s.ReadBuf = s.ReadBuf[:0]
	s.WriteBuf = s.WriteBuf[:0]
	s.BytesSent = 0
}

// ConsumeRead drops the first n bytes of ReadBuf, sliding any remainder
// (a pipelined follow-up request) to the front.
func (s *Session) ConsumeRead(n int) {
	rem := len(s.ReadBuf) - n
	if rem > 0 {
		copy(s.ReadBuf, s.ReadBuf[n:])
	}
	s.ReadBuf = s.ReadBuf[:rem]
}

// QueueWrite appends b to the write buffer for the event loop to drain.
func (s *Session) QueueWrite(b []byte) {
	s.WriteBuf = append(s.WriteBuf, b...)
}

// WriteRemaining returns the not-yet-sent tail of the write buffer.
func (s *Session) WriteRemaining() []byte {
	return s.WriteBuf[s.BytesSent:]
}

// WriteDone reports whether the entire write buffer has been sent.
func (s *Session) WriteDone() bool {
	return s.BytesSent >= len(s.WriteBuf)
}
