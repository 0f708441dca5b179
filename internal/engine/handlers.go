package engine

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/s00inx/webserv/internal/httpparse"
	"github.com/s00inx/webserv/internal/session"
)

// handleReadable is the client read-handler: spec.md §4.4. It reads up
// to 64KiB non-blocking and drives the parse->dispatch pipeline on
// whatever accumulated in the read buffer.
func (l *Loop) handleReadable(sess *session.Session) {
	var buf [readChunk]byte
	n, err := unix.Read(sess.Fd, buf[:])

	switch {
	case n > 0:
		sess.ReadBuf = append(sess.ReadBuf, buf[:n]...)
		sess.LastActivity = time.Now()
		l.runPipeline(sess)
		return

	case n == 0 && err == nil:
		if len(sess.ReadBuf) == 0 {
			// Peer closed before sending anything: spec.md §4.4
			// synthesizes an empty-request 400 so it goes out before
			// the socket closes.
			l.queueError(sess, 400)
			return
		}
		l.removeClient(sess.Fd)
		return

	default:
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return
		}
		l.removeClient(sess.Fd)
	}
}

// runPipeline runs the parse->dispatch pipeline over sess.ReadBuf,
// repeating for any pipelined follow-up request that already arrived in
// the same read.
func (l *Loop) runPipeline(sess *session.Session) {
	for {
		if peeked, ok := httpparse.PeekContentLength(sess.ReadBuf); ok {
			if peeked > sess.Config.EffectiveMaxBodySize() {
				l.queueError(sess, 413)
				sess.ReadBuf = sess.ReadBuf[:0]
				return
			}
		}

		res := httpparse.Parse(sess.ReadBuf)
		switch res.Outcome {
		case httpparse.Complete:
			l.dispatch(sess, res.Request)
			sess.ConsumeRead(res.BytesConsumed)
			sess.LastActivity = time.Now()
			if len(sess.ReadBuf) == 0 {
				return
			}
			// A pipelined follow-up may already be fully in hand;
			// spec.md §5 requires it be answered in arrival order,
			// which falling through to another Parse achieves.
			continue

		case httpparse.Invalid:
			l.queueError(sess, res.ErrorCode)
			sess.ReadBuf = sess.ReadBuf[:0]
			return

		case httpparse.Incomplete:
			return
		}
	}
}

// handleWritable is the client write-handler: spec.md §4.5.
func (l *Loop) handleWritable(sess *session.Session) {
	remaining := sess.WriteRemaining()
	if len(remaining) == 0 {
		l.finishWrite(sess)
		return
	}

	n, err := unix.Write(sess.Fd, remaining)
	switch {
	case n > 0:
		sess.BytesSent += n
		if sess.WriteDone() {
			l.finishWrite(sess)
		}
		return

	case n == 0 && err == nil:
		l.removeClient(sess.Fd)

	default:
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return
		}
		l.removeClient(sess.Fd)
	}
}

// finishWrite is reached once the whole write buffer has drained.
func (l *Loop) finishWrite(sess *session.Session) {
	if sess.KeepAlive {
		sess.ResetForKeepAlive()
		l.lowerWritable(sess.Fd)
		return
	}
	l.removeClient(sess.Fd)
}

// sweepTimeouts implements spec.md §4.1's periodic timeout sweep, run
// after every loop iteration regardless of whether the wait itself timed
// out.
func (l *Loop) sweepTimeouts() {
	now := time.Now()
	for _, sess := range l.clients {
		if len(sess.WriteRemaining()) != 0 {
			continue
		}
		idle := now.Sub(sess.LastActivity)
		if idle < idleTimeout {
			continue
		}

		if len(sess.ReadBuf) == 0 {
			if !sess.KeepAlive {
				l.queueError(sess, 400)
			}
			continue
		}

		res := httpparse.Parse(sess.ReadBuf)
		if res.Outcome == httpparse.Incomplete {
			l.queueError(sess, 408)
		}
	}
}
