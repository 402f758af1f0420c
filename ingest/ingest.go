// Package ingest implements a TCP, newline-delimited-JSON ingester: it
// accepts connections, decodes one trace.Trade per line, and pushes each
// onto a bounded ring for a downstream drainer to consume.
//
// This is the "ingester" external collaborator described only by
// interface in the ring package's specification; its internals live here.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/lferreira-oss/tradequeue/internal/backoff"
	"github.com/lferreira-oss/tradequeue/ring"
	"github.com/lferreira-oss/tradequeue/ringpool"
	"github.com/lferreira-oss/tradequeue/trace"
)

// maxConnWorkers bounds how many accepted connections are read
// concurrently, so an unbounded number of TCP clients cannot spawn an
// unbounded number of goroutines.
const maxConnWorkers = 256

// scratchBuffers sizes the pool of reusable decode buffers handed out per
// line read, one per connection worker in the common case.
const scratchBuffers = maxConnWorkers

// Listener accepts trade-feed connections and enqueues decoded trades.
type Listener struct {
	ln      net.Listener
	ring    *ring.Ring[trace.Trade]
	pool    *ants.Pool
	scratch *ringpool.Pool[[]byte]
	logger  *slog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New wraps ln as a trade ingester feeding r. logger defaults to
// slog.Default() when nil.
func New(ln net.Listener, r *ring.Ring[trace.Trade], logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(maxConnWorkers)
	if err != nil {
		return nil, err
	}
	return &Listener{
		ln:      ln,
		ring:    r,
		pool:    pool,
		scratch: ringpool.New[[]byte](scratchBuffers),
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}, nil
}

// Serve accepts connections until ctx is cancelled or the listener errors.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
		l.closeAllConns()
	}()
	defer l.pool.Release()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Error("accept failed", "error", err)
			return err
		}

		l.trackConn(conn)
		submitErr := l.pool.Submit(func() {
			l.handleConn(ctx, conn)
		})
		if submitErr != nil {
			l.logger.Warn("connection pool saturated, dropping connection", "error", submitErr)
			l.untrackConn(conn)
			conn.Close()
		}
	}
}

func (l *Listener) trackConn(conn net.Conn) {
	l.mu.Lock()
	l.conns[conn] = struct{}{}
	l.mu.Unlock()
}

func (l *Listener) untrackConn(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
}

func (l *Listener) closeAllConns() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for conn := range l.conns {
		conn.Close()
	}
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		conn.Close()
		l.untrackConn(conn)
	}()
	l.logger.Info("connection accepted", "remote", conn.RemoteAddr())

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var bo backoff.Policy
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		t, err := l.decodeLine(line, &bo)
		if err != nil {
			l.logger.Warn("dropping malformed line", "error", err)
			continue
		}

		bo.Reset()
		for !l.ring.TryEnqueue(t) {
			bo.Wait()
		}
	}

	if err := scanner.Err(); err != nil {
		l.logger.Warn("connection closed with error", "remote", conn.RemoteAddr(), "error", err)
	}
}

// decodeLine copies line into a pooled scratch buffer and decodes it into a
// trace.Trade, so a fresh []byte is not allocated per line read. bo backs
// off if every scratch buffer is currently checked out.
func (l *Listener) decodeLine(line []byte, bo *backoff.Policy) (trace.Trade, error) {
	token, ok := l.scratch.Acquire()
	for !ok {
		bo.Wait()
		token, ok = l.scratch.Acquire()
	}
	defer l.scratch.Release(token)

	buf := l.scratch.Get(token)
	if cap(buf) < len(line) {
		buf = make([]byte, len(line))
	} else {
		buf = buf[:len(line)]
	}
	copy(buf, line)
	l.scratch.Set(token, buf)

	var t trace.Trade
	err := json.Unmarshal(buf, &t)
	return t, err
}
