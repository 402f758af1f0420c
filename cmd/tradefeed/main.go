// Command tradefeed wires the TCP ingester and SQL drainer together
// around a shared ring: it is the runnable form of the "ingester" and
// "drainer" external collaborators the ring's specification describes.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/lferreira-oss/tradequeue/drain"
	"github.com/lferreira-oss/tradequeue/ingest"
	"github.com/lferreira-oss/tradequeue/ring"
	"github.com/lferreira-oss/tradequeue/trace"
)

func main() {
	addr := flag.String("listen", "127.0.0.1:5555", "TCP address to accept trade feeds on")
	dsn := flag.String("dsn", os.Getenv("TRADEFEED_DSN"), "Postgres connection string")
	capacity := flag.Uint64("capacity", 1024, "ring capacity, must be a power of two")
	batchSize := flag.Int("batch-size", 200, "trades per SQL insert batch")
	flushInterval := flag.Duration("flush-interval", time.Second, "max time a partial batch waits before flushing")
	flag.Parse()

	if *dsn == "" {
		slog.Error("no DSN provided; set -dsn or TRADEFEED_DSN")
		os.Exit(1)
	}

	if err := run(*addr, *dsn, *capacity, *batchSize, *flushInterval); err != nil {
		slog.Error("tradefeed failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, dsn string, capacity uint64, batchSize int, flushInterval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	r := ring.New[trace.Trade](capacity)

	listener, err := ingest.New(ln, r, slog.Default())
	if err != nil {
		return err
	}
	drainer := drain.New(db, batchSize, flushInterval, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Serve(gctx) })
	g.Go(func() error { return drainer.Run(gctx, r) })

	return g.Wait()
}
