// Command driver runs producer and consumer goroutines over a ring.Ring,
// reproducing the original C++ demo's 40-producer/40-consumer workload
// (scenario S6 of the ring's specification): producers encode
// producerID*100000+i, consumers count successes into a shared atomic
// counter, and a done flag is flipped once every item has been consumed.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lferreira-oss/tradequeue/internal/backoff"
	"github.com/lferreira-oss/tradequeue/ring"
	"github.com/lferreira-oss/tradequeue/tuple"
)

func main() {
	producers := flag.Int("producers", 40, "number of producer goroutines")
	consumers := flag.Int("consumers", 40, "number of consumer goroutines")
	itemsPerProducer := flag.Uint64("items", 100_000, "items produced by each producer")
	capacity := flag.Uint64("capacity", 1024, "ring capacity, must be a power of two")
	flag.Parse()

	if err := run(*producers, *consumers, *itemsPerProducer, *capacity); err != nil {
		slog.Error("driver failed", "error", err)
		os.Exit(1)
	}
}

func run(producers, consumers int, itemsPerProducer, capacity uint64) error {
	r := ring.New[uint64](capacity)

	var produced, consumed atomic.Uint64
	var done atomic.Bool
	total := uint64(producers) * itemsPerProducer

	g, ctx := errgroup.WithContext(context.Background())

	for p := 0; p < producers; p++ {
		pid := uint64(p)
		g.Go(func() error {
			var bo backoff.Policy
			for i := uint64(0); i < itemsPerProducer; i++ {
				item := pid*100_000 + i
				for !r.TryEnqueue(item) {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					bo.Wait()
				}
				bo.Reset()
				if n := produced.Add(1); n%10_000 == 0 {
					tuple.Print(os.Stdout, "producer", pid, "produced_total", n)
					os.Stdout.WriteString("\n")
				}
			}
			return nil
		})
	}

	for c := 0; c < consumers; c++ {
		cid := c
		g.Go(func() error {
			var bo backoff.Policy
			for {
				// The done flag is checked only between attempts. It is
				// set by the consumer whose increment brings the consumed
				// count to the total, so once any consumer observes it
				// every produced item has already been dequeued. This
				// termination rule is driver policy, not part of the
				// core queue.
				if done.Load() {
					return nil
				}

				var v uint64
				if !r.TryDequeue(&v) {
					bo.Wait()
					continue
				}
				bo.Reset()

				n := consumed.Add(1)
				if n%10_000 == 0 {
					tuple.Print(os.Stdout, "consumer", cid, "consumed_total", n, "value", v)
					os.Stdout.WriteString("\n")
				}
				if n >= total {
					done.Store(true)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	tuple.Print(os.Stdout, "produced", produced.Load(), "consumed", consumed.Load())
	os.Stdout.WriteString("\n")
	return nil
}
