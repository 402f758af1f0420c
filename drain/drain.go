// Package drain implements the "drainer" external collaborator: it
// dequeues trace.Trade values from a ring and forwards batches of them to
// a SQL sink.
package drain

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lferreira-oss/tradequeue/internal/backoff"
	"github.com/lferreira-oss/tradequeue/ring"
	"github.com/lferreira-oss/tradequeue/trace"
)

// Drainer batches trades dequeued from a ring and flushes them to Postgres.
type Drainer struct {
	db            *sql.DB
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
}

// New creates a Drainer writing through db. batchSize caps how many trades
// go into one INSERT (values below 1 are treated as 1); flushInterval
// bounds how long a partial batch waits before being flushed anyway;
// logger defaults to slog.Default() when nil.
func New(db *sql.DB, batchSize int, flushInterval time.Duration, logger *slog.Logger) *Drainer {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Drainer{db: db, batchSize: batchSize, flushInterval: flushInterval, logger: logger}
}

// Run drains r until ctx is cancelled, flushing accumulated batches to the
// trades table.
func (d *Drainer) Run(ctx context.Context, r *ring.Ring[trace.Trade]) error {
	batch := make([]trace.Trade, 0, d.batchSize)
	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()

	var bo backoff.Policy
	for {
		select {
		case <-ctx.Done():
			return d.flush(context.Background(), batch)
		case <-ticker.C:
			var err error
			batch, err = d.flushAndReset(ctx, batch)
			if err != nil {
				return err
			}
			continue
		default:
		}

		var t trace.Trade
		if !r.TryDequeue(&t) {
			bo.Wait()
			continue
		}
		bo.Reset()

		batch = append(batch, t)
		if len(batch) >= d.batchSize {
			var err error
			batch, err = d.flushAndReset(ctx, batch)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Drainer) flushAndReset(ctx context.Context, batch []trace.Trade) ([]trace.Trade, error) {
	if err := d.flush(ctx, batch); err != nil {
		return batch, err
	}
	return batch[:0], nil
}

const insertColumns = `control_id, cusip, issuer, exec_time, report_time, price, volume, side, dealer_id, reporting_capacity, modifier3, coupon, maturity`

// buildInsertBatch renders the multi-row INSERT statement and its
// positional arguments for batch. Split out from flush so the SQL shape
// can be tested without a live database connection.
func buildInsertBatch(batch []trace.Trade) (string, []any) {
	if len(batch) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO trades (%s) VALUES ", insertColumns)
	args := make([]any, 0, len(batch)*13)
	for i, t := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 13
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11, base+12, base+13)
		args = append(args, t.ControlID, t.CUSIP, t.Issuer, t.ExecTime, t.ReportTime,
			t.Price, t.Volume, t.Side, t.DealerID, t.ReportingCapacity, t.Modifier3,
			t.Coupon, t.Maturity.Time)
	}
	return sb.String(), args
}

func (d *Drainer) flush(ctx context.Context, batch []trace.Trade) error {
	if len(batch) == 0 {
		return nil
	}

	query, args := buildInsertBatch(batch)
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		d.logger.Error("batch flush failed", "size", len(batch), "error", err)
		return err
	}
	d.logger.Debug("batch flushed", "size", len(batch))
	return nil
}
