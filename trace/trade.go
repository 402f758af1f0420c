// Package trace defines the enriched trade record shape that flows through
// the ingester and the drainer: one TRACE-style bond trade report per line
// of the ingester's newline-delimited JSON wire format.
package trace

import (
	"fmt"
	"strings"
	"time"
)

// onTimeThreshold mirrors the original generator's ON_TIME_THRESHOLD_SECONDS:
// a report filed more than fifteen minutes after execution is late.
const onTimeThreshold = 15 * time.Minute

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component, matching the
// generator's maturity field (Python's date.isoformat()).
type Date struct {
	time.Time
}

// UnmarshalJSON parses a quoted "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("trace: invalid maturity date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the date back out as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

// Trade is one bond trade report, enriched with reporting metadata.
type Trade struct {
	ControlID         string    `json:"control_id"`
	CUSIP             string    `json:"cusip"`
	Issuer            string    `json:"issuer"`
	ExecTime          time.Time `json:"exec_time"`
	ReportTime        time.Time `json:"report_time"`
	Price             float64   `json:"price"`
	Volume            int64     `json:"volume"`
	Side              string    `json:"side"`
	DealerID          int       `json:"dealer_id"`
	ReportingCapacity string    `json:"reporting_capacity"`
	Modifier3         string    `json:"modifier3"`
	Coupon            float64   `json:"coupon"`
	Maturity          Date      `json:"maturity"`
}

// Late reports whether the trade's reporting delay exceeds the fifteen
// minute on-time threshold.
func (t Trade) Late() bool {
	return t.ReportTime.Sub(t.ExecTime) > onTimeThreshold
}
