// Command issuerdump connects to Postgres and dumps the issuer_info lookup
// table, mirroring the original demo's read_issuer_info.cpp.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	_ "github.com/lib/pq"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("ISSUERDUMP_DSN"), "Postgres connection string, e.g. \"dbname=finance user=douglas\"")
	flag.Parse()

	if *dsn == "" {
		slog.Error("no DSN provided; set -dsn or ISSUERDUMP_DSN")
		os.Exit(1)
	}

	if err := run(*dsn, os.Stdout); err != nil {
		slog.Error("issuerdump failed", "error", err)
		os.Exit(1)
	}
}

func run(dsn string, out *os.File) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	rows, err := db.Query("SELECT * FROM issuer_info")
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	values := make([]any, len(cols))
	scanTargets := make([]sql.NullString, len(cols))
	for i := range scanTargets {
		values[i] = &scanTargets[i]
	}

	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		for i, v := range scanTargets {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v.String)
		}
		fmt.Fprintln(tw)
	}
	return rows.Err()
}
