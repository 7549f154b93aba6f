package argo

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CSV file names expected by LoadDir.
const (
	floatsCSV       = "floats.csv"
	cyclesCSV       = "cycles.csv"
	measurementsCSV = "measurements.csv"
)

// Stats reports row counts after a bulk load.
type Stats struct {
	Floats       int64
	Cycles       int64
	Measurements int64
}

// Loader bulk-loads the extracted CSV exports into PostgreSQL using COPY.
// Loading replaces the existing tables; it is a full reload, not a merge.
type Loader struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(pool *pgxpool.Pool, logger *slog.Logger) (*Loader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{pool: pool, logger: logger}, nil
}

// LoadDir loads floats.csv, cycles.csv and measurements.csv from dir,
// in foreign-key order. Existing rows are truncated first.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			l.logger.Debug("ingest rollback", "error", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx,
		`TRUNCATE measurements, cycles, floats`); err != nil {
		return stats, fmt.Errorf("truncating tables: %w", err)
	}

	stats.Floats, err = l.copyCSV(ctx, tx, filepath.Join(dir, floatsCSV), "floats", floatColumns, parseFloatRow)
	if err != nil {
		return stats, err
	}
	stats.Cycles, err = l.copyCSV(ctx, tx, filepath.Join(dir, cyclesCSV), "cycles", cycleColumns, parseCycleRow)
	if err != nil {
		return stats, err
	}
	stats.Measurements, err = l.copyCSV(ctx, tx, filepath.Join(dir, measurementsCSV), "measurements", measurementColumns, parseMeasurementRow)
	if err != nil {
		return stats, err
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("committing ingest: %w", err)
	}

	l.logger.Info("CSV ingest completed",
		"floats", stats.Floats,
		"cycles", stats.Cycles,
		"measurements", stats.Measurements,
	)
	return stats, nil
}

var floatColumns = []string{
	"platform_number", "project_name", "pi_name", "platform_type",
	"launch_date", "launch_latitude", "launch_longitude",
	"float_owner", "operating_institution", "data_centre",
}

var cycleColumns = []string{
	"platform_number", "cycle_number", "profile_number", "date",
	"latitude", "longitude", "position_qc", "direction", "data_mode",
	"pressure_qc", "temperature_qc", "salinity_qc",
}

var measurementColumns = []string{
	"platform_number", "cycle_number", "level",
	"pressure", "temperature", "salinity", "oxygen",
	"pressure_qc", "temperature_qc", "salinity_qc",
}

// rowParser converts one CSV record (by header name) into COPY values.
type rowParser func(rec record) ([]any, error)

// record gives name-based access to one CSV line.
type record struct {
	index map[string]int
	line  []string
}

func (r record) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.line) {
		return ""
	}
	return strings.TrimSpace(r.line[i])
}

// copyCSV streams one CSV file into a table via COPY.
func (l *Loader) copyCSV(ctx context.Context, tx pgx.Tx, path, table string, columns []string, parse rowParser) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading %s header: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows [][]any
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		values, err := parse(record{index: index, line: line})
		if err != nil {
			return 0, fmt.Errorf("parsing %s row: %w", path, err)
		}
		rows = append(rows, values)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copying into %s: %w", table, err)
	}
	l.logger.Debug("loaded table", "table", table, "rows", n)
	return n, nil
}

func parseFloatRow(rec record) ([]any, error) {
	return []any{
		rec.get("platform_number"),
		nullString(rec.get("project_name")),
		nullString(rec.get("pi_name")),
		nullString(rec.get("platform_type")),
		nullTime(rec.get("launch_date")),
		nullFloat(rec.get("launch_latitude")),
		nullFloat(rec.get("launch_longitude")),
		nullString(rec.get("float_owner")),
		nullString(rec.get("operating_institution")),
		nullString(rec.get("data_centre")),
	}, nil
}

func parseCycleRow(rec record) ([]any, error) {
	cycleNum, err := strconv.Atoi(rec.get("cycle_number"))
	if err != nil {
		return nil, fmt.Errorf("cycle_number %q: %w", rec.get("cycle_number"), err)
	}
	return []any{
		rec.get("platform_number"),
		int32(cycleNum),
		nullInt(rec.get("profile_number")),
		nullTime(rec.get("date")),
		nullFloat(rec.get("latitude")),
		nullFloat(rec.get("longitude")),
		nullString(rec.get("position_qc")),
		nullString(rec.get("direction")),
		nullString(rec.get("data_mode")),
		nullString(rec.get("pressure_qc")),
		nullString(rec.get("temperature_qc")),
		nullString(rec.get("salinity_qc")),
	}, nil
}

func parseMeasurementRow(rec record) ([]any, error) {
	cycleNum, err := strconv.Atoi(rec.get("cycle_number"))
	if err != nil {
		return nil, fmt.Errorf("cycle_number %q: %w", rec.get("cycle_number"), err)
	}
	level, err := strconv.Atoi(rec.get("level"))
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", rec.get("level"), err)
	}
	return []any{
		rec.get("platform_number"),
		int32(cycleNum),
		int32(level),
		nullFloat(rec.get("pressure")),
		nullFloat(rec.get("temperature")),
		nullFloat(rec.get("salinity")),
		nullFloat(rec.get("oxygen")),
		nullString(rec.get("pressure_qc")),
		nullString(rec.get("temperature_qc")),
		nullString(rec.get("salinity_qc")),
	}, nil
}

// nullString maps empty or NaN-like CSV fields to SQL NULL.
func nullString(s string) any {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	return s
}

func nullFloat(s string) any {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return f
}

func nullInt(s string) any {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return int32(n)
}

// nullTime accepts RFC 3339 or date-only timestamps.
func nullTime(s string) any {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return nil
}
