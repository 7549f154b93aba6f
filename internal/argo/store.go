package argo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrFloatNotFound indicates the requested platform number does not exist.
var ErrFloatNotFound = errors.New("float not found")

// ErrNoCycles indicates a float has no cycle records.
var ErrNoCycles = errors.New("no cycle records")

// cycleCols is the standard SELECT column list for scanCycle.
const cycleCols = `platform_number, cycle_number, COALESCE(profile_number, 0), date,
	latitude, longitude,
	COALESCE(position_qc, ''), COALESCE(direction, ''), COALESCE(data_mode, ''),
	COALESCE(pressure_qc, ''), COALESCE(temperature_qc, ''), COALESCE(salinity_qc, '')`

// Store provides read access to the Argo tables backed by PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines; each call
// acquires its own connection from the pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates an argo Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// CountFloats returns the number of distinct floats in the store.
func (s *Store) CountFloats(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT platform_number) FROM floats`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting floats: %w", err)
	}
	return n, nil
}

// CountCycles returns the total number of cycle records.
func (s *Store) CountCycles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cycles: %w", err)
	}
	return n, nil
}

// CountMeasurements returns the total number of measurement records.
func (s *Store) CountMeasurements(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting measurements: %w", err)
	}
	return n, nil
}

// Float returns the metadata row for a platform number.
// Returns ErrFloatNotFound if the float does not exist.
func (s *Store) Float(ctx context.Context, platformNumber string) (*Float, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT platform_number,
		        COALESCE(project_name, ''), COALESCE(pi_name, ''),
		        COALESCE(platform_type, ''), launch_date,
		        launch_latitude, launch_longitude,
		        COALESCE(float_owner, ''), COALESCE(operating_institution, ''),
		        COALESCE(data_centre, '')
		 FROM floats
		 WHERE platform_number = $1`, platformNumber)

	var (
		f      Float
		launch pgtype.Timestamptz
		lat    pgtype.Float8
		lon    pgtype.Float8
	)
	err := row.Scan(
		&f.PlatformNumber, &f.ProjectName, &f.PIName,
		&f.PlatformType, &launch,
		&lat, &lon,
		&f.FloatOwner, &f.OperatingInstitution, &f.DataCentre,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFloatNotFound
		}
		return nil, fmt.Errorf("fetching float %q: %w", platformNumber, err)
	}
	if launch.Valid {
		f.LaunchDate = launch.Time
	}
	if lat.Valid {
		f.LaunchLatitude = lat.Float64
	}
	if lon.Valid {
		f.LaunchLongitude = lon.Float64
	}
	return &f, nil
}

// FloatExists reports whether the platform number is present in the floats table.
func (s *Store) FloatExists(ctx context.Context, platformNumber string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM floats WHERE platform_number = $1)`,
		platformNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking float %q: %w", platformNumber, err)
	}
	return exists, nil
}

// LatestCycle returns the cycle with the highest cycle number for a float.
// Returns ErrNoCycles if the float has no cycle records.
func (s *Store) LatestCycle(ctx context.Context, platformNumber string) (*Cycle, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+cycleCols+`
		 FROM cycles
		 WHERE platform_number = $1
		 ORDER BY cycle_number DESC
		 LIMIT 1`, platformNumber)

	c, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCycles
		}
		return nil, fmt.Errorf("fetching latest cycle for %q: %w", platformNumber, err)
	}
	return c, nil
}

// FloatsInRegion returns up to limit distinct platform numbers whose cycles
// fall inside the bounding box (inclusive bounds on both axes).
func (s *Store) FloatsInRegion(ctx context.Context, box BoundingBox, limit int32) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT f.platform_number
		 FROM floats f
		 JOIN cycles c ON f.platform_number = c.platform_number
		 WHERE c.latitude BETWEEN $1 AND $2
		   AND c.longitude BETWEEN $3 AND $4
		 ORDER BY f.platform_number
		 LIMIT $5`,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, limit)
	if err != nil {
		return nil, fmt.Errorf("querying region floats: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning platform number: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating region floats: %w", err)
	}
	return ids, nil
}

// Measurements returns the depth-level readings for one cycle, ordered by
// level. Missing numeric values scan as NaN.
func (s *Store) Measurements(ctx context.Context, platformNumber string, cycleNumber int32) ([]Measurement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT platform_number, cycle_number, level,
		        pressure, temperature, salinity, oxygen,
		        COALESCE(pressure_qc, ''), COALESCE(temperature_qc, ''), COALESCE(salinity_qc, '')
		 FROM measurements
		 WHERE platform_number = $1 AND cycle_number = $2
		 ORDER BY level`, platformNumber, cycleNumber)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var (
			m    Measurement
			pres pgtype.Float8
			temp pgtype.Float8
			sal  pgtype.Float8
			oxy  pgtype.Float8
		)
		err := rows.Scan(
			&m.PlatformNumber, &m.CycleNumber, &m.Level,
			&pres, &temp, &sal, &oxy,
			&m.PressureQC, &m.TemperatureQC, &m.SalinityQC,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		m.Pressure = floatOrNaN(pres)
		m.Temperature = floatOrNaN(temp)
		m.Salinity = floatOrNaN(sal)
		m.Oxygen = floatOrNaN(oxy)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating measurements: %w", err)
	}
	return out, nil
}

func floatOrNaN(f pgtype.Float8) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

// Cycles returns all cycles ordered by platform number and cycle number.
// Used to build the semantic index at startup.
func (s *Store) Cycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+cycleCols+`
		 FROM cycles
		 ORDER BY platform_number, cycle_number`)
	if err != nil {
		return nil, fmt.Errorf("querying cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cycle: %w", err)
		}
		cycles = append(cycles, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cycles: %w", err)
	}
	return cycles, nil
}

// scanCycle scans a row in cycleCols order. Nullable date and position
// columns scan through pgtype and default to zero values.
func scanCycle(row pgx.Row) (*Cycle, error) {
	var (
		c    Cycle
		date pgtype.Timestamptz
		lat  pgtype.Float8
		lon  pgtype.Float8
	)
	err := row.Scan(
		&c.PlatformNumber, &c.CycleNumber, &c.ProfileNumber, &date,
		&lat, &lon,
		&c.PositionQC, &c.Direction, &c.DataMode,
		&c.PressureQC, &c.TemperatureQC, &c.SalinityQC,
	)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		c.Date = date.Time
	}
	if lat.Valid {
		c.Latitude = lat.Float64
	}
	if lon.Valid {
		c.Longitude = lon.Float64
	}
	return &c, nil
}
