package location

import (
	"context"
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AppendSample(ctx context.Context, driverID string, lat, lng float64, ts time.Time) error {
	query := `INSERT INTO locations (driver_id, lat, lng, recorded_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, driverID, lat, lng, ts)
	return err
}

// RecentSamples returns the newest samples for one driver, newest first.
func (r *Repository) RecentSamples(ctx context.Context, driverID string, limit int) ([]*Sample, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `SELECT id, driver_id, lat, lng, recorded_at
	          FROM locations
	          WHERE driver_id = $1
	          ORDER BY recorded_at DESC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

// ActiveTrucks returns the latest sample per driver seen in the last hour,
// used to bootstrap the dashboard map before live updates arrive.
func (r *Repository) ActiveTrucks(ctx context.Context) ([]*Sample, error) {
	query := `SELECT DISTINCT ON (driver_id) id, driver_id, lat, lng, recorded_at
	          FROM locations
	          WHERE recorded_at > NOW() - INTERVAL '1 hour'
	          ORDER BY driver_id, recorded_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

func scanSamples(rows *sql.Rows) ([]*Sample, error) {
	var samples []*Sample
	for rows.Next() {
		s := &Sample{}
		if err := rows.Scan(&s.ID, &s.DriverID, &s.Lat, &s.Lng, &s.RecordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
