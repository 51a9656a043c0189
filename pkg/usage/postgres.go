package usage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresOracle answers usage queries from a field-coordinate traffic table
// maintained by the external analytics pipeline, in the time-windowed
// aggregation style of a dedicated analytics service.
type PostgresOracle struct {
	db *sql.DB
}

// NewPostgresOracle wires an Oracle against an existing connection pool.
func NewPostgresOracle(db *sql.DB) *PostgresOracle {
	return &PostgresOracle{db: db}
}

func (o *PostgresOracle) HasTraffic(ctx context.Context, selector Selector, coordinates []Coordinate) (map[string]bool, error) {
	result := make(map[string]bool, len(coordinates))
	if len(coordinates) == 0 {
		return result, nil
	}

	names := make([]string, len(coordinates))
	for i, c := range coordinates {
		names[i] = c.String()
	}

	const query = `
		SELECT coordinate
		FROM field_usage_daily
		WHERE target_id = $1
		  AND coordinate = ANY($2)
		  AND request_count > 0
		  AND date >= NOW() - ($3 || ' seconds')::interval
		GROUP BY coordinate
	`
	rows, err := o.db.QueryContext(ctx, query, selector.TargetID, pq.Array(names), int64(selector.Window.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("usage: query traffic: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var coord string
		if err := rows.Scan(&coord); err != nil {
			return nil, fmt.Errorf("usage: scan coordinate: %w", err)
		}
		result[coord] = true
	}
	return result, rows.Err()
}
