package tabular

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"impactproof/domain/record"
)

// PostgresReader materializes the result of a configured query as the input
// batch. Row order follows the query's ORDER BY; callers that need stable
// drift and duplicate ordering should order explicitly.
type PostgresReader struct {
	db    *sqlx.DB
	query string
	label string
}

// NewPostgresReader opens a connection for the given DSN
func NewPostgresReader(dsn, query string) (*PostgresReader, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresReader{db: db, query: query, label: "postgres"}, nil
}

// Source names the dataset origin
func (r *PostgresReader) Source() string {
	return r.label
}

// Read executes the query and returns every row in result order
func (r *PostgresReader) Read(ctx context.Context) ([]record.RawRow, error) {
	dbRows, err := r.db.QueryxContext(ctx, r.query)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer dbRows.Close()

	var rows []record.RawRow
	for dbRows.Next() {
		row := map[string]interface{}{}
		if err := dbRows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		for col, v := range row {
			// Drivers hand back []byte for text columns
			if b, ok := v.([]byte); ok {
				row[col] = string(b)
			}
		}
		rows = append(rows, record.RawRow(row))
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("read dataset rows: %w", err)
	}
	return rows, nil
}

// Close releases the database connection
func (r *PostgresReader) Close() error {
	return r.db.Close()
}
