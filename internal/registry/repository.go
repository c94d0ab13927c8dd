package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository defines the interface for instrument-catalog persistence.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
//
// Only the discovery catalog is persisted: which endpoints exist and what
// objects/methods they expose. Message traffic is never stored.
type Repository interface {
	// SaveCatalog replaces the stored catalog for an endpoint with the
	// given object specs.
	SaveCatalog(ctx context.Context, endpoint string, specs []ObjectSpec) error

	// GetCatalog retrieves the stored catalog for an endpoint.
	// Returns ErrObjectNotFound if the endpoint has no stored catalog.
	GetCatalog(ctx context.Context, endpoint string) ([]ObjectSpec, error)

	// ListEndpoints retrieves all endpoints with a stored catalog,
	// newest registration first.
	ListEndpoints(ctx context.Context) ([]EndpointRecord, error)

	// DeleteCatalog removes the stored catalog for an endpoint.
	DeleteCatalog(ctx context.Context, endpoint string) error
}

// EndpointRecord is one row of the endpoint listing.
type EndpointRecord struct {
	Endpoint     string    `json:"endpoint"`
	ObjectCount  int       `json:"object_count"`
	RegisteredAt time.Time `json:"registered_at"`
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the
// instrument-catalog migrations applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveCatalog replaces the stored catalog for an endpoint.
func (r *SQLiteRepository) SaveCatalog(ctx context.Context, endpoint string, specs []ObjectSpec) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM catalog_objects WHERE endpoint = ?", endpoint,
	); err != nil {
		return fmt.Errorf("clearing catalog for %q: %w", endpoint, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, spec := range specs {
		methodsJSON, err := json.Marshal(spec.Methods)
		if err != nil {
			return fmt.Errorf("encoding methods for %q: %w", spec.ObjectID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_objects (endpoint, object_id, class, methods, registered_at)
			VALUES (?, ?, ?, ?, ?)`,
			endpoint, spec.ObjectID, spec.Class, string(methodsJSON), now,
		); err != nil {
			return fmt.Errorf("inserting catalog object %q: %w", spec.ObjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// GetCatalog retrieves the stored catalog for an endpoint.
func (r *SQLiteRepository) GetCatalog(ctx context.Context, endpoint string) ([]ObjectSpec, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT object_id, class, methods
		FROM catalog_objects
		WHERE endpoint = ?
		ORDER BY object_id`, endpoint)
	if err != nil {
		return nil, fmt.Errorf("querying catalog for %q: %w", endpoint, err)
	}
	defer rows.Close()

	var specs []ObjectSpec
	for rows.Next() {
		var spec ObjectSpec
		var methodsJSON string
		if err := rows.Scan(&spec.ObjectID, &spec.Class, &methodsJSON); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if err := json.Unmarshal([]byte(methodsJSON), &spec.Methods); err != nil {
			return nil, fmt.Errorf("decoding methods for %q: %w", spec.ObjectID, err)
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no catalog for endpoint %q", ErrObjectNotFound, endpoint)
	}
	return specs, nil
}

// ListEndpoints retrieves all endpoints with a stored catalog.
func (r *SQLiteRepository) ListEndpoints(ctx context.Context) ([]EndpointRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT endpoint, COUNT(*), MAX(registered_at)
		FROM catalog_objects
		GROUP BY endpoint
		ORDER BY MAX(registered_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying endpoints: %w", err)
	}
	defer rows.Close()

	var records []EndpointRecord
	for rows.Next() {
		var rec EndpointRecord
		var registeredAt string
		if err := rows.Scan(&rec.Endpoint, &rec.ObjectCount, &registeredAt); err != nil {
			return nil, fmt.Errorf("scanning endpoint row: %w", err)
		}
		rec.RegisteredAt, _ = time.Parse(time.RFC3339, registeredAt) //nolint:errcheck // Format is controlled
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating endpoint rows: %w", err)
	}
	return records, nil
}

// DeleteCatalog removes the stored catalog for an endpoint.
func (r *SQLiteRepository) DeleteCatalog(ctx context.Context, endpoint string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM catalog_objects WHERE endpoint = ?", endpoint,
	)
	if err != nil {
		return fmt.Errorf("deleting catalog for %q: %w", endpoint, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: no catalog for endpoint %q", ErrObjectNotFound, endpoint)
	}
	return nil
}

// ensure interface compliance at compile time.
var _ Repository = (*SQLiteRepository)(nil)
