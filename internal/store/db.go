// Package store persists bulk validation jobs and their per-address
// results to Postgres via pgx.
//
// Grounded on mailvetter's internal/store/db.go for the pgxpool
// connect-and-migrate shape; the results table's status column is new,
// and its data column holds the engine's full ValidationResult as JSONB
// (factors included) so the status/score bands the Coordinator derives
// survive a job's lifetime.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailvetter/internal/engine/models"
)

var DB *pgxpool.Pool

// Init connects to Postgres and runs migrations
func Init(connString string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	DB, err = pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	// Verify connection
	if err := DB.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return runMigrations(ctx)
}

// runMigrations creates the necessary tables if they don't exist
func runMigrations(ctx context.Context) error {
	// Table: jobs (Tracks bulk upload batches)
	queryJobs := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_count INT DEFAULT 0,
		processed_count INT DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW(),
		completed_at TIMESTAMP
	);`

	// Table: results (stores one ValidationResult per address, serialized
	// as JSONB so status/score/factors can be re-derived without a schema
	// migration whenever the scorer changes).
	queryResults := `
	CREATE TABLE IF NOT EXISTS results (
		id SERIAL PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		score INT NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	);`

	if _, err := DB.Exec(ctx, queryJobs); err != nil {
		return fmt.Errorf("migration failed (jobs): %w", err)
	}
	if _, err := DB.Exec(ctx, queryResults); err != nil {
		return fmt.Errorf("migration failed (results): %w", err)
	}

	return nil
}

// SaveResult inserts one validation result and advances the owning
// job's processed_count, marking it completed once every row has landed.
func SaveResult(ctx context.Context, jobID, email string, r *models.ValidationResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	tx, err := DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO results (job_id, email, status, score, data)
		VALUES ($1, $2, $3, $4, $5)
	`, jobID, email, string(r.Status), r.Score, data)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE jobs
		SET processed_count = processed_count + 1,
		    status = CASE
		        WHEN processed_count + 1 >= total_count THEN 'completed'
		        ELSE status
		    END,
		    completed_at = CASE
		        WHEN processed_count + 1 >= total_count THEN NOW()
		        ELSE completed_at
		    END
		WHERE id = $1
	`, jobID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	return tx.Commit(ctx)
}

// CreateJob inserts a new pending job row sized for expectedCount
// addresses.
func CreateJob(ctx context.Context, jobID string, expectedCount int) error {
	_, err := DB.Exec(ctx, `
		INSERT INTO jobs (id, status, total_count, created_at)
		VALUES ($1, 'pending', $2, $3)
	`, jobID, expectedCount, time.Now())
	return err
}
