package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Evaluation stages persisted in the results table.
const (
	StageChrono  = "chrono"
	StageHoldout = "holdout"
)

var (
	insertRun = `INSERT INTO run (id, seed, train_queries, vali_queries, test_queries)
		VALUES (?, ?, ?, ?, ?)`

	insertResult = `INSERT INTO result (run_id, stage, ranker, context_size, cutoff, ndcg)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, stage, ranker, context_size, cutoff) DO UPDATE SET ndcg = ?`

	selectRuns = `SELECT id, seed, train_queries, vali_queries, test_queries, created_at
		FROM run ORDER BY created_at DESC LIMIT ?`

	selectLatestRun = `SELECT id FROM run ORDER BY created_at DESC LIMIT 1`

	selectResults = `SELECT run_id, stage, ranker, context_size, cutoff, ndcg
		FROM result WHERE run_id = ? ORDER BY ranker, context_size, cutoff`
)

// Run identifies one evaluation run and the dataset it ran against.
type Run struct {
	ID           string    `json:"id"`
	Seed         int64     `json:"seed"`
	TrainQueries int       `json:"train_queries"`
	ValiQueries  int       `json:"vali_queries"`
	TestQueries  int       `json:"test_queries"`
	CreatedAt    time.Time `json:"created_at"`
}

// Result is one NDCG measurement within a run.
type Result struct {
	RunID       string  `json:"run_id"`
	Stage       string  `json:"stage"`
	Ranker      string  `json:"ranker"`
	ContextSize int     `json:"context_size"`
	Cutoff      int     `json:"cutoff"`
	NDCG        float64 `json:"ndcg"`
}

// SaveRun inserts a run row.
func SaveRun(db *sql.DB, r *Run) error {
	if db == nil {
		return errDBNotInitialized
	}
	if r == nil || r.ID == "" {
		return errors.New("run with id required")
	}

	if _, err := db.Exec(insertRun, r.ID, r.Seed, r.TrainQueries, r.ValiQueries, r.TestQueries); err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}
	return nil
}

// SaveResults inserts result rows in a single transaction.
func SaveResults(db *sql.DB, results []*Result) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertResult)
	if err != nil {
		return fmt.Errorf("preparing result statement: %w", err)
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Stmt(stmt).Exec(r.RunID, r.Stage, r.Ranker, r.ContextSize, r.Cutoff, r.NDCG, r.NDCG); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rolling back transaction: %w", rbErr)
			}
			return fmt.Errorf("inserting result for %s: %w", r.Ranker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(selectRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Seed, &r.TrainQueries, &r.ValiQueries, &r.TestQueries, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}

	return runs, nil
}

// GetLatestRunID returns the id of the most recent run.
func GetLatestRunID(db *sql.DB) (string, error) {
	if db == nil {
		return "", errDBNotInitialized
	}

	var id string
	if err := db.QueryRow(selectLatestRun).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.New("no runs recorded yet")
		}
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return id, nil
}

// GetResults returns all results for a run.
func GetResults(db *sql.DB, runID string) ([]*Result, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if runID == "" {
		return nil, errors.New("runID required")
	}

	rows, err := db.Query(selectResults, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r := &Result{}
		if err := rows.Scan(&r.RunID, &r.Stage, &r.Ranker, &r.ContextSize, &r.Cutoff, &r.NDCG); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}

	return results, nil
}
