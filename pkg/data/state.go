package data

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	insertStateVal = `INSERT INTO state (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP`

	selectStateVal = `SELECT value FROM state WHERE name = ?`

	stateQueries = map[string]string{
		"run":    "SELECT COUNT(*) FROM run",
		"result": "SELECT COUNT(*) FROM result",
	}
)

// SaveState upserts a named counter (e.g. activities loaded by the last
// fetch).
func SaveState(db *sql.DB, name string, value int64) error {
	if db == nil {
		return errDBNotInitialized
	}
	if name == "" {
		return errors.New("state name required")
	}

	if _, err := db.Exec(insertStateVal, name, value, value); err != nil {
		return fmt.Errorf("saving state %s: %w", name, err)
	}
	return nil
}

// GetState returns a named counter, zero when unset.
func GetState(db *sql.DB, name string) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	var v int64
	if err := db.QueryRow(selectStateVal, name).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("querying state %s: %w", name, err)
	}
	return v, nil
}

// GetDataState returns row counts and saved counters describing the
// current state of the local database.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, q := range stateQueries {
		var count int64
		if err := db.QueryRow(q).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s rows: %w", k, err)
		}
		state[k] = count
	}

	rows, err := db.Query("SELECT name, value FROM state")
	if err != nil {
		return nil, fmt.Errorf("querying state rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name string
			v    int64
		)
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		state[name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state rows: %w", err)
	}

	return state, nil
}
