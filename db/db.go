package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	loop_driver_id TEXT NOT NULL,
	device_count INTEGER NOT NULL,
	broken_loop BOOLEAN NOT NULL,
	ran_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS match_reports (
	id TEXT PRIMARY KEY,
	matched INTEGER NOT NULL,
	missing INTEGER NOT NULL,
	type_mismatch INTEGER NOT NULL,
	extra INTEGER NOT NULL,
	valid BOOLEAN NOT NULL,
	ran_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sim_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	device_id TEXT,
	output_count INTEGER NOT NULL DEFAULT 0,
	occurred_at TEXT NOT NULL
);
`

// Open opens the simulation history database and ensures the schema exists.
func Open(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return conn, nil
}
