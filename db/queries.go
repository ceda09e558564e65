package db

import (
	"database/sql"
	"fmt"
	"time"
)

type DiscoveryRun struct {
	ID           string
	LoopDriverID string
	DeviceCount  int
	BrokenLoop   bool
	RanAt        time.Time
}

type SimEvent struct {
	ID          string
	EventType   string
	DeviceID    string
	OutputCount int
	OccurredAt  time.Time
}

// GetDiscoveryRuns retrieves discovery runs, newest first.
func GetDiscoveryRuns(db *sql.DB, limit int) ([]DiscoveryRun, error) {
	rows, err := db.Query(`SELECT id, loop_driver_id, device_count, broken_loop, ran_at FROM discovery_runs ORDER BY ran_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query discovery runs: %w", err)
	}
	defer rows.Close()

	var runs []DiscoveryRun
	for rows.Next() {
		var r DiscoveryRun
		var ranAt string
		if err := rows.Scan(&r.ID, &r.LoopDriverID, &r.DeviceCount, &r.BrokenLoop, &ranAt); err != nil {
			return nil, fmt.Errorf("failed to scan discovery run: %w", err)
		}
		r.RanAt, _ = time.Parse(time.RFC3339, ranAt)
		runs = append(runs, r)
	}
	return runs, nil
}

// GetRecentSimEvents retrieves simulation events, newest first.
func GetRecentSimEvents(db *sql.DB, limit int) ([]SimEvent, error) {
	rows, err := db.Query(`SELECT id, event_type, device_id, output_count, occurred_at FROM sim_events ORDER BY occurred_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sim events: %w", err)
	}
	defer rows.Close()

	var events []SimEvent
	for rows.Next() {
		var e SimEvent
		var device sql.NullString
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.EventType, &device, &e.OutputCount, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan sim event: %w", err)
		}
		if device.Valid {
			e.DeviceID = device.String
		}
		e.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
		events = append(events, e)
	}
	return events, nil
}

// ListEventsCLI prints recent simulation events for the debug CLI.
func ListEventsCLI(dbPath string, limit int) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, err := GetRecentSimEvents(conn, limit)
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("%s  %-14s device=%-20s outputs=%d\n",
			e.OccurredAt.Format(time.RFC3339), e.EventType, e.DeviceID, e.OutputCount)
	}
	return nil
}

// ListRunsCLI prints recent discovery runs for the debug CLI.
func ListRunsCLI(dbPath string, limit int) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	runs, err := GetDiscoveryRuns(conn, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  driver=%-20s devices=%-4d broken=%v\n",
			r.RanAt.Format(time.RFC3339), r.LoopDriverID, r.DeviceCount, r.BrokenLoop)
	}
	return nil
}

// ClearEventsCLI deletes all recorded simulation events.
func ClearEventsCLI(dbPath string) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := conn.Exec(`DELETE FROM sim_events`)
	if err != nil {
		return fmt.Errorf("failed to clear sim events: %w", err)
	}
	deleted, _ := result.RowsAffected()
	fmt.Printf("Deleted %d sim events\n", deleted)
	return nil
}
