package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sim event types recorded over a session.
const (
	EventActivate     = "activate"
	EventClear        = "clear"
	EventReset        = "reset"
	EventAlarmRaised  = "alarm_raised"
	EventAlarmCleared = "alarm_cleared"
)

// InsertDiscoveryRun records one loop driver discovery pass.
func InsertDiscoveryRun(db *sql.DB, loopDriverID string, deviceCount int, brokenLoop bool) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO discovery_runs (id, loop_driver_id, device_count, broken_loop, ran_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), loopDriverID, deviceCount, brokenLoop, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert discovery run: %w", err)
	}
	return tx.Commit()
}

// InsertMatchReport records the outcome of a device/config verification pass.
func InsertMatchReport(db *sql.DB, matched, missing, typeMismatch, extra int, valid bool) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO match_reports (id, matched, missing, type_mismatch, extra, valid, ran_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), matched, missing, typeMismatch, extra, valid, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert match report: %w", err)
	}
	return tx.Commit()
}

// InsertSimEvent records one simulation event. deviceID may be empty for
// events that are not tied to a single device (reset, alarm transitions).
func InsertSimEvent(db *sql.DB, eventType, deviceID string, outputCount int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	var device interface{}
	if deviceID != "" {
		device = deviceID
	}
	_, err = tx.Exec(`INSERT INTO sim_events (id, event_type, device_id, output_count, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), eventType, device, outputCount, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert sim event: %w", err)
	}
	return tx.Commit()
}
