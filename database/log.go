package database

import (
	"context"
	"fmt"
	"time"
)

type LogEntryRow struct {
	Timestamp time.Time
	Level     int
	Message   string
	Attrs     string
}

func (d *Database) SaveLogEntry(ctx context.Context, r LogEntryRow) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO log (timestamp, level, message, attrs)
		VALUES (?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Level,
		r.Message,
		r.Attrs)
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

// PurgeLog keeps the log table at most maxEntries rows, dropping the oldest.
func (d *Database) PurgeLog(ctx context.Context, maxEntries int) error {
	_, err := d.write.ExecContext(ctx, `
		DELETE FROM log WHERE id NOT IN (
			SELECT id FROM log ORDER BY id DESC LIMIT ?
		)`, maxEntries)
	if err != nil {
		return fmt.Errorf("purging log: %w", err)
	}
	return nil
}
