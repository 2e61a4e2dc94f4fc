package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quartzsolar/nationalboost-go/convert"
	"github.com/quartzsolar/nationalboost-go/hours"
)

type PredictionRow struct {
	BaseTime time.Time
	Horizon  int
	Target   hours.DateHour
	ValueMW  float64
}

// SavePredictions persists one batch in a single transaction. With overwrite
// set the whole table is replaced by the batch; otherwise the batch is
// appended after any existing rows.
func (d *Database) SavePredictions(ctx context.Context, rows []PredictionRow, overwrite bool) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start prediction transaction: %w", err)
	}

	if overwrite {
		if _, err := tx.ExecContext(ctx, `DELETE FROM prediction`); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback prediction overwrite: %w", rbErr)
			}
			return fmt.Errorf("truncate prediction table: %w", err)
		}
	}

	for _, row := range rows {
		d.logger.Debug("saving prediction",
			slog.Time("baseTime", row.BaseTime),
			slog.Int("horizon", row.Horizon),
			slog.String("target", row.Target.String()),
			slog.Float64("valueMw", row.ValueMW))

		_, err := tx.ExecContext(ctx, `
		INSERT INTO prediction (
			base_time,
			horizon,
			target_date,
			target_hour,
			value_mw
		) VALUES (?, ?, ?, ?, ?)`,
			row.BaseTime.UTC().Format(time.RFC3339),
			row.Horizon,
			row.Target.Date,
			row.Target.Hour,
			convert.TwoDecimals(row.ValueMW))
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback prediction insert: %w", rbErr)
			}
			return fmt.Errorf("saving prediction for horizon %d: %w", row.Horizon, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prediction batch: %w", err)
	}

	return nil
}

// GetPredictions returns the whole table in insertion order.
func (d *Database) GetPredictions(ctx context.Context) ([]PredictionRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT base_time, horizon, target_date, target_hour, value_mw
		FROM prediction
		ORDER BY id`)
	if err != nil {
		d.logger.Error("error when fetching predictions", slog.Any("error", err))
		return nil, err
	}
	defer rows.Close()

	var predictions []PredictionRow
	for rows.Next() {
		var row PredictionRow
		var baseTime string
		err := rows.Scan(
			&baseTime,
			&row.Horizon,
			&row.Target.Date,
			&row.Target.Hour,
			&row.ValueMW)
		if err != nil {
			d.logger.Error("error when scanning prediction row", slog.Any("error", err))
			return nil, err
		}
		row.BaseTime = hours.FromIso(baseTime)
		predictions = append(predictions, row)
	}

	return predictions, rows.Err()
}

func (d *Database) PurgePredictions(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "prediction", retentionDays)
}
