package store

import (
	"context"
	"fmt"

	"github.com/quartzsolar/nationalboost-go/database"
	"github.com/quartzsolar/nationalboost-go/hours"
	"github.com/quartzsolar/nationalboost-go/slice"
)

// SQLiteStore persists predictions through the SQLite layer. The database
// handle is injected and owned by the caller; it may be shared with the
// logging handler and outlive any number of pipeline runs.
type SQLiteStore struct {
	db        *database.Database
	mode      Mode
	connected bool
}

func NewSQLiteStore(db *database.Database, mode Mode) *SQLiteStore {
	return &SQLiteStore{db: db, mode: mode}
}

func (s *SQLiteStore) Connect(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("sqlite store has no database handle")
	}
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("sqlite store connect: %w", err)
	}
	s.connected = true
	return nil
}

func (s *SQLiteStore) Close() error {
	s.connected = false
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context) ([]Prediction, error) {
	if !s.connected {
		return nil, fmt.Errorf("sqlite store is not connected")
	}

	rows, err := s.db.GetPredictions(ctx)
	if err != nil {
		return nil, err
	}

	return slice.Map(rows, func(row database.PredictionRow) Prediction {
		return Prediction{
			Horizon:  row.Horizon,
			BaseTime: row.BaseTime,
			ValueMW:  row.ValueMW,
		}
	}), nil
}

func (s *SQLiteStore) Write(ctx context.Context, batch []Prediction) error {
	if !s.connected {
		return fmt.Errorf("sqlite store is not connected")
	}

	rows := slice.Map(batch, func(p Prediction) database.PredictionRow {
		return database.PredictionRow{
			BaseTime: p.BaseTime,
			Horizon:  p.Horizon,
			Target:   hours.FromTime(p.BaseTime).Add(p.Horizon),
			ValueMW:  p.ValueMW,
		}
	})

	return s.db.SavePredictions(ctx, rows, s.mode == ModeOverwrite)
}
