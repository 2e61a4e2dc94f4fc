package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quartzsolar/nationalboost-go/hours"
)

func testDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "predictions.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func testRows(base time.Time) []PredictionRow {
	rows := make([]PredictionRow, 3)
	for i := range rows {
		h := i + 1
		rows[i] = PredictionRow{
			BaseTime: base,
			Horizon:  h,
			Target:   hours.FromTime(base).Add(h),
			ValueMW:  float64(100 * h),
		}
	}
	return rows
}

func TestSaveAndGetPredictions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)

	if err := db.SavePredictions(ctx, testRows(base), false); err != nil {
		t.Fatalf("SavePredictions() error: %v", err)
	}

	got, err := db.GetPredictions(ctx)
	if err != nil {
		t.Fatalf("GetPredictions() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetPredictions() expected 3 rows, got %d", len(got))
	}
	for i, row := range got {
		if row.Horizon != i+1 {
			t.Errorf("row %d expected horizon %d, got %d", i, i+1, row.Horizon)
		}
		if !row.BaseTime.Equal(base) {
			t.Errorf("row %d expected base time %v, got %v", i, base, row.BaseTime)
		}
		if expected := (hours.DateHour{Date: "2020-08-02", Hour: uint8(i + 1)}); row.Target != expected {
			t.Errorf("row %d expected target %v, got %v", i, expected, row.Target)
		}
	}
}

func TestSavePredictionsOverwrite(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)

	if err := db.SavePredictions(ctx, testRows(base), false); err != nil {
		t.Fatalf("SavePredictions() error: %v", err)
	}

	replacement := testRows(base.Add(24 * time.Hour))
	for i := 0; i < 2; i++ {
		if err := db.SavePredictions(ctx, replacement, true); err != nil {
			t.Fatalf("SavePredictions(overwrite) #%d error: %v", i+1, err)
		}
	}

	got, err := db.GetPredictions(ctx)
	if err != nil {
		t.Fatalf("GetPredictions() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("overwrite twice expected 3 rows, got %d", len(got))
	}
	if !got[0].BaseTime.Equal(base.Add(24 * time.Hour)) {
		t.Errorf("expected replacement batch, got base time %v", got[0].BaseTime)
	}
}

func TestSavePredictionsAppendOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)

	if err := db.SavePredictions(ctx, testRows(base), false); err != nil {
		t.Fatalf("SavePredictions(b1) error: %v", err)
	}
	if err := db.SavePredictions(ctx, testRows(base.Add(time.Hour)), false); err != nil {
		t.Fatalf("SavePredictions(b2) error: %v", err)
	}

	got, err := db.GetPredictions(ctx)
	if err != nil {
		t.Fatalf("GetPredictions() error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("append expected 6 rows, got %d", len(got))
	}
	for i := 0; i < 3; i++ {
		if !got[i].BaseTime.Equal(base) {
			t.Errorf("row %d should belong to the first batch", i)
		}
		if !got[i+3].BaseTime.Equal(base.Add(time.Hour)) {
			t.Errorf("row %d should belong to the second batch", i+3)
		}
	}
}

func TestGetPredictionsEmpty(t *testing.T) {
	db := testDB(t)

	got, err := db.GetPredictions(context.Background())
	if err != nil {
		t.Fatalf("GetPredictions() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty table, got %d rows", len(got))
	}
}

func TestPurgePredictions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	old := testRows(time.Now().UTC().Add(-10 * 24 * time.Hour))
	fresh := testRows(time.Now().UTC())
	if err := db.SavePredictions(ctx, append(old, fresh...), false); err != nil {
		t.Fatalf("SavePredictions() error: %v", err)
	}

	if err := db.PurgePredictions(ctx, 7); err != nil {
		t.Fatalf("PurgePredictions() error: %v", err)
	}

	got, err := db.GetPredictions(ctx)
	if err != nil {
		t.Fatalf("GetPredictions() error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("purge expected 3 remaining rows, got %d", len(got))
	}
}

func TestSaveLogEntryAndPurge(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := db.SaveLogEntry(ctx, LogEntryRow{
			Timestamp: time.Now(),
			Level:     0,
			Message:   "test entry",
			Attrs:     `[{"run":"1"}]`,
		})
		if err != nil {
			t.Fatalf("SaveLogEntry() error: %v", err)
		}
	}

	if err := db.PurgeLog(ctx, 2); err != nil {
		t.Fatalf("PurgeLog() error: %v", err)
	}
}
