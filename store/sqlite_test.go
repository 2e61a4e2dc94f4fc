package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quartzsolar/nationalboost-go/database"
)

func testSQLiteStore(t *testing.T, mode Mode) *SQLiteStore {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "predictions.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(db.Close)

	s := NewSQLiteStore(db, mode)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	return s
}

func sqliteBatch(baseTime time.Time) []Prediction {
	return []Prediction{
		{Horizon: 1, BaseTime: baseTime, ValueMW: 100},
		{Horizon: 2, BaseTime: baseTime, ValueMW: 200},
		{Horizon: 3, BaseTime: baseTime, ValueMW: 300},
	}
}

func TestSQLiteStoreRequiresHandle(t *testing.T) {
	s := NewSQLiteStore(nil, ModeOverwrite)
	if err := s.Connect(context.Background()); err == nil {
		t.Error("Connect() without database handle expected error, got nil")
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	s := testSQLiteStore(t, ModeOverwrite)
	ctx := context.Background()
	baseTime := time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)

	if err := s.Write(ctx, sqliteBatch(baseTime)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Write(ctx, sqliteBatch(baseTime)); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	table, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("overwrite expected 3 records, got %d", len(table))
	}
	for i, p := range table {
		if p.Horizon != i+1 {
			t.Errorf("record %d expected horizon %d, got %d", i, i+1, p.Horizon)
		}
		if !p.BaseTime.Equal(baseTime) {
			t.Errorf("record %d expected base time %v, got %v", i, baseTime, p.BaseTime)
		}
	}
}

func TestSQLiteStoreAppend(t *testing.T) {
	s := testSQLiteStore(t, ModeAppend)
	ctx := context.Background()
	first := time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	if err := s.Write(ctx, sqliteBatch(first)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Write(ctx, sqliteBatch(second)); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	table, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(table) != 6 {
		t.Fatalf("append expected 6 records, got %d", len(table))
	}
	if !table[0].BaseTime.Equal(first) || !table[3].BaseTime.Equal(second) {
		t.Error("appended batches must retain insertion order")
	}
}
