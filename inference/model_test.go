package inference

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/gbt"
	"github.com/quartzsolar/nationalboost-go/grid"
	"github.com/quartzsolar/nationalboost-go/nwp"
)

var testInitTime = time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC)

func testModelConfig(override bool) config.AppConfigModel {
	return config.AppConfigModel{
		Name:                  "uk_national_test",
		Horizons:              []int{1, 2, 3},
		OverwriteReadDatetime: override,
	}
}

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	return g
}

func testSnapshot() *nwp.Snapshot {
	return &nwp.Snapshot{
		NWP: &nwp.Dataset{
			InitTime: testInitTime,
			Steps:    []int{1, 2, 3},
			Channels: []string{"dswrf", "t"},
			X:        []float64{1, 2},
			Y:        []float64{3, 4},
			Values: [][][]float64{
				{{10, 20}, {280, 282}},
				{{12, 22}, {281, 283}},
				{{14, 24}, {282, 284}},
			},
		},
		GSP: &nwp.GenerationSeries{
			Times:    []time.Time{testInitTime.Add(-time.Hour), testInitTime},
			ValuesMW: []float64{180, 200},
		},
	}
}

// leafModel always predicts a constant: one tree whose root is a leaf.
func leafModel(value float64) *gbt.Model {
	return &gbt.Model{
		Name:        "test",
		NumFeatures: 3, // two channels plus the generation lag
		Trees:       []*gbt.Node{{Leaf: &value}},
	}
}

// countingLoader counts LoadModel invocations per horizon.
type countingLoader struct {
	calls map[int]int
	fail  bool
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: map[int]int{}}
}

func (l *countingLoader) LoadModel(ctx context.Context, horizon int) (*gbt.Model, error) {
	l.calls[horizon]++
	if l.fail {
		return nil, fmt.Errorf("artifact for horizon %d is gone", horizon)
	}
	return leafModel(float64(100 * horizon)), nil
}

func TestModelRequiresInitialise(t *testing.T) {
	m := NewModel(testModelConfig(true), newCountingLoader(), testGrid(t))

	if _, err := m.PredictAll(context.Background(), testSnapshot()); err == nil {
		t.Error("PredictAll() before Initialise() expected error, got nil")
	}
	if _, err := m.Predict(context.Background(), 1, testSnapshot()); err == nil {
		t.Error("Predict() before Initialise() expected error, got nil")
	}
}

func TestInitialiseFailsOnMissingArtifact(t *testing.T) {
	loader := newCountingLoader()
	loader.fail = true
	m := NewModel(testModelConfig(true), loader, testGrid(t))

	if err := m.Initialise(context.Background()); err == nil {
		t.Error("Initialise() with failing loader expected error, got nil")
	}
}

func TestLoaderInvokedOncePerHorizon(t *testing.T) {
	loader := newCountingLoader()
	m := NewModel(testModelConfig(true), loader, testGrid(t))
	ctx := context.Background()

	if err := m.Initialise(ctx); err != nil {
		t.Fatalf("Initialise() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.PredictAll(ctx, testSnapshot()); err != nil {
			t.Fatalf("PredictAll() #%d error: %v", i+1, err)
		}
	}

	for _, h := range []int{1, 2, 3} {
		if loader.calls[h] != 1 {
			t.Errorf("loader called %d times for horizon %d, expected 1", loader.calls[h], h)
		}
	}
}

func TestPredictAllBatch(t *testing.T) {
	m := NewModel(testModelConfig(true), newCountingLoader(), testGrid(t))
	ctx := context.Background()

	if err := m.Initialise(ctx); err != nil {
		t.Fatalf("Initialise() error: %v", err)
	}

	batch, err := m.PredictAll(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("PredictAll() error: %v", err)
	}

	if len(batch) != 3 {
		t.Fatalf("PredictAll() expected 3 predictions, got %d", len(batch))
	}
	for i, p := range batch {
		if p.Horizon != i+1 {
			t.Errorf("batch position %d expected horizon %d, got %d", i, i+1, p.Horizon)
		}
		if expected := float64(100 * (i + 1)); p.ValueMW != expected {
			t.Errorf("horizon %d expected value %v, got %v", p.Horizon, expected, p.ValueMW)
		}
		if !p.BaseTime.Equal(batch[0].BaseTime) {
			t.Error("all predictions in a batch must share one base time")
		}
	}
}

func TestBaseTimePolicy(t *testing.T) {
	wallClock := time.Date(2023, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		override bool
		expected time.Time
	}{
		{"override takes snapshot init time", true, testInitTime},
		{"no override takes wall clock", false, wallClock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(testModelConfig(tt.override), newCountingLoader(), testGrid(t))
			m.Now = func() time.Time { return wallClock }
			ctx := context.Background()

			if err := m.Initialise(ctx); err != nil {
				t.Fatalf("Initialise() error: %v", err)
			}

			batch, err := m.PredictAll(ctx, testSnapshot())
			if err != nil {
				t.Fatalf("PredictAll() error: %v", err)
			}
			if !batch[0].BaseTime.Equal(tt.expected) {
				t.Errorf("expected base time %v, got %v", tt.expected, batch[0].BaseTime)
			}
		})
	}
}

func TestPredictUnconfiguredHorizon(t *testing.T) {
	m := NewModel(testModelConfig(true), newCountingLoader(), testGrid(t))
	ctx := context.Background()

	if err := m.Initialise(ctx); err != nil {
		t.Fatalf("Initialise() error: %v", err)
	}

	if _, err := m.Predict(ctx, 42, testSnapshot()); err == nil {
		t.Error("Predict() for unconfigured horizon expected error, got nil")
	}
}

func TestPredictAllMisalignedSnapshot(t *testing.T) {
	m := NewModel(testModelConfig(true), newCountingLoader(), testGrid(t))
	ctx := context.Background()

	if err := m.Initialise(ctx); err != nil {
		t.Fatalf("Initialise() error: %v", err)
	}

	snap := testSnapshot()
	snap.NWP.X = []float64{9, 2} // does not match the trained grid

	batch, err := m.PredictAll(ctx, snap)
	if err == nil {
		t.Fatal("PredictAll() with misaligned snapshot expected error, got nil")
	}
	if !errors.Is(err, grid.ErrMisaligned) {
		t.Errorf("expected ErrMisaligned, got %v", err)
	}
	if batch != nil {
		t.Error("misaligned snapshot must not produce any predictions")
	}
}

func TestFeatureConstruction(t *testing.T) {
	// Trees that gate on each feature pin down the vector layout:
	// spatial channel means first, generation lag last.
	leaf := func(v float64) *gbt.Node { return &gbt.Node{Leaf: &v} }
	model := &gbt.Model{
		Name:        "feature_probe",
		NumFeatures: 3,
		Trees: []*gbt.Node{
			// dswrf spatial mean is (10+20)/2 = 15
			{Feature: 0, Threshold: 15.5, Left: leaf(1), Right: leaf(-1)},
			// t spatial mean is (280+282)/2 = 281
			{Feature: 1, Threshold: 281.5, Left: leaf(10), Right: leaf(-10)},
			// generation lag at init time is 200
			{Feature: 2, Threshold: 150, Left: leaf(-100), Right: leaf(100)},
		},
	}

	loader := LoaderFunc(func(ctx context.Context, horizon int) (*gbt.Model, error) {
		return model, nil
	})

	m := NewModel(testModelConfig(true), loader, testGrid(t))
	ctx := context.Background()
	if err := m.Initialise(ctx); err != nil {
		t.Fatalf("Initialise() error: %v", err)
	}

	got, err := m.Predict(ctx, 1, testSnapshot())
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if expected := 1.0 + 10.0 + 100.0; got != expected {
		t.Errorf("Predict() expected %v, got %v", expected, got)
	}
}
