// Package inference couples the per-horizon model registry, the coordinate
// grid and the data feed into the scheduled forecast pipeline.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/gbt"
	"github.com/quartzsolar/nationalboost-go/grid"
	"github.com/quartzsolar/nationalboost-go/nwp"
	"github.com/quartzsolar/nationalboost-go/store"
)

// Model maps every configured horizon to its trained regression model and
// turns one data snapshot into a full prediction batch. The model cache is
// owned exclusively by this type; there is no invalidation, a loaded model
// is trusted for the lifetime of the process.
type Model struct {
	logger      *slog.Logger
	cnfg        config.AppConfigModel
	loader      ArtifactLoader
	grid        *grid.Grid
	cache       map[int]*gbt.Model
	initialised bool

	// Now is the wall clock used to stamp batches when the read-datetime
	// override is off. Overridable in tests.
	Now func() time.Time
}

func NewModel(cnfg config.AppConfigModel, loader ArtifactLoader, g *grid.Grid) *Model {
	return &Model{
		logger: slog.Default().With(slog.String("module", "inference"), slog.String("model", cnfg.Name)),
		cnfg:   cnfg,
		loader: loader,
		grid:   g,
		cache:  map[int]*gbt.Model{},
		Now:    time.Now,
	}
}

// Initialise must be called before any prediction call. It warms the model
// cache for every configured horizon; an artifact that cannot be loaded is
// fatal here, so no partial-horizon batch can ever be produced.
func (m *Model) Initialise(ctx context.Context) error {
	if len(m.cnfg.Horizons) == 0 {
		return fmt.Errorf("model %q has no forecast horizons configured", m.cnfg.Name)
	}

	for _, h := range m.cnfg.Horizons {
		if _, err := m.model(ctx, h); err != nil {
			return err
		}
	}

	m.logger.Debug("model initialised", slog.Int("horizons", len(m.cnfg.Horizons)))
	m.initialised = true
	return nil
}

// model returns the cached regression model for a horizon, loading it on
// first use. The artifact loader is invoked at most once per horizon.
func (m *Model) model(ctx context.Context, horizon int) (*gbt.Model, error) {
	if cached, ok := m.cache[horizon]; ok {
		return cached, nil
	}

	if !slices.Contains(m.cnfg.Horizons, horizon) {
		return nil, fmt.Errorf("horizon %d is not configured for model %q", horizon, m.cnfg.Name)
	}

	m.logger.Debug("loading model artifact", slog.Int("horizon", horizon))
	loaded, err := m.loader.LoadModel(ctx, horizon)
	if err != nil {
		return nil, err
	}

	m.cache[horizon] = loaded
	return loaded, nil
}

// features builds one feature vector from the snapshot at the configured
// grid positions: the spatial mean of every channel at the horizon's step,
// plus the latest ground-truth generation lag.
func (m *Model) features(snap *nwp.Snapshot, horizon int) ([]float64, error) {
	if err := m.grid.Align(snap.NWP.X, snap.NWP.Y); err != nil {
		return nil, err
	}

	step, err := snap.NWP.StepIndex(horizon)
	if err != nil {
		return nil, err
	}

	features := make([]float64, 0, len(snap.NWP.Channels)+1)
	for c := range snap.NWP.Channels {
		cells := snap.NWP.Cells(step, c)
		sum := 0.0
		for _, v := range cells {
			sum += v
		}
		features = append(features, sum/float64(len(cells)))
	}

	lag, err := snap.GSP.LatestAt(snap.InitTime())
	if err != nil {
		return nil, err
	}
	features = append(features, lag)

	return features, nil
}

// baseTime stamps a batch per the configured read-time policy.
func (m *Model) baseTime(snap *nwp.Snapshot) time.Time {
	if m.cnfg.OverwriteReadDatetime {
		return snap.InitTime()
	}
	return m.Now().UTC()
}

// Predict runs a single horizon against one snapshot.
func (m *Model) Predict(ctx context.Context, horizon int, snap *nwp.Snapshot) (float64, error) {
	if !m.initialised {
		return 0, fmt.Errorf("model %q is not initialised", m.cnfg.Name)
	}

	regressor, err := m.model(ctx, horizon)
	if err != nil {
		return 0, err
	}

	features, err := m.features(snap, horizon)
	if err != nil {
		return 0, err
	}

	return regressor.Predict(features)
}

// PredictAll produces the full configured horizon batch from one snapshot,
// in ascending-horizon order with a shared base time. It either fully
// succeeds or returns no predictions at all.
func (m *Model) PredictAll(ctx context.Context, snap *nwp.Snapshot) ([]store.Prediction, error) {
	if !m.initialised {
		return nil, fmt.Errorf("model %q is not initialised", m.cnfg.Name)
	}

	horizons := slices.Clone(m.cnfg.Horizons)
	slices.Sort(horizons)

	base := m.baseTime(snap)
	batch := make([]store.Prediction, 0, len(horizons))
	for _, h := range horizons {
		value, err := m.Predict(ctx, h, snap)
		if err != nil {
			return nil, fmt.Errorf("predicting horizon %d: %w", h, err)
		}
		batch = append(batch, store.Prediction{
			Horizon:  h,
			BaseTime: base,
			ValueMW:  value,
		})
	}

	return batch, nil
}
