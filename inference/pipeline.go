package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quartzsolar/nationalboost-go/feed"
	"github.com/quartzsolar/nationalboost-go/store"
)

// Pipeline orchestrates one end-to-end run: one snapshot from the feed, one
// full-horizon batch from the model, one write to the store. It holds no
// state between runs; its collaborators are injected and may be reused.
type Pipeline struct {
	logger *slog.Logger
	model  *Model
	feed   feed.Feed
	store  store.Store

	// Now supplies the feed lookup time. Overridable in tests and replay
	// harnesses; the live feed ignores it entirely.
	Now func() time.Time
}

func NewPipeline(model *Model, dataFeed feed.Feed, predictionStore store.Store) *Pipeline {
	return &Pipeline{
		logger: slog.Default().With(slog.String("module", "pipeline")),
		model:  model,
		feed:   dataFeed,
		store:  predictionStore,
		Now:    time.Now,
	}
}

// Run performs exactly one snapshot-to-write cycle. Any failure propagates
// to the caller; the batch is only written after every horizon succeeded.
func (p *Pipeline) Run(ctx context.Context) error {
	at := p.Now().UTC()

	snap, err := p.feed.Snapshot(ctx, at)
	if err != nil {
		return fmt.Errorf("pipeline snapshot: %w", err)
	}

	batch, err := p.model.PredictAll(ctx, snap)
	if err != nil {
		return fmt.Errorf("pipeline inference: %w", err)
	}

	if err := p.store.Write(ctx, batch); err != nil {
		return fmt.Errorf("pipeline write: %w", err)
	}

	p.logger.Info("inference run complete",
		slog.Time("baseTime", batch[0].BaseTime),
		slog.Int("horizons", len(batch)))

	return nil
}
