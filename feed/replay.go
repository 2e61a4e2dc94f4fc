package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/quartzsolar/nationalboost-go/nwp"
)

// ReplayFeed re-presents a bounded slice of historical data. For any lookup
// time it deterministically selects the newest run at or before that time,
// so the same lookup always yields the identical snapshot.
type ReplayFeed struct {
	logger   *slog.Logger
	datasets []*nwp.Dataset
	gsp      *nwp.GenerationSeries
	from, to time.Time
	ready    bool
}

// NewReplayFeed bounds the given data to [from, to] at construction time.
func NewReplayFeed(datasets []*nwp.Dataset, gsp *nwp.GenerationSeries, from, to time.Time) *ReplayFeed {
	var bounded []*nwp.Dataset
	for _, d := range datasets {
		if !d.InitTime.Before(from) && !d.InitTime.After(to) {
			bounded = append(bounded, d)
		}
	}

	return &ReplayFeed{
		logger:   slog.Default().With(slog.String("module", "feed")),
		datasets: bounded,
		gsp:      gsp.Slice(from, to),
		from:     from,
		to:       to,
	}
}

func (f *ReplayFeed) Initialise(ctx context.Context) error {
	if len(f.datasets) == 0 {
		return fmt.Errorf("replay feed has no datasets in range %s to %s",
			f.from.Format(time.RFC3339), f.to.Format(time.RFC3339))
	}

	sort.Slice(f.datasets, func(i, j int) bool {
		return f.datasets[i].InitTime.Before(f.datasets[j].InitTime)
	})

	f.logger.Debug("replay feed initialised",
		slog.Int("datasets", len(f.datasets)),
		slog.Time("from", f.from),
		slog.Time("to", f.to))

	f.ready = true
	return nil
}

func (f *ReplayFeed) Snapshot(ctx context.Context, at time.Time) (*nwp.Snapshot, error) {
	if !f.ready {
		return nil, fmt.Errorf("replay feed not initialised")
	}

	var selected *nwp.Dataset
	for _, d := range f.datasets {
		if d.InitTime.After(at) {
			break
		}
		selected = d
	}
	if selected == nil {
		return nil, fmt.Errorf("replay feed has no dataset at or before %s", at.Format(time.RFC3339))
	}

	// Ground truth is cut off at the lookup time so a replayed run never
	// sees observations from its own future.
	return &nwp.Snapshot{NWP: selected, GSP: f.gsp.Slice(f.from, at)}, nil
}
