package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/quartzsolar/nationalboost-go/nwp"
)

// LiveFeed always retrieves the most recent available data from its sources.
// The lookup time is ignored; freshness is the source's own guarantee.
type LiveFeed struct {
	logger *slog.Logger
	nwpSrc DatasetSource
	gspSrc SeriesSource
}

func NewLiveFeed(nwpSrc DatasetSource, gspSrc SeriesSource) *LiveFeed {
	return &LiveFeed{
		logger: slog.Default().With(slog.String("module", "feed")),
		nwpSrc: nwpSrc,
		gspSrc: gspSrc,
	}
}

func (f *LiveFeed) Initialise(ctx context.Context) error {
	return nil
}

func (f *LiveFeed) Snapshot(ctx context.Context, _ time.Time) (*nwp.Snapshot, error) {
	dataset, err := f.nwpSrc.Latest(ctx)
	if err != nil {
		return nil, err
	}

	series, err := f.gspSrc.Latest(ctx)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("retrieved live snapshot",
		slog.Time("initTime", dataset.InitTime),
		slog.Int("gspObservations", len(series.Times)))

	return &nwp.Snapshot{NWP: dataset, GSP: series}, nil
}
