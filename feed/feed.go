// Package feed retrieves aligned weather-forecast and ground-truth data for
// the inference pipeline. The live and replay variants are interchangeable:
// callers never branch on which one is in use.
package feed

import (
	"context"
	"time"

	"github.com/quartzsolar/nationalboost-go/nwp"
)

type Feed interface {
	// Initialise must be called before Snapshot.
	Initialise(ctx context.Context) error
	// Snapshot yields one read-only data bundle for the given lookup time.
	Snapshot(ctx context.Context, at time.Time) (*nwp.Snapshot, error)
}
