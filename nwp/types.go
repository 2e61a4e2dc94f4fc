package nwp

import (
	"fmt"
	"time"
)

// Dataset is one gridded numerical weather prediction run: values indexed by
// (step, channel, cell) where cells follow the x/y coordinate pairing.
type Dataset struct {
	InitTime time.Time     `json:"init_time"`
	Steps    []int         `json:"steps"` // hours ahead of init time
	Channels []string      `json:"channels"`
	X        []float64     `json:"x"`
	Y        []float64     `json:"y"`
	Values   [][][]float64 `json:"values"` // [step][channel][cell]
}

// Validate checks internal dimension consistency after deserialization.
func (d *Dataset) Validate() error {
	if d.InitTime.IsZero() {
		return fmt.Errorf("nwp dataset has no init time")
	}
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("nwp dataset coordinates must pair up, got %d x and %d y", len(d.X), len(d.Y))
	}
	if len(d.Values) != len(d.Steps) {
		return fmt.Errorf("nwp dataset has %d steps but %d value planes", len(d.Steps), len(d.Values))
	}
	for s, plane := range d.Values {
		if len(plane) != len(d.Channels) {
			return fmt.Errorf("nwp dataset step %d has %d channels, expected %d", d.Steps[s], len(plane), len(d.Channels))
		}
		for c, cells := range plane {
			if len(cells) != len(d.X) {
				return fmt.Errorf("nwp dataset step %d channel %s has %d cells, expected %d",
					d.Steps[s], d.Channels[c], len(cells), len(d.X))
			}
		}
	}
	return nil
}

// StepIndex maps an hours-ahead value to its position in the step dimension.
func (d *Dataset) StepIndex(hoursAhead int) (int, error) {
	for i, s := range d.Steps {
		if s == hoursAhead {
			return i, nil
		}
	}
	return 0, fmt.Errorf("nwp dataset %s has no step for %d hours ahead", d.InitTime.Format(time.RFC3339), hoursAhead)
}

// Cells returns the per-cell values for one step and channel.
func (d *Dataset) Cells(step, channel int) []float64 {
	return d.Values[step][channel]
}

// GenerationSeries is the paired national ground-truth generation series.
type GenerationSeries struct {
	Times    []time.Time `json:"times"`
	ValuesMW []float64   `json:"values_mw"`
}

func (g *GenerationSeries) Validate() error {
	if len(g.Times) != len(g.ValuesMW) {
		return fmt.Errorf("generation series has %d times but %d values", len(g.Times), len(g.ValuesMW))
	}
	return nil
}

// LatestAt returns the most recent observation at or before t.
func (g *GenerationSeries) LatestAt(t time.Time) (float64, error) {
	best := -1
	for i, ts := range g.Times {
		if !ts.After(t) && (best < 0 || ts.After(g.Times[best])) {
			best = i
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("generation series has no observation at or before %s", t.Format(time.RFC3339))
	}
	return g.ValuesMW[best], nil
}

// Slice returns a copy of the series bounded to [from, to].
func (g *GenerationSeries) Slice(from, to time.Time) *GenerationSeries {
	out := &GenerationSeries{}
	for i, ts := range g.Times {
		if !ts.Before(from) && !ts.After(to) {
			out.Times = append(out.Times, ts)
			out.ValuesMW = append(out.ValuesMW, g.ValuesMW[i])
		}
	}
	return out
}

// Snapshot is one retrieval: a weather run and its paired ground truth.
// Read-only once handed out by a feed.
type Snapshot struct {
	NWP *Dataset
	GSP *GenerationSeries
}

// InitTime is the timestamp the forecast data was issued from, used as the
// batch base time when the read-datetime override is configured.
func (s *Snapshot) InitTime() time.Time {
	return s.NWP.InitTime
}
