package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMisaligned is returned when a dataset's spatial indexing does not match
// the coordinate pairing the models were trained against.
var ErrMisaligned = errors.New("coordinate grid misaligned with dataset")

// Grid is the pair of ordered OSGB coordinate slices identifying the spatial
// cells of the trained models. Immutable once constructed.
type Grid struct {
	x []float64
	y []float64
}

func New(x, y []float64) (*Grid, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("coordinate slices must pair up, got %d x and %d y", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("coordinate grid is empty")
	}
	g := &Grid{x: make([]float64, len(x)), y: make([]float64, len(y))}
	copy(g.x, x)
	copy(g.y, y)
	return g, nil
}

// Load reads the coordinate pair from a two-column CSV file (x,y per row),
// as exported at model training time.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coordinate file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read coordinate file %s: %w", path, err)
	}

	var x, y []float64
	for i, rec := range records {
		if len(rec) != 2 {
			return nil, fmt.Errorf("coordinate file %s line %d: expected 2 columns, got %d", path, i+1, len(rec))
		}
		xv, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate file %s line %d: %w", path, i+1, err)
		}
		yv, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate file %s line %d: %w", path, i+1, err)
		}
		x = append(x, xv)
		y = append(y, yv)
	}

	return New(x, y)
}

func (g *Grid) Len() int { return len(g.x) }

func (g *Grid) X() []float64 { return g.x }

func (g *Grid) Y() []float64 { return g.y }

// Align verifies that a dataset's spatial indexing matches the grid exactly,
// element by element. Mismatches are never silently reindexed.
func (g *Grid) Align(x, y []float64) error {
	if len(x) != len(g.x) || len(y) != len(g.y) {
		return fmt.Errorf("%w: grid has %d cells, dataset has %dx/%dy", ErrMisaligned, len(g.x), len(x), len(y))
	}
	for i := range g.x {
		if x[i] != g.x[i] || y[i] != g.y[i] {
			return fmt.Errorf("%w: cell %d is (%v, %v), expected (%v, %v)", ErrMisaligned, i, x[i], y[i], g.x[i], g.y[i])
		}
	}
	return nil
}
