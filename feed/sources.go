package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/quartzsolar/nationalboost-go/nwp"
	"github.com/quartzsolar/nationalboost-go/s3"
)

// DatasetSource yields the most recent available NWP run. "Most recent" is
// whatever the source itself holds; no staleness check is made here.
type DatasetSource interface {
	Latest(ctx context.Context) (*nwp.Dataset, error)
}

// SeriesSource yields the current ground-truth generation series.
type SeriesSource interface {
	Latest(ctx context.Context) (*nwp.GenerationSeries, error)
}

// DirDatasetSource reads datasets from a local directory. File names embed
// the init time, so lexical order is chronological.
type DirDatasetSource struct {
	Dir string
}

func (s DirDatasetSource) Latest(ctx context.Context) (*nwp.Dataset, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read nwp source directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no nwp datasets in %s", s.Dir)
	}

	slices.Sort(names)
	return nwp.LoadDataset(filepath.Join(s.Dir, names[len(names)-1]))
}

// LoadDatasets reads every dataset in a local directory, e.g. to build a
// replay feed from an exported historical slice.
func LoadDatasets(dir string) ([]*nwp.Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read nwp directory: %w", err)
	}

	var datasets []*nwp.Dataset
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		d, err := nwp.LoadDataset(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, nil
}

// DirSeriesSource reads the generation series from a single local file.
type DirSeriesSource struct {
	Path string
}

func (s DirSeriesSource) Latest(ctx context.Context) (*nwp.GenerationSeries, error) {
	return nwp.LoadGenerationSeries(s.Path)
}

// S3DatasetSource reads datasets from an object-store prefix. Object keys
// embed the init time, so the lexically greatest key is the newest run.
type S3DatasetSource struct {
	Client *s3.Client
	Prefix string
}

func (s S3DatasetSource) Latest(ctx context.Context) (*nwp.Dataset, error) {
	keys, err := s.Client.ListKeys(ctx, s.Prefix)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, k := range keys {
		if strings.HasSuffix(k, ".json") {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no nwp datasets under prefix %s", s.Prefix)
	}

	slices.Sort(names)
	r, err := s.Client.FetchReader(ctx, names[len(names)-1])
	if err != nil {
		return nil, err
	}
	return nwp.ReadDataset(r)
}

// S3SeriesSource reads the generation series from a fixed object key.
type S3SeriesSource struct {
	Client *s3.Client
	Key    string
}

func (s S3SeriesSource) Latest(ctx context.Context) (*nwp.GenerationSeries, error) {
	r, err := s.Client.FetchReader(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	return nwp.ReadGenerationSeries(r)
}
