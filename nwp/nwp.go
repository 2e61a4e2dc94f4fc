package nwp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func ReadDataset(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading nwp dataset: %w", err)
	}

	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("error unmarshaling nwp dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nwp dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

func ReadGenerationSeries(r io.Reader) (*GenerationSeries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading generation series: %w", err)
	}

	var g GenerationSeries
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("error unmarshaling generation series: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return &g, nil
}

func LoadGenerationSeries(path string) (*GenerationSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open generation series: %w", err)
	}
	defer f.Close()
	return ReadGenerationSeries(f)
}
