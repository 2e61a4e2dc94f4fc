// Package store persists prediction batches. A store's identity (its storage
// location) and its write mode are both fixed at construction.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Prediction is one forecast value for a single horizon, stamped with the
// base time the batch was issued from.
type Prediction struct {
	Horizon  int
	BaseTime time.Time
	ValueMW  float64
}

// Mode selects the table-write semantics: overwrite replaces the whole
// table with the batch, append concatenates the batch to existing records.
type Mode string

const (
	ModeOverwrite Mode = "overwrite"
	ModeAppend    Mode = "append"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case string(ModeOverwrite):
		return ModeOverwrite, nil
	case string(ModeAppend):
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

// Store is the persisted prediction table. Connect must be called before
// Read or Write; reading a never-written overwrite store yields an empty
// table, not an error.
type Store interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) ([]Prediction, error)
	Write(ctx context.Context, batch []Prediction) error
	Close() error
}
