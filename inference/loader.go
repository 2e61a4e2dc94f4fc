package inference

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/quartzsolar/nationalboost-go/gbt"
	"github.com/quartzsolar/nationalboost-go/s3"
)

// ArtifactLoader resolves a forecast horizon to its trained regression
// model. A missing or corrupt artifact is a surfaced fatal error; there is
// no retry policy.
type ArtifactLoader interface {
	LoadModel(ctx context.Context, horizon int) (*gbt.Model, error)
}

// LoaderFunc adapts a plain function to the ArtifactLoader interface.
type LoaderFunc func(ctx context.Context, horizon int) (*gbt.Model, error)

func (f LoaderFunc) LoadModel(ctx context.Context, horizon int) (*gbt.Model, error) {
	return f(ctx, horizon)
}

// ArtifactName is the object/file naming convention the training jobs
// export models under, one per hours-ahead step.
func ArtifactName(horizon int) string {
	return fmt.Sprintf("uk_region_model_step_%d.json", horizon)
}

// S3Loader fetches model artifacts from an object-store prefix.
type S3Loader struct {
	Client *s3.Client
	Prefix string
}

func (l S3Loader) LoadModel(ctx context.Context, horizon int) (*gbt.Model, error) {
	key := path.Join(l.Prefix, ArtifactName(horizon))
	data, err := l.Client.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load model artifact for horizon %d: %w", horizon, err)
	}
	return gbt.Parse(data)
}

// FileLoader reads model artifacts from a local directory.
type FileLoader struct {
	Dir string
}

func (l FileLoader) LoadModel(ctx context.Context, horizon int) (*gbt.Model, error) {
	name := filepath.Join(l.Dir, ArtifactName(horizon))
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load model artifact for horizon %d: %w", horizon, err)
	}
	return gbt.Parse(data)
}
