// Downloads the trained model artifacts for every configured horizon from
// S3 into the local artifact directory, so the service can run offline.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/inference"
	"github.com/quartzsolar/nationalboost-go/s3"
)

func main() {
	w := os.Stdout
	logger := slog.New(tint.NewHandler(w, nil))
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if cnfg.S3.Bucket == "" {
		panic("no s3 bucket configured")
	}

	ctx := context.Background()
	client, err := s3.New(ctx, s3.Config{
		EndpointURL:     cnfg.S3.Endpoint,
		Region:          cnfg.S3.Region,
		Bucket:          cnfg.S3.Bucket,
		AccessKeyID:     cnfg.S3.AccessKey,
		SecretAccessKey: cnfg.S3.SecretKey,
	})
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(cnfg.Model.ArtifactDir, 0755); err != nil {
		panic(err)
	}

	for _, h := range cnfg.Model.Horizons {
		name := inference.ArtifactName(h)
		data, err := client.Fetch(ctx, path.Join(cnfg.S3.ModelPrefix, name))
		if err != nil {
			panic(err)
		}

		dest := filepath.Join(cnfg.Model.ArtifactDir, name)
		if err := os.WriteFile(dest, data, 0644); err != nil {
			panic(err)
		}
		logger.Info("fetched model artifact",
			slog.Int("horizon", h),
			slog.String("dest", dest),
			slog.Int("bytes", len(data)))
	}
}
