package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/database"
	"github.com/quartzsolar/nationalboost-go/feed"
	"github.com/quartzsolar/nationalboost-go/grid"
	"github.com/quartzsolar/nationalboost-go/inference"
	"github.com/quartzsolar/nationalboost-go/logging"
	"github.com/quartzsolar/nationalboost-go/nwp"
	"github.com/quartzsolar/nationalboost-go/s3"
	"github.com/quartzsolar/nationalboost-go/store"
	"github.com/quartzsolar/nationalboost-go/task"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	writeToDatabase := flag.Bool("write-to-database", false, "write predictions to the database instead of the local mock store")
	s3AccessKey := flag.String("s3-access-key", "", "optional S3 access key, overrides config")
	s3SecretKey := flag.String("s3-secret-key", "", "optional S3 secret key, overrides config")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *s3AccessKey != "" {
		cnfg.S3.AccessKey = *s3AccessKey
	}
	if *s3SecretKey != "" {
		cnfg.S3.SecretKey = *s3SecretKey
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("nationalboost is starting...", slog.String("version", Version))

	var db *database.Database
	if *writeToDatabase {
		db, err = database.New(ctx, cnfg.Database.Path)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to database: %v", err))
		}
		defer db.Close()

		logger := slog.New(logging.NewMultiHandler(
			consoleHandler,
			logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
		slog.SetDefault(logger)

		// Now we can use the logger to log database operations into the database itself
		db.SetLogger(logger.With("module", "database"))
	} else {
		slog.SetDefault(slog.New(consoleHandler))
	}
	logger := slog.Default()

	coords, err := grid.Load(cnfg.Model.CoordinateFile)
	if err != nil {
		panic(fmt.Sprintf("failed to load coordinate grid: %v", err))
	}

	var s3Client *s3.Client
	if cnfg.S3.Bucket != "" {
		s3Client, err = s3.New(ctx, s3.Config{
			EndpointURL:     cnfg.S3.Endpoint,
			Region:          cnfg.S3.Region,
			Bucket:          cnfg.S3.Bucket,
			AccessKeyID:     cnfg.S3.AccessKey,
			SecretAccessKey: cnfg.S3.SecretKey,
		})
		if err != nil {
			panic(fmt.Sprintf("failed to create s3 client: %v", err))
		}
	}

	var loader inference.ArtifactLoader
	if s3Client != nil {
		loader = inference.S3Loader{Client: s3Client, Prefix: cnfg.S3.ModelPrefix}
	} else {
		logger.Info("no s3 bucket configured, loading model artifacts from local directory")
		loader = inference.FileLoader{Dir: cnfg.Model.ArtifactDir}
	}

	model := inference.NewModel(cnfg.Model, loader, coords)
	if err := model.Initialise(ctx); err != nil {
		panic(fmt.Sprintf("failed to initialise inference model: %v", err))
	}

	dataFeed, err := buildFeed(cnfg, s3Client)
	if err != nil {
		panic(fmt.Sprintf("failed to build data feed: %v", err))
	}
	if err := dataFeed.Initialise(ctx); err != nil {
		panic(fmt.Sprintf("failed to initialise data feed: %v", err))
	}

	mode, err := store.ParseMode(cnfg.Database.GetWriteMode())
	if err != nil {
		panic(fmt.Sprintf("failed to parse write mode: %v", err))
	}

	var predictionStore store.Store
	if *writeToDatabase {
		predictionStore = store.NewSQLiteStore(db, mode)
	} else {
		logger.Info("not writing to database, storing in local mock store",
			slog.String("path", cnfg.Database.GetMockPath()))
		predictionStore = store.NewFileStore(cnfg.Database.GetMockPath(), store.ModeOverwrite)
	}
	if err := predictionStore.Connect(ctx); err != nil {
		panic(fmt.Sprintf("failed to connect to prediction store: %v", err))
	}
	defer predictionStore.Close()

	pipeline := inference.NewPipeline(model, dataFeed, predictionStore)
	if err := pipeline.Run(ctx); err != nil {
		panic(fmt.Sprintf("inference run failed: %v", err))
	}

	if !*writeToDatabase {
		// One-shot mock run: print the resulting table and exit.
		printTable(ctx, predictionStore)
		return
	}

	tasks := task.NewTasks(pipeline, db, cnfg)
	tasks.Run()
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("main context done")
	case sig := <-sigCh:
		logger.Info("received signal", slog.Any("signal", sig))
		cancel()
	}
}

func buildFeed(cnfg *config.AppConfig, s3Client *s3.Client) (feed.Feed, error) {
	if cnfg.DataFeed.Replay != nil {
		from, err := cnfg.DataFeed.Replay.GetFrom()
		if err != nil {
			return nil, err
		}
		to, err := cnfg.DataFeed.Replay.GetTo()
		if err != nil {
			return nil, err
		}
		datasets, err := feed.LoadDatasets(cnfg.DataFeed.NwpDir)
		if err != nil {
			return nil, err
		}
		gsp, err := nwp.LoadGenerationSeries(cnfg.DataFeed.GspFile)
		if err != nil {
			return nil, err
		}
		return feed.NewReplayFeed(datasets, gsp, from, to), nil
	}

	if cnfg.DataFeed.Source == "s3" {
		if s3Client == nil {
			return nil, fmt.Errorf("data feed source is s3 but no s3 bucket is configured")
		}
		return feed.NewLiveFeed(
			feed.S3DatasetSource{Client: s3Client, Prefix: cnfg.DataFeed.NwpPrefix},
			feed.S3SeriesSource{Client: s3Client, Key: cnfg.DataFeed.GspKey}), nil
	}

	return feed.NewLiveFeed(
		feed.DirDatasetSource{Dir: cnfg.DataFeed.NwpDir},
		feed.DirSeriesSource{Path: cnfg.DataFeed.GspFile}), nil
}

func printTable(ctx context.Context, predictionStore store.Store) {
	table, err := predictionStore.Read(ctx)
	if err != nil {
		slog.Default().Error("failed to read back prediction table", slog.Any("error", err))
		return
	}
	for _, p := range table {
		fmt.Printf("%s  +%dh  %.2f MW\n", p.BaseTime.Format(time.RFC3339), p.Horizon, p.ValueMW)
	}
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
