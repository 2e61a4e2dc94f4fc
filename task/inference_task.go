package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/quartzsolar/nationalboost-go/inference"
)

func NewInferenceTask(logger *slog.Logger, pipeline *inference.Pipeline) func() {
	return func() {
		logger.Debug("running inference task...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		started := time.Now()
		if err := pipeline.Run(ctx); err != nil {
			logger.Error("inference task error", slog.Any("error", err))
			return
		}

		logger.Info("inference task done", slog.Duration("elapsed", time.Since(started)))
	}
}
