package task

import (
	"context"
	"log/slog"

	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/database"
	"github.com/quartzsolar/nationalboost-go/inference"
	"github.com/robfig/cron/v3"
)

// Tasks wires the scheduled jobs: the inference run and, when a database is
// in use, nightly maintenance. The scheduler loops; the pipeline never does.
type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	db              *database.Database
	InferenceTask   func()
	MaintenanceTask func()
}

func NewTasks(pipeline *inference.Pipeline, db *database.Database, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	t := &Tasks{
		cron:          cron.New(),
		cnfg:          cnfg,
		db:            db,
		InferenceTask: NewInferenceTask(logger.With(slog.String("task", "inference")), pipeline),
	}
	if db != nil {
		t.MaintenanceTask = NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg)
	}
	return t
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Inference.RunAt, t.InferenceTask)
	if err != nil {
		panic(err)
	}
	if t.MaintenanceTask != nil {
		_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
		if err != nil {
			panic(err)
		}
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
