// Prints the prediction table from the forecast database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/quartzsolar/nationalboost-go/config"
	"github.com/quartzsolar/nationalboost-go/database"
)

func main() {
	w := os.Stdout
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	rows, err := db.GetPredictions(ctx)
	if err != nil {
		panic(err)
	}

	for _, row := range rows {
		fmt.Printf("%s  +%dh  %s  %.2f MW\n",
			row.BaseTime.Format(time.RFC3339),
			row.Horizon,
			row.Target.String(),
			row.ValueMW)
	}
}
