package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jengzang/activity-dashboard-go/internal/category"
	"github.com/jengzang/activity-dashboard-go/internal/cli"
	"github.com/jengzang/activity-dashboard-go/internal/database"
	"github.com/jengzang/activity-dashboard-go/internal/logger"
	"github.com/jengzang/activity-dashboard-go/internal/repository"
	"github.com/jengzang/activity-dashboard-go/internal/service"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite database path." type:"path" default:"./data/activities.db" env:"DB_PATH"`

	Import   cli.ImportCmd   `cmd:"" help:"Import a JSON activity export."`
	Filter   cli.FilterCmd   `cmd:"" help:"Evaluate a filter state to activity ids."`
	Timeline cli.TimelineCmd `cmd:"" help:"Build a bucketed, optionally smoothed time series."`
	Progress cli.ProgressCmd `cmd:"" help:"Build cumulative progress curves per period."`
	Calendar cli.CalendarCmd `cmd:"" help:"Reduce activities per day for the calendar heatmap."`
}

// setupLogging initializes the root logger on w before anything can log
func setupLogging(w io.Writer) {
	opts := logger.FromEnv()
	opts.Writer = w
	logger.Init(opts)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dashctl"),
		kong.Description("Query an activity dashboard database from the terminal"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	// logs go to stderr so stdout stays machine readable
	setupLogging(os.Stderr)

	db, err := database.Open(database.Config{Path: CLI.DB})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	appCtx := &cli.Context{
		Dashboard: service.NewDashboardService(repository.NewActivityRepository(db), category.MustDefault()),
		Out:       os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
