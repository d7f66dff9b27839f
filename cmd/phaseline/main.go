package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/phaseline/internal/cli"
	"github.com/alexanderramin/phaseline/internal/config"
	"github.com/alexanderramin/phaseline/internal/db"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/repository"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	store := repository.NewProjectStore(database, db.NewSQLiteUnitOfWork(database))

	app, err := cli.NewApp(cfg, store)
	if err != nil {
		return err
	}
	if cfg.LogUseCases {
		app.Observer = planner.NewLogObserver(os.Stderr)
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
