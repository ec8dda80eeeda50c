package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pratik-mahalle/smmpanel/internal/config"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/repository/postgres"
	"github.com/pratik-mahalle/smmpanel/internal/seed"
	"github.com/pratik-mahalle/smmpanel/migrations"
)

func main() {
	var seedFiles multiFlag
	flag.Var(&seedFiles, "seed", "YAML file of providers and services to import after migrating (repeatable, later files override)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: "console"})
	ctx := context.Background()

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load migrations: %v\n", err)
		os.Exit(1)
	}

	dialect := postgres.DialectFor(cfg.Database.Driver)
	applied, err := postgres.RunMigrations(ctx, db, dialect, migrationsFS)
	for _, name := range applied {
		fmt.Printf("✓ Migration %s completed successfully\n", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
	} else {
		fmt.Println("\nAll migrations completed successfully!")
	}

	if len(seedFiles) == 0 {
		return
	}

	var sources []io.Reader
	for _, path := range seedFiles {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open seed file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		sources = append(sources, f)
	}

	file, err := seed.Load(os.LookupEnv, sources...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	res, err := seed.Apply(ctx, postgres.NewProviderRepository(db, dialect), file, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d providers and %d services\n", res.Providers, res.Services)
}

type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint(*m) }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
