package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"moodlens/adapters/excel"
	"moodlens/adapters/sqlstore"
	"moodlens/internal"
	"moodlens/internal/config"
	"moodlens/ports"
)

const usage = `Usage: migrate <command> [args]

Commands:
  up                              apply pending schema migrations
  status                          list migrations and whether they are applied
  seed <data-file> [profiles]     migrate, then replace stored records (and profiles)

The database is taken from DB_DRIVER (postgres|sqlite) and DATABASE_URL.`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	logger := internal.NewLoggerWithFormat(internal.ParseLogLevel(appConfig.Log.Level), appConfig.Log.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := sqlstore.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := sqlstore.NewMigrator(db, logger)

	switch cmd := os.Args[1]; cmd {
	case "up":
		err = migrator.Up(ctx)
	case "status":
		err = printStatus(ctx, migrator)
	case "seed":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		if err = migrator.Up(ctx); err == nil {
			err = seed(ctx, os.Args[2:], sqlstore.NewRecordStore(db, logger), sqlstore.NewProfileStore(db, logger), logger)
		}
	default:
		log.Fatalf("Unknown command %q\n\n%s", cmd, usage)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", os.Args[1], err)
	}
}

func printStatus(ctx context.Context, m *sqlstore.Migrator) error {
	list, err := m.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range list {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%s  %-32s %s\n", s.Version, s.Name, state)
	}
	return nil
}

// seed copies the file dataset (and optionally cluster profiles) into the
// database, replacing whatever was stored before
func seed(ctx context.Context, files []string, records ports.RecordSink, profiles ports.ProfileSink, logger *internal.Logger) error {
	rows, err := excel.NewRecordFile(files[0], logger).LoadRecords(ctx)
	if err != nil {
		return err
	}
	if err := records.SaveRecords(ctx, rows); err != nil {
		return err
	}
	log.Printf("Seeded %d records from %s", len(rows), files[0])

	if len(files) < 2 {
		return nil
	}
	centroids, err := excel.NewProfileFile(files[1], logger).LoadProfiles(ctx)
	if err != nil {
		return err
	}
	if err := profiles.SaveProfiles(ctx, centroids); err != nil {
		return err
	}
	log.Printf("Seeded %d cluster profiles from %s", len(centroids), files[1])
	return nil
}
