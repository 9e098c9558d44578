// Command migrate applies or rolls back the embedded schema migrations
// against the database configured through the usual environment variables.
//
//	migrate up          apply all pending migrations
//	migrate down [n]    roll back n migrations (default 1)
//	migrate version     print the current schema version
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/iliyamo/job-board/internal/config"
	"github.com/iliyamo/job-board/internal/database"
	"github.com/iliyamo/job-board/internal/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	m, err := database.NewMigrator(db)
	if err != nil {
		log.WithError(err).Fatal("init migrator")
	}
	// closes db as well
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		n := 1
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n < 1 {
				log.Fatalf("invalid step count %q", os.Args[2])
			}
		}
		err = m.Steps(-n)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.WithError(verr).Fatal("read version")
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		return
	default:
		usage()
		os.Exit(2)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no change")
		return
	}
	if err != nil {
		log.WithError(err).Fatal(os.Args[1])
	}
	log.WithField("command", os.Args[1]).Info("done")
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down [n] | version")
}
