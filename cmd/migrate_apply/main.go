package main

import (
	"flag"
	"fmt"
	"os"

	"predman/internal/db"
	"predman/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apply := flag.Bool("apply", false, "apply pending migrations")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	if *apply {
		if err := db.Migrate(pool); err != nil {
			logger.Fatal("failed to apply migrations", "error", err)
		}
	}

	statuses, err := db.Status(pool)
	if err != nil {
		logger.Fatal("failed to read migration status", "error", err)
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%05d  %-8s %s\n", s.Version, state, s.Source)
	}
}
