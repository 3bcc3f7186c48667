package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"askroom/internal/config"
	"askroom/internal/domain/identity"
	"askroom/internal/domain/question"
	"askroom/internal/domain/room"
	"askroom/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const usage = `
askroom - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up       Run raw SQL migrations then GORM auto-migration
  status   Show database connection status and core tables

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	_ = godotenv.Load()

	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp(db, *migrationsDir)
	case "status":
		showStatus(db)
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB, migrationsDir string) {
	log.Println("Running migrations...")

	if err := applyRawMigrations(db, migrationsDir); err != nil {
		log.Fatalf("Raw migrations failed: %v", err)
	}

	if err := db.AutoMigrate(
		&room.Room{},
		&question.Question{},
		&identity.Admin{},
		&identity.MagicLinkToken{},
	); err != nil {
		log.Fatalf("Auto-migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

// applyRawMigrations executes every .sql file in the migrations directory,
// in name order. Used for extensions and indexes GORM cannot express.
func applyRawMigrations(db *gorm.DB, migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".sql" {
			continue
		}
		path := filepath.Join(migrationsDir, file.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		log.Printf("Applying migration: %s", file.Name())
		if err := db.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
		}
	}
	return nil
}

func showStatus(db *gorm.DB) {
	log.Println("Checking database status...")

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range []string{"rooms", "questions", "admins", "magic_link_tokens"} {
		if db.Migrator().HasTable(table) {
			var count int64
			_ = db.Table(table).Count(&count).Error
			log.Printf("Table %-20s exists (%d rows)", table, count)
		} else {
			log.Printf("Table %-20s does not exist", table)
		}
	}
}
