package db

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching.
func RunMigrateCommand(args []string, dbPath, migrationsDir string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}

	action := args[0]

	database, err := NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action {
	case "up":
		log.Printf("Running migrations...")
		if err := database.MigrateUp(migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("All migrations applied successfully")
		version, dirty, _ := database.MigrateVersion(migrationsDir)
		log.Printf("Current version: %d (dirty: %v)", version, dirty)

	case "down":
		log.Printf("Rolling back one migration...")
		if err := database.MigrateDown(migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migration rolled back successfully")
		version, dirty, _ := database.MigrateVersion(migrationsDir)
		log.Printf("Current version: %d (dirty: %v)", version, dirty)

	case "version":
		version, dirty, err := database.MigrateVersion(migrationsDir)
		if err != nil {
			log.Fatalf("Failed to get migration version: %v", err)
		}
		fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: swing-report migrate force <version_number>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number %q: %v", args[1], err)
		}
		if err := database.MigrateForce(migrationsDir, version); err != nil {
			log.Fatalf("Migration force failed: %v", err)
		}
		log.Printf("Forced migration version to %d", version)

	case "help":
		PrintMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp() {
	fmt.Println(`Usage: swing-report migrate <action> [args]

Actions:
  up                  apply all pending migrations
  down                roll back one migration
  version             show the current migration version
  force <version>     force the schema version without running migrations
  help                show this help`)
}
