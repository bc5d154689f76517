// Command import-pro loads professional reference swings from a JSON file
// into the reference corpus table, deriving style tags for entries that do
// not carry them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/swing.report/internal/db"
	"github.com/banshee-data/swing.report/internal/swing"
	"github.com/google/uuid"
)

func main() {
	var dbPath string
	var inputPath string
	var dryRun bool

	flag.StringVar(&dbPath, "db", "swing.db", "path to sqlite db")
	flag.StringVar(&inputPath, "input", "", "path to JSON file of reference swings")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	flag.Parse()

	if inputPath == "" {
		log.Fatalf("input must be provided")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	// The file is either a bare array of references or an object with a
	// "swings" key, matching the export shapes in circulation.
	var refs []swing.ReferenceSwing
	if err := json.Unmarshal(data, &refs); err != nil {
		var wrapped struct {
			Swings []swing.ReferenceSwing `json:"swings"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			log.Fatalf("parse input: %v", err)
		}
		refs = wrapped.Swings
	}
	if len(refs) == 0 {
		log.Fatalf("no reference swings found in %s", inputPath)
	}

	dbConn, err := db.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	ctx := context.Background()
	imported := 0
	for i, ref := range refs {
		if ref.Label == "" {
			log.Printf("skipping entry %d: missing label", i)
			continue
		}
		if ref.ID == "" {
			ref.ID = uuid.NewString()
		}
		if len(ref.Tags) == 0 {
			ref.Tags = swing.StyleTags(ref.Metrics)
		}
		if dryRun {
			fmt.Printf("would import %s (%s, club %s, tags %v)\n", ref.Label, ref.ID, ref.ClubType, ref.Tags)
			imported++
			continue
		}
		if err := dbConn.UpsertReference(ctx, ref); err != nil {
			log.Fatalf("import %s: %v", ref.Label, err)
		}
		fmt.Printf("imported %s (%s, club %s, tags %v)\n", ref.Label, ref.ID, ref.ClubType, ref.Tags)
		imported++
	}

	fmt.Printf("import complete: %d of %d reference swings\n", imported, len(refs))
}
