// Package db persists analysed swings, capture sessions, and the reference
// swing corpus in sqlite. The schema is created inline on open so tests can
// run against a fresh database with no migration files; the migrations in
// migrations/ carry the same schema for deployed databases.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the swing database at path. Use
// ":memory:" for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id                TEXT PRIMARY KEY,
			club              TEXT,
			started_at        TIMESTAMP,
			stopped_at        TIMESTAMP,
			swing_count       BIGINT DEFAULT 0,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS swings (
			id                TEXT PRIMARY KEY,
			session_id        TEXT,
			timestamp         TIMESTAMP,
			club              TEXT,
			overall_score     DOUBLE,
			similarity        DOUBLE,
			reference_id      TEXT,
			metrics           TEXT,
			flaw_report       TEXT,
			match_result      TEXT,
			tags              TEXT,
			shot_data         TEXT,
			wrist_curve       TEXT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);
		CREATE TABLE IF NOT EXISTS reference_swings (
			id                TEXT PRIMARY KEY,
			label             TEXT,
			club_type         TEXT,
			metrics           TEXT,
			tags              TEXT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_swings_session ON swings(session_id);
		CREATE INDEX IF NOT EXISTS idx_swings_timestamp ON swings(timestamp);
		CREATE INDEX IF NOT EXISTS idx_reference_club ON reference_swings(club_type);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// AttachAdminRoutes mounts the database debugging endpoints on /debug/:
// a tailSQL console over the live database and an on-demand backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://swing.db", db.DB, &tailsql.DBOptions{
		Label: "Swing DB",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
