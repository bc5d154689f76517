package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/swing.report/internal/swing"
)

// UpsertReference stores or replaces one reference swing in the corpus.
func (db *DB) UpsertReference(ctx context.Context, ref swing.ReferenceSwing) error {
	metrics, err := json.Marshal(ref.Metrics)
	if err != nil {
		return fmt.Errorf("marshal reference metrics: %w", err)
	}
	tags, err := json.Marshal(ref.Tags)
	if err != nil {
		return fmt.Errorf("marshal reference tags: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO reference_swings (id, label, club_type, metrics, tags)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label,
		                               club_type = excluded.club_type,
		                               metrics = excluded.metrics,
		                               tags = excluded.tags`,
		ref.ID, ref.Label, ref.ClubType, string(metrics), string(tags))
	if err != nil {
		return fmt.Errorf("upsert reference %s: %w", ref.ID, err)
	}
	return nil
}

// ListReferences returns the corpus, optionally filtered by club type.
// Insertion order is preserved so matcher tie-breaking stays stable.
// Implements pipeline.CorpusProvider.
func (db *DB) ListReferences(ctx context.Context, club string) ([]swing.ReferenceSwing, error) {
	query := `SELECT id, label, club_type, metrics, tags FROM reference_swings`
	args := []any{}
	if club != "" {
		query += ` WHERE club_type = ?`
		args = append(args, club)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer rows.Close()

	var out []swing.ReferenceSwing
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// GetReference returns one corpus entry, or nil when absent.
func (db *DB) GetReference(ctx context.Context, id string) (*swing.ReferenceSwing, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, label, club_type, metrics, tags FROM reference_swings WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get reference %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	ref, err := scanReference(rows)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func scanReference(rows *sql.Rows) (swing.ReferenceSwing, error) {
	var ref swing.ReferenceSwing
	var clubType, metrics, tags sql.NullString
	if err := rows.Scan(&ref.ID, &ref.Label, &clubType, &metrics, &tags); err != nil {
		return ref, fmt.Errorf("scan reference: %w", err)
	}
	ref.ClubType = clubType.String
	unmarshalColumn(metrics, &ref.Metrics)
	unmarshalColumn(tags, &ref.Tags)
	return ref, nil
}
