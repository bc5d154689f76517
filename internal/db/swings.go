package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/swing.report/internal/pipeline"
	"github.com/banshee-data/swing.report/internal/swing"
)

// SwingRecord is the list-view projection of one stored swing.
type SwingRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Club        string    `json:"club,omitempty"`
	Score       float64   `json:"overall_score"`
	Similarity  float64   `json:"similarity"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// ScorePoint is one point of the score-history series.
type ScorePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// SaveResult stores one analysed swing. Implements pipeline.ResultSink.
// Structured sub-records (metrics, flaw report, match, shot) are stored as
// JSON columns; the hot list-view fields get their own columns.
func (db *DB) SaveResult(ctx context.Context, r *pipeline.SwingResult) error {
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	flaws, err := json.Marshal(r.Flaws)
	if err != nil {
		return fmt.Errorf("marshal flaw report: %w", err)
	}
	match, err := json.Marshal(r.Match)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	curve, err := json.Marshal(r.WristCurve)
	if err != nil {
		return fmt.Errorf("marshal wrist curve: %w", err)
	}
	var shot []byte
	if r.Shot != nil {
		if shot, err = json.Marshal(r.Shot); err != nil {
			return fmt.Errorf("marshal shot data: %w", err)
		}
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO swings (
			id, session_id, timestamp, club, overall_score, similarity,
			reference_id, metrics, flaw_report, match_result, tags,
			shot_data, wrist_curve
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.Timestamp, r.Club,
		r.Flaws.OverallScore, r.Match.Similarity, r.Match.ReferenceID,
		string(metrics), string(flaws), string(match), string(tags),
		nullableText(shot), string(curve),
	)
	if err != nil {
		return fmt.Errorf("insert swing %s: %w", r.ID, err)
	}
	return nil
}

func nullableText(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// ListSwings returns the newest swings first, capped at limit.
func (db *DB) ListSwings(ctx context.Context, limit int) ([]SwingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, timestamp, club, overall_score, similarity, reference_id, tags
		 FROM swings ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list swings: %w", err)
	}
	defer rows.Close()

	var out []SwingRecord
	for rows.Next() {
		var rec SwingRecord
		var sessionID, club, refID, tags sql.NullString
		if err := rows.Scan(&rec.ID, &sessionID, &rec.Timestamp, &club,
			&rec.Score, &rec.Similarity, &refID, &tags); err != nil {
			return nil, fmt.Errorf("scan swing: %w", err)
		}
		rec.SessionID = sessionID.String
		rec.Club = club.String
		rec.ReferenceID = refID.String
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
				rec.Tags = nil
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetSwing reloads one stored swing in full.
func (db *DB) GetSwing(ctx context.Context, id string) (*pipeline.SwingResult, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, session_id, timestamp, club, metrics, flaw_report,
		        match_result, tags, shot_data, wrist_curve
		 FROM swings WHERE id = ?`, id)

	var r pipeline.SwingResult
	var sessionID, club, metrics, flaws, match, tags, shot, curve sql.NullString
	err := row.Scan(&r.ID, &sessionID, &r.Timestamp, &club,
		&metrics, &flaws, &match, &tags, &shot, &curve)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get swing %s: %w", id, err)
	}
	r.SessionID = sessionID.String
	r.Club = club.String

	unmarshalColumn(metrics, &r.Metrics)
	unmarshalColumn(flaws, &r.Flaws)
	unmarshalColumn(match, &r.Match)
	unmarshalColumn(tags, &r.Tags)
	unmarshalColumn(curve, &r.WristCurve)
	if shot.Valid && shot.String != "" {
		var sd swing.ShotData
		if json.Unmarshal([]byte(shot.String), &sd) == nil {
			r.Shot = &sd
		}
	}
	return &r, nil
}

// unmarshalColumn decodes a JSON column into dst, leaving dst zero on a null
// column or malformed content.
func unmarshalColumn(col sql.NullString, dst any) {
	if !col.Valid || col.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(col.String), dst)
}

// ScoreHistory returns the overall-score series, oldest first, capped at
// limit points.
func (db *DB) ScoreHistory(ctx context.Context, limit int) ([]ScorePoint, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.QueryContext(ctx,
		`SELECT timestamp, overall_score FROM swings
		 ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	defer rows.Close()

	var out []ScorePoint
	for rows.Next() {
		var p ScorePoint
		if err := rows.Scan(&p.Timestamp, &p.Score); err != nil {
			return nil, fmt.Errorf("scan score point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into chronological order for plotting.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// RecordSession upserts one session row.
func (db *DB) RecordSession(ctx context.Context, id, club string, startedAt, stoppedAt time.Time, swings int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (id, club, started_at, stopped_at, swing_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET stopped_at = excluded.stopped_at,
		                               swing_count = excluded.swing_count`,
		id, club, startedAt, nullableTime(stoppedAt), swings)
	if err != nil {
		return fmt.Errorf("record session %s: %w", id, err)
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
