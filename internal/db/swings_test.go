package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/pipeline"
	"github.com/banshee-data/swing.report/internal/swing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleResult(id string, ts time.Time) *pipeline.SwingResult {
	metrics := swing.DefaultMetrics()
	return &pipeline.SwingResult{
		ID:        id,
		SessionID: "session-1",
		Timestamp: ts,
		Club:      "7i",
		FPS:       60,
		Events:    swing.SwingEvents{Address: 0, Top: 14, Impact: 22, Finish: 29},
		Metrics:   metrics,
		Flaws:     swing.ScoreFlaws(metrics),
		Match: swing.MatchResult{
			ReferenceID: "pro-1",
			Label:       "Smooth Pro",
			Similarity:  87.5,
		},
		Tags:       swing.StyleTags(metrics),
		WristCurve: []float64{0.55, 0.3, 0.2, 0.8, 0.3},
	}
}

func TestSaveResultGetSwingRoundTrip(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	want := sampleResult("swing-1", ts)
	want.Shot = &swing.ShotData{BallSpeed: 142.5, ClubSpeed: 96.1, Club: "7i", Timestamp: ts}
	require.NoError(t, database.SaveResult(ctx, want))

	got, err := database.GetSwing(ctx, "swing-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.Club, got.Club)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, want.Flaws, got.Flaws)
	assert.Equal(t, want.Match, got.Match)
	assert.Equal(t, want.Tags, got.Tags)
	assert.Equal(t, want.WristCurve, got.WristCurve)
	require.NotNil(t, got.Shot)
	assert.Equal(t, 142.5, got.Shot.BallSpeed)
}

func TestSaveResultWithoutShot(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.SaveResult(ctx, sampleResult("swing-1", time.Now().UTC())))

	got, err := database.GetSwing(ctx, "swing-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Shot)
}

func TestSaveResultDuplicateID(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()
	r := sampleResult("swing-1", time.Now().UTC())

	require.NoError(t, database.SaveResult(ctx, r))
	assert.Error(t, database.SaveResult(ctx, r))
}

func TestGetSwingAbsent(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	got, err := database.GetSwing(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListSwingsNewestFirst(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		r := sampleResult("swing-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, database.SaveResult(ctx, r))
	}

	records, err := database.ListSwings(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "swing-e", records[0].ID)
	assert.Equal(t, "swing-d", records[1].ID)
	assert.Equal(t, "swing-c", records[2].ID)
	assert.Equal(t, "7i", records[0].Club)
	assert.Equal(t, "pro-1", records[0].ReferenceID)
	assert.NotEmpty(t, records[0].Tags)
}

func TestScoreHistoryChronological(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		r := sampleResult("swing-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, database.SaveResult(ctx, r))
	}

	points, err := database.ScoreHistory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// The newest three points, oldest first.
	assert.True(t, points[0].Timestamp.Equal(base.Add(time.Minute)))
	assert.True(t, points[2].Timestamp.Equal(base.Add(3*time.Minute)))
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestRecordSessionUpsert(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()
	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, database.RecordSession(ctx, "session-1", "7i", started, time.Time{}, 0))

	// Re-recording at stop time updates the row in place.
	stopped := started.Add(30 * time.Minute)
	require.NoError(t, database.RecordSession(ctx, "session-1", "7i", started, stopped, 12))

	var count int
	var swings int
	row := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)

	row = database.QueryRowContext(ctx, `SELECT swing_count FROM sessions WHERE id = ?`, "session-1")
	require.NoError(t, row.Scan(&swings))
	assert.Equal(t, 12, swings)
}
