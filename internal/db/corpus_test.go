package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/swing"
)

func sampleReference(id, label, club string) swing.ReferenceSwing {
	m := swing.DefaultMetrics()
	return swing.ReferenceSwing{
		ID:       id,
		Label:    label,
		ClubType: club,
		Metrics:  m,
		Tags:     swing.StyleTags(m),
	}
}

func TestUpsertReference(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()

	ref := sampleReference("pro-1", "Smooth Pro", "7i")
	require.NoError(t, database.UpsertReference(ctx, ref))

	got, err := database.GetReference(ctx, "pro-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ref.Label, got.Label)
	assert.Equal(t, ref.ClubType, got.ClubType)
	assert.Equal(t, ref.Metrics, got.Metrics)
	assert.Equal(t, ref.Tags, got.Tags)

	// Upserting the same ID replaces the entry rather than duplicating it.
	ref.Label = "Smoother Pro"
	ref.ClubType = "driver"
	require.NoError(t, database.UpsertReference(ctx, ref))

	refs, err := database.ListReferences(ctx, "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Smoother Pro", refs[0].Label)
	assert.Equal(t, "driver", refs[0].ClubType)
}

func TestGetReferenceAbsent(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	got, err := database.GetReference(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListReferencesClubFilter(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.UpsertReference(ctx, sampleReference("pro-a", "Iron Pro", "7i")))
	require.NoError(t, database.UpsertReference(ctx, sampleReference("pro-b", "Driver Pro", "driver")))
	require.NoError(t, database.UpsertReference(ctx, sampleReference("pro-c", "Second Iron Pro", "7i")))

	refs, err := database.ListReferences(ctx, "7i")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "pro-a", refs[0].ID)
	assert.Equal(t, "pro-c", refs[1].ID)

	all, err := database.ListReferences(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := database.ListReferences(ctx, "putter")
	require.NoError(t, err)
	assert.Empty(t, none)
}
