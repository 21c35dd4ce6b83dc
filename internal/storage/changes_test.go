package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testDoc(changeID string, generatedAt time.Time, objectNames ...string) model.FindingsDocument {
	objects := make([]model.ClassifiedObject, 0, len(objectNames))
	for _, name := range objectNames {
		objects = append(objects, model.ClassifiedObject{
			NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "PROG", Name: name, MatchKey: name},
			MatchedAppIDs:    []string{"APP1"},
			Criticality:      0.5,
		})
	}

	return model.FindingsDocument{
		ChangeID: changeID,
		Objects:  objects,
		Summary: model.Summary{
			RiskScore:    0.4,
			RiskLevel:    model.RiskMedium,
			ObjectsTotal: len(objects),
		},
		Meta: model.Metadata{
			RunID:          "run-" + changeID,
			GeneratedAt:    generatedAt,
			CatalogVersion: "cat-v1",
		},
	}
}

func TestSaveAndGetChange(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := testDoc("CHG-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), "ZREPORT_A", "ZREPORT_B")
	require.NoError(t, store.SaveChange(ctx, doc))

	got, err := store.GetChange(ctx, "CHG-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ChangeID, got.ChangeID)
	assert.Equal(t, doc.Summary, got.Summary)
	assert.Equal(t, doc.Objects, got.Objects)
	assert.True(t, doc.Meta.GeneratedAt.Equal(got.Meta.GeneratedAt))
}

func TestSaveChange_ReplacesPriorRun(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := testDoc("CHG-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), "ZA")
	require.NoError(t, store.SaveChange(ctx, first))

	second := testDoc("CHG-1", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC), "ZA", "ZB")
	require.NoError(t, store.SaveChange(ctx, second))

	got, err := store.GetChange(ctx, "CHG-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.ObjectsTotal)

	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestGetChange_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetChange(context.Background(), "MISSING")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListChanges_NewestFirst(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveChange(ctx, testDoc("OLD", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), "ZA")))
	require.NoError(t, store.SaveChange(ctx, testDoc("NEW", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "ZB")))

	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "NEW", changes[0].ChangeID)
	assert.Equal(t, "OLD", changes[1].ChangeID)
	assert.Equal(t, model.RiskMedium, changes[0].RiskLevel)
	assert.Equal(t, 1, changes[0].ObjectsTotal)
}

func TestDeleteChange(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveChange(ctx, testDoc("CHG-1", time.Now().UTC(), "ZA")))
	require.NoError(t, store.DeleteChange(ctx, "CHG-1"))

	_, err := store.GetChange(ctx, "CHG-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, store.DeleteChange(ctx, "CHG-1"), common.ErrNotFound)
}

func TestSiblingChangeSets(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveChange(ctx, testDoc("CURRENT", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), "ZA")))
	require.NoError(t, store.SaveChange(ctx, testDoc("S2", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), "ZB")))
	require.NoError(t, store.SaveChange(ctx, testDoc("S1", time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), "ZC")))
	require.NoError(t, store.SaveChange(ctx, testDoc("ANCIENT", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "ZD")))

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	siblings, err := store.SiblingChangeSets(ctx, "CURRENT", since)
	require.NoError(t, err)

	require.Len(t, siblings, 2, "current run and out-of-window runs are excluded")
	assert.Equal(t, "S1", siblings[0].ChangeID)
	assert.Equal(t, "S2", siblings[1].ChangeID)
	require.Len(t, siblings[0].Objects, 1)
	assert.Equal(t, "ZC", siblings[0].Objects[0].Name)
}

func TestSiblingChangeSets_SkipsCorruptRows(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveChange(ctx, testDoc("GOOD", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), "ZA")))
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO changes(change_id, generated_at, findings_json) VALUES(?, ?, ?)`,
		"BAD", time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), "{not json")
	require.NoError(t, err)

	siblings, err := store.SiblingChangeSets(ctx, "CURRENT", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, "GOOD", siblings[0].ChangeID)
}

func TestValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.SaveChange(ctx, model.FindingsDocument{})
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = store.GetChange(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // nil context is exactly what is under test
	err = store.DeleteChange(nil, "CHG-1")
	assert.ErrorIs(t, err, ErrNilContext)
}
