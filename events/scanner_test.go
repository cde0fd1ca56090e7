package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/models"
	"grc/store"
)

func newTestScanner(st *store.Memory) *Scanner {
	engine, _ := newTestEngine(st)
	s := NewScanner(st, engine)
	s.Now = func() time.Time { return testNow }
	return s
}

func TestScanOverdueMitigation(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	ctx := context.Background()

	due := testNow.AddDate(0, 0, -1)
	rec := &models.SourceRecord{
		OrganizationID:   org,
		Kind:             models.KindRisk,
		Title:            "Legacy VPN concentrator",
		Criticality:      models.LevelHigh,
		Status:           "Approved",
		MitigationStatus: store.MitigationYetToStart,
		MitigationDue:    &due,
	}
	require.NoError(t, st.InsertSource(ctx, org, rec))

	scanner := newTestScanner(st)
	res, err := scanner.Run(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Overdue)
	assert.Equal(t, 1, res.Total())

	evs, err := st.ListEventsByKinds(ctx, org, []string{models.KindRisk})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	ev := evs[0]
	assert.Contains(t, ev.Title, "Mitigation Overdue")
	assert.Equal(t, models.KindRisk, ev.LinkedRecordType)
	assert.Equal(t, models.LevelHigh, ev.Priority)
	assert.Equal(t, today(), ev.StartDate)
	assert.Equal(t, due, ev.EndDate)

	// Same-day rescan is a no-op.
	res, err = scanner.Run(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total())
	evs, err = st.ListEventsByKinds(ctx, org, []string{models.KindRisk})
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}

func TestScanSkipsFinishedMitigations(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	ctx := context.Background()

	due := testNow.AddDate(0, 0, -3)
	rec := &models.SourceRecord{
		OrganizationID:   org,
		Kind:             models.KindRisk,
		Title:            "Closed item",
		Status:           "Approved",
		MitigationStatus: store.MitigationCompleted,
		MitigationDue:    &due,
	}
	require.NoError(t, st.InsertSource(ctx, org, rec))

	res, err := newTestScanner(st).Run(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total())
}

func TestScanEscalatesRecentUnassignedHighRisks(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	ctx := context.Background()

	fresh := &models.SourceRecord{
		OrganizationID: org,
		Kind:           models.KindRisk,
		Title:          "Unowned critical exposure",
		Criticality:    models.LevelCritical,
		Status:         "Not Assigned",
		CreatedAt:      testNow.AddDate(0, 0, -2),
	}
	require.NoError(t, st.InsertSource(ctx, org, fresh))

	stale := &models.SourceRecord{
		OrganizationID: org,
		Kind:           models.KindRisk,
		Title:          "Old unassigned exposure",
		Criticality:    models.LevelHigh,
		Status:         "Not Assigned",
		CreatedAt:      testNow.AddDate(0, 0, -30),
	}
	require.NoError(t, st.InsertSource(ctx, org, stale))

	res, err := newTestScanner(st).Run(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Escalated)

	evs, err := st.ListEventsByKinds(ctx, org, []string{models.KindRisk})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Title, "Escalated")
	assert.Equal(t, evs[0].LinkedRecordName, "Unowned critical exposure")
}

func TestScanStaleCompliance(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	ctx := context.Background()

	stale := &models.SourceRecord{
		OrganizationID: org,
		Kind:           models.KindCompliance,
		Title:          "PCI attestation",
		Status:         "Under Review",
		CreatedAt:      testNow.AddDate(0, 0, -120),
	}
	require.NoError(t, st.InsertSource(ctx, org, stale))

	recent := &models.SourceRecord{
		OrganizationID: org,
		Kind:           models.KindCompliance,
		Title:          "SOC 2 renewal",
		Status:         "Under Review",
		CreatedAt:      testNow.AddDate(0, 0, -10),
	}
	require.NoError(t, st.InsertSource(ctx, org, recent))

	res, err := newTestScanner(st).Run(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StaleCompliance)

	evs, err := st.ListEventsByKinds(ctx, org, []string{models.KindCompliance})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Title, "Review Required")
}

func TestRunAllCoversEveryTenant(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	t1 := primitive.NewObjectID()
	t2 := primitive.NewObjectID()

	for _, org := range []primitive.ObjectID{t1, t2} {
		due := testNow.AddDate(0, 0, -1)
		require.NoError(t, st.InsertSource(ctx, org, &models.SourceRecord{
			OrganizationID:   org,
			Kind:             models.KindRisk,
			Title:            "Shared pattern",
			Status:           "Approved",
			MitigationStatus: store.MitigationYetToStart,
			MitigationDue:    &due,
		}))
	}

	results, err := newTestScanner(st).RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[t1.Hex()].Overdue)
	assert.Equal(t, 1, results[t2.Hex()].Overdue)

	// Tenant isolation: each tenant sees only its own event.
	for _, org := range []primitive.ObjectID{t1, t2} {
		evs, err := st.ListEventsByKinds(ctx, org, nil)
		require.NoError(t, err)
		assert.Len(t, evs, 1)
	}
}
