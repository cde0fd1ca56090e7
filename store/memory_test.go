package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/apperr"
	"grc/models"
)

func TestTenantIsolation(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	t1 := primitive.NewObjectID()
	t2 := primitive.NewObjectID()

	rec := &models.SourceRecord{Kind: models.KindRisk, Title: "T1 risk"}
	require.NoError(t, st.InsertSource(ctx, t1, rec))
	require.NoError(t, st.InsertRisk(ctx, t1, &models.Risk{OrganizationID: t1, RiskID: "R-1000", Title: "T1"}))
	require.NoError(t, st.InsertEvent(ctx, t1, &models.Event{OrganizationID: t1, LinkedRecordType: models.KindRisk, Title: "T1 event"}))

	_, err := st.FindSource(ctx, t2, models.KindRisk, rec.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	risks, err := st.ListRisks(ctx, t2, models.RiskFilter{}, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, risks)

	events, err := st.ListEventsByKinds(ctx, t2, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	n, err := st.CountRisks(ctx, t2, models.RiskFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestZeroTenantRejected(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	_, err := st.ListRisks(ctx, primitive.NilObjectID, models.RiskFilter{}, 1, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindMissingTenant))

	err = st.InsertSource(ctx, primitive.NilObjectID, &models.SourceRecord{Kind: models.KindRisk})
	assert.True(t, apperr.IsKind(err, apperr.KindMissingTenant))

	_, err = st.AllocateRiskID(ctx, primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindMissingTenant))
}

func TestAllocateRiskID(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()

	id, err := st.AllocateRiskID(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "R-1000", id)

	// Ids inserted out of band move the counter forward, and gaps in
	// the existing suffixes are tolerated.
	require.NoError(t, st.InsertRisk(ctx, org, &models.Risk{OrganizationID: org, RiskID: "R-1007"}))
	id, err = st.AllocateRiskID(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "R-1008", id)

	// An id claimed but never persisted is simply skipped.
	id, err = st.AllocateRiskID(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "R-1009", id)

	// Five-digit suffixes order numerically, not lexicographically.
	require.NoError(t, st.InsertRisk(ctx, org, &models.Risk{OrganizationID: org, RiskID: "R-10000"}))
	id, err = st.AllocateRiskID(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "R-10001", id)

	// Another tenant starts from the floor.
	id, err = st.AllocateRiskID(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, "R-1000", id)
}

func TestAllocateRiskIDConcurrent(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()

	const callers = 32
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := st.AllocateRiskID(ctx, org)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, callers)
	for _, id := range ids {
		assert.False(t, seen[id], "id %s handed out twice", id)
		seen[id] = true
	}
}

func TestFindOpenEventMatching(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()
	recID := primitive.NewObjectID()

	ev := &models.Event{
		OrganizationID:   org,
		LinkedRecordType: models.KindRisk,
		LinkedRecordID:   recID,
		Title:            "Mitigation Overdue: Legacy VPN",
		Status:           models.EventPendingReview,
	}
	require.NoError(t, st.InsertEvent(ctx, org, ev))

	found, err := st.FindOpenEvent(ctx, org, models.KindRisk, recID, "mitigation overdue")
	require.NoError(t, err)
	assert.NotNil(t, found, "title hint matches case-insensitively")

	found, err = st.FindOpenEvent(ctx, org, models.KindRisk, recID, "Escalated")
	require.NoError(t, err)
	assert.Nil(t, found, "different family does not match")

	found, err = st.FindOpenEvent(ctx, org, models.KindRisk, primitive.NewObjectID(), "Mitigation Overdue")
	require.NoError(t, err)
	assert.Nil(t, found, "different record does not match")

	ev.Status = models.EventCompleted
	require.NoError(t, st.UpdateEvent(ctx, org, ev))
	found, err = st.FindOpenEvent(ctx, org, models.KindRisk, recID, "Mitigation Overdue")
	require.NoError(t, err)
	assert.Nil(t, found, "closed events do not count")
}

func TestRunTxStagedVisibilityAndAbort(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()

	hookRan := false
	err := st.RunTx(ctx, func(tx Tx) error {
		rec := &models.SourceRecord{Kind: models.KindRisk, Title: "Staged"}
		if err := tx.InsertSource(ctx, org, rec); err != nil {
			return err
		}
		// Read-your-writes inside the transaction.
		got, err := tx.FindSource(ctx, org, models.KindRisk, rec.ID)
		require.NoError(t, err)
		require.Equal(t, "Staged", got.Title)
		// Not visible outside before commit.
		_, err = st.FindSource(ctx, org, models.KindRisk, rec.ID)
		require.Error(t, err)

		tx.OnCommit(func(ctx context.Context) { hookRan = true })
		return nil
	})
	require.NoError(t, err)
	assert.True(t, hookRan)

	hookRan = false
	boom := errors.New("abort")
	var staged *models.SourceRecord
	err = st.RunTx(ctx, func(tx Tx) error {
		staged = &models.SourceRecord{Kind: models.KindRisk, Title: "Rolled back"}
		if err := tx.InsertSource(ctx, org, staged); err != nil {
			return err
		}
		tx.OnCommit(func(ctx context.Context) { hookRan = true })
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, hookRan, "hooks must not run on abort")
	_, err = st.FindSource(ctx, org, models.KindRisk, staged.ID)
	require.Error(t, err)
}

func TestTxAllocateRiskIDStaysSequential(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()

	err := st.RunTx(ctx, func(tx Tx) error {
		for i := 0; i < 3; i++ {
			id, err := tx.AllocateRiskID(ctx, org)
			require.NoError(t, err)
			require.Equal(t, fmt.Sprintf("R-%04d", 1000+i), id)
			if err := tx.InsertRisk(ctx, org, &models.Risk{
				OrganizationID: org,
				RiskID:         id,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	n, err := st.CountRisks(ctx, org, models.RiskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestListRisksPagination(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	org := primitive.NewObjectID()

	for i := 0; i < 7; i++ {
		require.NoError(t, st.InsertRisk(ctx, org, &models.Risk{
			OrganizationID: org,
			RiskID:         fmt.Sprintf("R-%04d", 1000+i),
			Entity:         "vendor_management",
			Data:           "temp_vendor",
		}))
	}

	page1, err := st.ListRisks(ctx, org, models.RiskFilter{}, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 3)

	page3, err := st.ListRisks(ctx, org, models.RiskFilter{}, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	beyond, err := st.ListRisks(ctx, org, models.RiskFilter{}, 4, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	filtered, err := st.ListRisks(ctx, org, models.RiskFilter{Entity: "other"}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestFindEntityRowAnyCrossTenantVisibility(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	t1 := primitive.NewObjectID()

	row := &models.EntityRow{Entity: "vendor_management", Table: "temp_vendor"}
	require.NoError(t, st.InsertEntityRow(ctx, t1, row))

	got, err := st.FindEntityRowAny(ctx, "vendor_management", "temp_vendor", row.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, t1, got.OrganizationID)

	_, err = st.FindEntityRowAny(ctx, "vendor_management", "temp_vendor", primitive.NewObjectID().Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
