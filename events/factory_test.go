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

var testNow = time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)

func fixedFactory() *Factory {
	f := NewFactory()
	f.Now = func() time.Time { return testNow }
	return f
}

func today() time.Time {
	return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
}

func TestBuildRiskDetected(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: org,
		Kind:           models.KindRisk,
		Title:          "Unpatched gateway",
		Description:    "Edge device missing critical patches",
		Criticality:    models.LevelHigh,
	}

	ev, err := fixedFactory().Build(context.Background(), st, rec, TriggerRiskDetected)
	require.NoError(t, err)

	assert.Equal(t, "Risk Detected: Unpatched gateway", ev.Title)
	assert.Equal(t, "A new risk requires review: Edge device missing critical patches", ev.Description)
	assert.Equal(t, models.KindRisk, ev.LinkedRecordType)
	assert.Equal(t, rec.ID, ev.LinkedRecordID)
	assert.Equal(t, "Risk Management", ev.Category)
	assert.Equal(t, models.LevelHigh, ev.Priority)
	assert.Equal(t, models.EventPendingReview, ev.Status)
	assert.Equal(t, today(), ev.StartDate)
	assert.Equal(t, today().AddDate(0, 0, 30), ev.EndDate)
	assert.Regexp(t, `^EV-[0-9A-Z]{26}$`, ev.EventID)
	assert.Equal(t, org, ev.OrganizationID)
}

func TestBuildUsesMitigationDueAsEndDate(t *testing.T) {
	st := store.NewMemory()
	due := today().AddDate(0, 0, -1) // already past; kept verbatim
	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: primitive.NewObjectID(),
		Kind:           models.KindRisk,
		Title:          "Expired control",
		Criticality:    models.LevelCritical,
		MitigationDue:  &due,
	}

	ev, err := fixedFactory().Build(context.Background(), st, rec, TriggerMitigationOverdue)
	require.NoError(t, err)
	assert.Equal(t, today(), ev.StartDate)
	assert.Equal(t, due, ev.EndDate)
	assert.Contains(t, ev.Title, "Mitigation Overdue")
	assert.Equal(t, models.LevelCritical, ev.Priority)
}

func TestBuildIncidentUsesSeverity(t *testing.T) {
	st := store.NewMemory()
	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: primitive.NewObjectID(),
		Kind:           models.KindIncident,
		Title:          "Phishing wave",
		Severity:       models.LevelCritical,
	}

	ev, err := fixedFactory().Build(context.Background(), st, rec, TriggerIncidentDetected)
	require.NoError(t, err)
	assert.Equal(t, models.LevelCritical, ev.Priority)
	assert.Equal(t, today().AddDate(0, 0, 7), ev.EndDate)
	assert.Equal(t, "Incident Management", ev.Category)
}

func TestBuildPolicyApprovedWindow(t *testing.T) {
	st := store.NewMemory()
	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: primitive.NewObjectID(),
		Kind:           models.KindPolicy,
		Title:          "Data retention policy",
	}

	ev, err := fixedFactory().Build(context.Background(), st, rec, TriggerPolicyApproved)
	require.NoError(t, err)
	assert.Contains(t, ev.Title, "Policy Approved")
	assert.Equal(t, models.EventApproved, ev.Status)
	assert.Equal(t, models.LevelLow, ev.Priority)
	assert.Equal(t, today().AddDate(0, 0, 14), ev.EndDate)
}

func TestBuildResolvesOwnerAndReviewerInTenant(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	other := primitive.NewObjectID()
	ctx := context.Background()

	owner := &models.User{FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Role: "Risk Manager"}
	require.NoError(t, st.InsertUser(ctx, org, owner))
	// Reviewer exists only in another tenant; must not resolve.
	foreign := &models.User{Email: "out@example.com"}
	require.NoError(t, st.InsertUser(ctx, other, foreign))

	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: org,
		Kind:           models.KindRisk,
		Title:          "Stale certificate",
		OwnerID:        owner.ID,
		ReviewerID:     foreign.ID,
	}

	ev, err := fixedFactory().Build(ctx, st, rec, TriggerRiskDetected)
	require.NoError(t, err)
	require.NotNil(t, ev.OwnerID)
	assert.Equal(t, owner.ID, *ev.OwnerID)
	require.NotNil(t, ev.CreatorID)
	assert.Equal(t, owner.ID, *ev.CreatorID)
	assert.Nil(t, ev.ReviewerID)
}

func TestBuildRejectsMismatchedTrigger(t *testing.T) {
	st := store.NewMemory()
	rec := &models.SourceRecord{
		ID:             primitive.NewObjectID(),
		OrganizationID: primitive.NewObjectID(),
		Kind:           models.KindPolicy,
		Title:          "Policy",
	}
	_, err := fixedFactory().Build(context.Background(), st, rec, TriggerRiskDetected)
	require.Error(t, err)
}

func TestBuildRejectsMissingTenant(t *testing.T) {
	st := store.NewMemory()
	rec := &models.SourceRecord{
		ID:    primitive.NewObjectID(),
		Kind:  models.KindRisk,
		Title: "No tenant",
	}
	_, err := fixedFactory().Build(context.Background(), st, rec, TriggerRiskDetected)
	require.Error(t, err)
}
