package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/models"
	"grc/store"
)

func seedBinding(t *testing.T, st *store.Memory, org primitive.ObjectID, rb models.RoleBinding) Scope {
	t.Helper()
	user := &models.User{Email: rb.Role + "@example.com", Role: rb.Role}
	require.NoError(t, st.InsertUser(context.Background(), org, user))
	rb.UserID = user.ID
	rb.Active = true
	require.NoError(t, st.InsertRoleBinding(context.Background(), org, &rb))
	return Scope{OrgID: org, UserID: user.ID, Role: rb.Role}
}

func eventOfKind(org primitive.ObjectID, kind string) models.Event {
	return models.Event{
		ID:               primitive.NewObjectID(),
		EventID:          "EV-TEST",
		OrganizationID:   org,
		Title:            kind + " event",
		LinkedRecordType: kind,
		Category:         ModuleFor(kind),
		Status:           models.EventPendingReview,
	}
}

func TestVisibilityMatrix(t *testing.T) {
	tests := []struct {
		role    string
		visible map[string]bool
	}{
		{"GRC Administrator", map[string]bool{"risk": true, "compliance": true, "audit": true, "incident": true, "policy": true}},
		{"Audit Manager", map[string]bool{"risk": true, "compliance": true, "audit": true, "incident": true, "policy": true}},
		{"Internal Auditor", map[string]bool{"risk": true, "compliance": true, "audit": true, "incident": true, "policy": true}},
		{"Compliance Officer", map[string]bool{"risk": false, "compliance": true, "audit": false, "incident": false, "policy": false}},
		{"Compliance Manager", map[string]bool{"risk": false, "compliance": true, "audit": false, "incident": false, "policy": false}},
		{"Policy Manager", map[string]bool{"risk": false, "compliance": false, "audit": false, "incident": false, "policy": true}},
		{"Risk Analyst", map[string]bool{"risk": true, "compliance": false, "audit": false, "incident": false, "policy": false}},
		{"Incident Analyst", map[string]bool{"risk": false, "compliance": false, "audit": false, "incident": true, "policy": false}},
		{"Unrelated Role", map[string]bool{"risk": false, "compliance": false, "audit": false, "incident": false, "policy": false}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			st := store.NewMemory()
			org := primitive.NewObjectID()
			scope := seedBinding(t, st, org, models.RoleBinding{Role: tt.role})
			gate := NewRoleGate(st)

			for kind, want := range tt.visible {
				ev := eventOfKind(org, kind)
				assert.Equal(t, want, gate.CanViewEvent(context.Background(), scope, &ev), "kind %s", kind)
			}
		})
	}
}

func TestViewAllEventsOverridesFamily(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	scope := seedBinding(t, st, org, models.RoleBinding{Role: "Compliance Officer", ViewAllEvents: true})
	gate := NewRoleGate(st)

	for _, kind := range models.KnownKinds {
		ev := eventOfKind(org, kind)
		assert.True(t, gate.CanViewEvent(context.Background(), scope, &ev), kind)
	}
}

func TestNoBindingDeniesEverything(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	gate := NewRoleGate(st)
	scope := Scope{OrgID: org, UserID: primitive.NewObjectID(), Role: "Risk Manager"}

	ev := eventOfKind(org, models.KindRisk)
	assert.False(t, gate.CanViewEvent(context.Background(), scope, &ev))
}

func TestCrossTenantEventAlwaysDenied(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	scope := seedBinding(t, st, org, models.RoleBinding{Role: "GRC Administrator"})
	gate := NewRoleGate(st)

	foreign := eventOfKind(primitive.NewObjectID(), models.KindRisk)
	assert.False(t, gate.CanViewEvent(context.Background(), scope, &foreign))
}

func TestUnknownKindFallsBackToAccessibleModules(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	scope := seedBinding(t, st, org, models.RoleBinding{
		Role:              "Vendor Liaison",
		AccessibleModules: []string{"Vendor Management"},
	})
	gate := NewRoleGate(st)

	ev := models.Event{
		OrganizationID:   org,
		LinkedRecordType: "vendor",
		Category:         "Vendor Management",
		Status:           models.EventPendingReview,
	}
	assert.True(t, gate.CanViewEvent(context.Background(), scope, &ev))

	ev.Category = "Contract Management"
	assert.False(t, gate.CanViewEvent(context.Background(), scope, &ev))
}

func TestFilterEventsPreservesOrder(t *testing.T) {
	st := store.NewMemory()
	org := primitive.NewObjectID()
	scope := seedBinding(t, st, org, models.RoleBinding{Role: "Compliance Officer"})
	gate := NewRoleGate(st)

	var all []models.Event
	for _, kind := range models.KnownKinds {
		all = append(all, eventOfKind(org, kind))
	}
	visible := gate.FilterEvents(context.Background(), scope, all)
	require.Len(t, visible, 1)
	assert.Equal(t, models.KindCompliance, visible[0].LinkedRecordType)
}
