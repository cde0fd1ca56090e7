package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grc/models"
)

func TestIngestRejectsBadTriggers(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing trigger_type", map[string]interface{}{
			"record_type": "risk",
		}},
		{"unknown record_type", map[string]interface{}{
			"trigger_type": "risk_detected",
			"record_type":  "vendor_contract",
		}},
		{"trigger from wrong family", map[string]interface{}{
			"trigger_type": "policy_published",
			"record_type":  "risk",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", tc.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestIngestRequiresScope(t *testing.T) {
	env := newTestEnv(t)

	req := env.request(t, http.MethodPost, "/api/webhook/risk-source", map[string]interface{}{
		"trigger_type": "risk_detected",
		"record_type":  "risk",
	})
	req = req.WithContext(context.Background())

	rr := httptest.NewRecorder()
	IngestRiskSource(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestIngestSynthesizesRecordFromDetails(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", map[string]interface{}{
		"trigger_type": "risk_detected",
		"record_type":  "risk",
		"risk_details": map[string]interface{}{
			"title":       "Unpatched edge firewall",
			"criticality": "High",
		},
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	out := decodeBody(t, rr)
	assert.Equal(t, true, out["success"])
	created, ok := out["created_events"].([]interface{})
	require.True(t, ok)
	require.Len(t, created, 1)

	ev := created[0].(map[string]interface{})
	assert.Equal(t, "Risk Detected: Unpatched edge firewall", ev["event_title"])
	assert.True(t, strings.HasPrefix(ev["event_id_generated"].(string), "EV-"))

	// The synthesized source record was persisted too.
	all, err := env.st.ListEventsByKinds(context.Background(), env.org, []string{models.KindRisk})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "High", all[0].Priority)
}

func TestIngestDetailsRequireTitle(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", map[string]interface{}{
		"trigger_type": "incident_detected",
		"record_type":  "incident",
		"incident_details": map[string]interface{}{
			"severity": "Critical",
		},
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIngestDeduplicatesRepeatedTriggers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := &models.SourceRecord{
		Kind:        models.KindRisk,
		Title:       "Stale TLS certificates",
		Criticality: "Medium",
	}
	require.NoError(t, env.st.InsertSource(ctx, env.org, rec))

	body := map[string]interface{}{
		"trigger_type": "risk_detected",
		"record_type":  "risk",
		"record_id":    rec.ID.Hex(),
	}

	rr := httptest.NewRecorder()
	IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", body))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decodeBody(t, rr)["created_events"], 1)

	rr = httptest.NewRecorder()
	IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", body))
	require.Equal(t, http.StatusOK, rr.Code)
	out := decodeBody(t, rr)
	assert.Empty(t, out["created_events"])
	assert.Equal(t, "trigger processed, no new events", out["message"])
}

func TestIngestUnknownRecordID(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	IngestRiskSource(rr, env.request(t, http.MethodPost, "/api/webhook/risk-source", map[string]interface{}{
		"trigger_type": "risk_detected",
		"record_type":  "risk",
		"record_id":    "not-a-hex-id",
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
