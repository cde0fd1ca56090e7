package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/access"
	"grc/ai"
	"grc/events"
	"grc/models"
	"grc/runner"
	"grc/store"
)

// fakeCompleter serves canned model output; when block is set, Complete
// waits until it is closed so tests can hold a job in flight.
type fakeCompleter struct {
	out   string
	err   error
	block chan struct{}
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.out, c.err
}

type testEnv struct {
	st    *store.Memory
	comp  *fakeCompleter
	org   primitive.ObjectID
	scope access.Scope
}

// newTestEnv wires the handler package against an in-memory store.
// Handlers share package-level collaborators, so tests using this
// fixture must not run in parallel.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemory()
	comp := &fakeCompleter{}
	factory := events.NewFactory()
	engine := events.NewEngine(st, factory, nil)
	jobs := runner.New(2, 50)
	t.Cleanup(jobs.Shutdown)

	Init(Deps{
		Store:       st,
		Engine:      engine,
		Scanner:     events.NewScanner(st, engine),
		Synthesizer: ai.NewSynthesizer(st, comp, time.Minute),
		Runner:      jobs,
		Gate:        access.NewRoleGate(st),
	})

	org := primitive.NewObjectID()
	return &testEnv{
		st:   st,
		comp: comp,
		org:  org,
		scope: access.Scope{
			OrgID:    org,
			UserID:   primitive.NewObjectID(),
			UserName: "Mara Ortiz",
			Role:     "GRC Administrator",
		},
	}
}

func (e *testEnv) request(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	return req.WithContext(access.WithScope(req.Context(), e.scope))
}

func (e *testEnv) bind(t *testing.T, role string, viewAll bool, modules ...string) {
	t.Helper()
	err := e.st.InsertRoleBinding(context.Background(), e.org, &models.RoleBinding{
		OrganizationID:    e.org,
		UserID:            e.scope.UserID,
		Role:              role,
		ViewAllEvents:     viewAll,
		AccessibleModules: modules,
		Active:            true,
	})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}
