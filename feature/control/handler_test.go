package control

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"revision-validator/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLedger struct {
	rows []reconcile.Row
	err  error
}

func (f *fakeLedger) Summary(scope []string) (reconcile.Summary, error) {
	return reconcile.Summarize(f.rows), f.err
}

func (f *fakeLedger) ErrorRows(scope []string) ([]reconcile.Row, error) {
	var out []reconcile.Row
	for i := range f.rows {
		if f.rows[i].IsError() {
			out = append(out, f.rows[i])
		}
	}
	return out, f.err
}

type fakeSnapshots []string

func (f fakeSnapshots) List() ([]string, error) { return f, nil }

func testRows() []reconcile.Row {
	ok := reconcile.ComparisonResult{Verdict: reconcile.VerdictOK}
	div := reconcile.ComparisonResult{Verdict: reconcile.VerdictDivergent, Detail: "ENG: B vs FSE: A"}
	return []reconcile.Row{
		{ID: "1001", PartNumber: "123-456-001", Results: [3]reconcile.ComparisonResult{ok, ok, ok}},
		{ID: "1002", PartNumber: "123-456-002", Results: [3]reconcile.ComparisonResult{div, ok, div}},
	}
}

func setupTestApp(t *testing.T) (*fiber.App, *reconcile.Control) {
	app := fiber.New()
	control := reconcile.NewControl()
	NewHandler(control, &fakeLedger{rows: testRows()}, fakeSnapshots{"erro_a.png"}, zap.NewNop()).RegisterRoutes(app)
	return app, control
}

func decode[T any](t *testing.T, app *fiber.App, method, target, body string) (int, T) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleFlowControl(t *testing.T) {
	app, control := setupTestApp(t)

	code, status := decode[reconcile.Status](t, app, "POST", "/run/pause", "")
	assert.Equal(t, 200, code)
	assert.True(t, status.Paused)

	_, status = decode[reconcile.Status](t, app, "GET", "/run", "")
	assert.True(t, status.Paused)

	_, status = decode[reconcile.Status](t, app, "POST", "/run/resume", "")
	assert.False(t, status.Paused)

	_, status = decode[reconcile.Status](t, app, "POST", "/run/cancel", "")
	assert.True(t, status.Cancelled)
	assert.ErrorIs(t, control.Checkpoint(context.Background()), reconcile.ErrCancelled)
}

func TestHandleAck(t *testing.T) {
	app, control := setupTestApp(t)

	code, _ := decode[map[string]string](t, app, "POST", "/run/ack", "")
	assert.Equal(t, fiber.StatusConflict, code)

	awaiting := make(chan struct{})
	control.Subscribe(func(s reconcile.Status) {
		if s.Awaiting == reconcile.AwaitingAck {
			close(awaiting)
		}
	})
	done := make(chan error, 1)
	go func() { done <- control.AwaitAck(context.Background(), reconcile.PromptLogin) }()
	<-awaiting

	code, _ = decode[reconcile.Status](t, app, "POST", "/run/ack", "")
	assert.Equal(t, 200, code)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("acknowledgement was not delivered")
	}
}

func TestHandleDecision(t *testing.T) {
	app, control := setupTestApp(t)

	code, _ := decode[map[string]string](t, app, "POST", "/run/decision", `{"decision":"maybe"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = decode[map[string]string](t, app, "POST", "/run/decision", `{"decision":"finish"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	awaiting := make(chan struct{})
	control.Subscribe(func(s reconcile.Status) {
		if s.Awaiting == reconcile.AwaitingDecision {
			close(awaiting)
		}
	})
	got := make(chan reconcile.Decision, 1)
	go func() {
		d, _ := control.AwaitDecision(context.Background(), "reprocess?")
		got <- d
	}()
	<-awaiting

	code, _ = decode[reconcile.Status](t, app, "POST", "/run/decision", `{"decision":"reprocess"}`)
	assert.Equal(t, 200, code)

	select {
	case d := <-got:
		assert.Equal(t, reconcile.DecisionReprocess, d)
	case <-time.After(time.Second):
		t.Fatal("decision was not delivered")
	}
}

func TestHandleSummaryAndErrors(t *testing.T) {
	app, _ := setupTestApp(t)

	code, summary := decode[reconcile.Summary](t, app, "GET", "/run/summary", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, 2, summary.TotalRows)
	assert.Equal(t, 1, summary.ErrorRows)

	code, rows := decode[[]ErrorRow](t, app, "GET", "/run/errors", "")
	assert.Equal(t, 200, code)
	require.Len(t, rows, 1)
	assert.Equal(t, "1002", rows[0].ID)
	assert.Equal(t, reconcile.VerdictDivergent, rows[0].Results["Eng vs FSE"].Verdict)
	assert.Equal(t, reconcile.VerdictOK, rows[0].Results["Banco vs FSE"].Verdict)

	code, names := decode[[]string](t, app, "GET", "/run/snapshots", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, []string{"erro_a.png"}, names)
}

func TestHandleSummary_LedgerError(t *testing.T) {
	app := fiber.New()
	NewHandler(reconcile.NewControl(), &fakeLedger{err: assert.AnError}, nil, nil).RegisterRoutes(app)

	code, _ := decode[map[string]string](t, app, "GET", "/run/summary", "")
	assert.Equal(t, 500, code)

	code, names := decode[[]string](t, app, "GET", "/run/snapshots", "")
	assert.Equal(t, 200, code)
	assert.Empty(t, names)
}

func TestLoader(t *testing.T) {
	feature := NewFeature(reconcile.NewControl(), &fakeLedger{}, nil, zap.NewNop())
	assert.Equal(t, "control", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}
