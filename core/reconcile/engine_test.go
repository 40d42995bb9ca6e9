package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memLedger is an in-memory Ledger
type memLedger struct {
	mu        sync.Mutex
	rows      []Row
	appendErr error
	saveErr   error
	saves     int
	cleared   []string
}

func (l *memLedger) KnownIdentifiers() (map[string]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	known := make(map[string]struct{}, len(l.rows))
	for _, r := range l.rows {
		known[r.ID] = struct{}{}
	}
	return known, nil
}

func (l *memLedger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	for _, r := range l.rows {
		if r.ID == row.ID {
			return errors.New("duplicate")
		}
	}
	l.rows = append(l.rows, row)
	return nil
}

func (l *memLedger) PendingComparison(scope []string) ([]Row, error) {
	return l.filter(scope, func(r Row) bool { return r.Primary().IsEmpty() }), nil
}

func (l *memLedger) SaveComparison(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saveErr != nil {
		return l.saveErr
	}
	for i := range l.rows {
		if l.rows[i].ID == row.ID {
			l.rows[i] = row
			l.saves++
			return nil
		}
	}
	return errors.New("row not found")
}

func (l *memLedger) ClearVerdicts(ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleared = append(l.cleared, ids...)
	set := toSet(ids)
	for i := range l.rows {
		if _, ok := set[l.rows[i].ID]; ok {
			l.rows[i].Results = [pairCount]ComparisonResult{}
		}
	}
	return nil
}

func (l *memLedger) ErrorRows(scope []string) ([]Row, error) {
	return l.filter(scope, func(r Row) bool { return r.IsError() }), nil
}

func (l *memLedger) filter(scope []string, keep func(Row) bool) []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	set := toSet(scope)
	var out []Row
	for _, r := range l.rows {
		if _, ok := set[r.ID]; ok && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (l *memLedger) row(id string) Row {
	for _, r := range l.filter([]string{id}, func(Row) bool { return true }) {
		return r
	}
	return Row{}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

type fakeWorkOrders struct {
	calls int
	fetch func(Key) (WorkOrder, error)
}

func (f *fakeWorkOrders) FetchWorkOrder(ctx context.Context, key Key) (WorkOrder, error) {
	f.calls++
	return f.fetch(key)
}

type fakeDrawings struct {
	calls int
	fetch func(pn string, call int) (DrawingFields, error)
}

func (f *fakeDrawings) FetchDrawing(ctx context.Context, pn string) (DrawingFields, error) {
	f.calls++
	return f.fetch(pn, f.calls)
}

type fakeParts struct {
	lookup func(pn string) (PartRecord, error)
}

func (f *fakeParts) Lookup(ctx context.Context, pn string) (PartRecord, error) {
	return f.lookup(pn)
}

type fakeSession struct {
	opened     int
	entered    []Phase
	recovered  []Phase
	closed     int
	recoverErr error
}

func (s *fakeSession) Open(ctx context.Context) error { s.opened++; return nil }

func (s *fakeSession) Enter(ctx context.Context, phase Phase) error {
	s.entered = append(s.entered, phase)
	return nil
}

func (s *fakeSession) Recover(ctx context.Context, phase Phase) error {
	s.recovered = append(s.recovered, phase)
	return s.recoverErr
}

func (s *fakeSession) Close() error { s.closed++; return nil }

type fakeSnapshots struct {
	captured []string
}

func (f *fakeSnapshots) Capture(ctx context.Context, phase Phase, id string) (string, error) {
	f.captured = append(f.captured, string(phase)+":"+id)
	return "erros/" + id + ".png", nil
}

// autoOperator acknowledges every prompt and answers decisions from a script.
// Once the script runs out it finishes.
func autoOperator(c *Control, decisions ...Decision) *int {
	asked := new(int)
	c.Subscribe(func(s Status) {
		switch s.Awaiting {
		case AwaitingAck:
			_ = c.Acknowledge()
		case AwaitingDecision:
			d := DecisionFinish
			if *asked < len(decisions) {
				d = decisions[*asked]
			}
			*asked++
			_ = c.Decide(d)
		}
	})
	return asked
}

var scenarioItems = []WorkItem{
	{ID: "1001", Key: Key{Order: "55", Line: "10"}},
	{ID: "1002", Key: Key{Order: "55", Line: "20"}},
}

type scenario struct {
	ledger    *memLedger
	orders    *fakeWorkOrders
	drawings  *fakeDrawings
	parts     *fakeParts
	session   *fakeSession
	snapshots *fakeSnapshots
	control   *Control
	engine    *Engine
}

// newScenario wires the two-item scenario: FSE reports 123-456-001 rev B for
// both items, engineering reports B then C, the database reports B.
func newScenario() *scenario {
	s := &scenario{
		ledger: &memLedger{},
		orders: &fakeWorkOrders{fetch: func(k Key) (WorkOrder, error) {
			return WorkOrder{
				Fields:     WorkOrderFields{Order: k.Order, Item: k.Line, PartNumber: "123-456-001", PartRevision: "B"},
				PartNumber: "123-456-001",
				Revision:   "B",
			}, nil
		}},
		drawings: &fakeDrawings{fetch: func(pn string, call int) (DrawingFields, error) {
			if call == 1 {
				return DrawingFields{PartNumber: pn, Revision: "B"}, nil
			}
			return DrawingFields{PartNumber: pn, Revision: "C"}, nil
		}},
		parts: &fakeParts{lookup: func(pn string) (PartRecord, error) {
			return PartRecord{Drawing: pn, RevPN: "B"}, nil
		}},
		session:   &fakeSession{},
		snapshots: &fakeSnapshots{},
		control:   NewControl(),
	}
	s.engine = s.newEngine()
	return s
}

func (s *scenario) newEngine() *Engine {
	e := NewEngine(s.ledger, s.orders, s.drawings, s.parts, s.session, s.control, nil)
	e.Snapshots = s.snapshots
	return e
}

func TestEngine_EndToEnd(t *testing.T) {
	s := newScenario()
	asked := autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, OutcomeFinishedWithErrors, report.Outcome)
	assert.Equal(t, 1, report.Passes)
	assert.Equal(t, 2, report.Extracted)
	assert.Equal(t, 2, report.Compared)
	assert.Equal(t, []string{"1002"}, report.ErrorRows)
	assert.Equal(t, 1, *asked)
	assert.Equal(t, StateDone, s.engine.State())

	r1 := s.ledger.row("1001")
	assert.Equal(t, VerdictOK, r1.Results[PairEngineeringFSE].Verdict)
	assert.Equal(t, VerdictOK, r1.Results[PairDatabaseFSE].Verdict)
	assert.Equal(t, VerdictOK, r1.Results[PairDatabaseEngineering].Verdict)
	assert.Equal(t, "B", r1.EngineeringRevision)
	assert.Equal(t, "B", r1.DatabaseRevision)
	assert.Equal(t, "123-456-001", r1.Part.Drawing)

	r2 := s.ledger.row("1002")
	assert.Equal(t, VerdictDivergent, r2.Results[PairEngineeringFSE].Verdict)
	assert.Equal(t, "ENG: C vs FSE: B", r2.Results[PairEngineeringFSE].Detail)
	assert.Equal(t, VerdictOK, r2.Results[PairDatabaseFSE].Verdict)
	assert.Equal(t, VerdictDivergent, r2.Results[PairDatabaseEngineering].Verdict)
	assert.Equal(t, "BANCO: B vs ENG: C", r2.Results[PairDatabaseEngineering].Detail)

	// One login, one confirmation per phase, closed at the end
	assert.Equal(t, 1, s.session.opened)
	assert.Equal(t, []Phase{PhaseExtract, PhaseCompare}, s.session.entered)
	assert.Equal(t, 1, s.session.closed)
}

func TestEngine_ExtractIsIdempotent(t *testing.T) {
	s := newScenario()
	autoOperator(s.control)

	_, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)
	require.Equal(t, 2, s.orders.calls)

	// Second invocation against the same ledger
	s.control = NewControl()
	autoOperator(s.control)
	second := s.newEngine()

	report, err := second.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Extracted)
	assert.Equal(t, 2, s.orders.calls)
	assert.Len(t, s.ledger.rows, 2)
	// Nothing pending: no fetches, no session
	assert.Equal(t, 0, report.Compared)
	assert.Equal(t, 1, s.session.opened)
}

func TestEngine_ReprocessClearsExactlyErrorRows(t *testing.T) {
	s := newScenario()
	// Engineering returns C only on the second call; the reprocess pass sees B
	s.drawings.fetch = func(pn string, call int) (DrawingFields, error) {
		if call == 2 {
			return DrawingFields{Revision: "C"}, nil
		}
		return DrawingFields{Revision: "B"}, nil
	}
	autoOperator(s.control, DecisionReprocess)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, report.Outcome)
	assert.Equal(t, 2, report.Passes)
	assert.Equal(t, []string{"1002"}, s.ledger.cleared)
	assert.Equal(t, 3, s.drawings.calls)
	assert.Empty(t, report.ErrorRows)
	assert.Equal(t, VerdictOK, s.ledger.row("1002").Results[PairEngineeringFSE].Verdict)
	// The compare view is confirmed once per run, not per pass
	assert.Equal(t, []Phase{PhaseExtract, PhaseCompare}, s.session.entered)
}

func TestEngine_ExtractFailuresAreSkipped(t *testing.T) {
	s := newScenario()
	s.orders.fetch = func(k Key) (WorkOrder, error) {
		if k.Line == "10" {
			return WorkOrder{}, NewUnavailable("fse", ReasonTimeout, errors.New("no details"))
		}
		return WorkOrder{PartNumber: "123-456-001", Revision: "B"}, nil
	}
	autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, 1, report.ExtractFailures)
	assert.Len(t, s.ledger.rows, 1)
	assert.Equal(t, "1002", s.ledger.rows[0].ID)
	assert.Equal(t, []string{"extracao_FSE:55-10"}, s.snapshots.captured)
	assert.Empty(t, s.session.recovered)
}

func TestEngine_MissingPartNumber(t *testing.T) {
	s := newScenario()
	s.orders.fetch = func(k Key) (WorkOrder, error) {
		return WorkOrder{Revision: "B"}, nil
	}
	autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems[:1])
	require.NoError(t, err)

	assert.Equal(t, 0, s.drawings.calls)
	row := s.ledger.row("1001")
	assert.Equal(t, VerdictPartNumberMissing, row.Primary().Verdict)
	assert.Equal(t, []string{"1001"}, report.ErrorRows)
}

func TestEngine_UnavailableSourcesYieldFailed(t *testing.T) {
	s := newScenario()
	s.drawings.fetch = func(pn string, call int) (DrawingFields, error) {
		return DrawingFields{}, NewUnavailable("engineering", ReasonNotFound, nil)
	}
	s.parts.lookup = func(pn string) (PartRecord, error) {
		return PartRecord{}, errors.New("connection refused")
	}
	autoOperator(s.control)

	_, err := s.engine.Run(context.Background(), scenarioItems[:1])
	require.NoError(t, err)

	row := s.ledger.row("1001")
	assert.Equal(t, "Not found", row.EngineeringRevision)
	assert.Equal(t, "Unreachable", row.DatabaseRevision)
	for _, pair := range Pairs {
		assert.Equal(t, VerdictFailed, row.Results[pair].Verdict, pair.String())
	}
	assert.Equal(t, "ENG: Not found vs FSE: B", row.Results[PairEngineeringFSE].Detail)
}

func TestEngine_LookupFailureKeepsDrawing(t *testing.T) {
	s := newScenario()
	s.parts.lookup = func(pn string) (PartRecord, error) {
		return PartRecord{}, NewUnavailable("database", ReasonUnreachable, errors.New("connection refused"))
	}
	autoOperator(s.control)

	_, err := s.engine.Run(context.Background(), scenarioItems[:1])
	require.NoError(t, err)

	row := s.ledger.row("1001")
	assert.Equal(t, "B", row.EngineeringRevision)
	assert.Equal(t, VerdictOK, row.Results[PairEngineeringFSE].Verdict)
	assert.Equal(t, VerdictFailed, row.Results[PairDatabaseFSE].Verdict)
	assert.Equal(t, VerdictFailed, row.Results[PairDatabaseEngineering].Verdict)
}

func TestEngine_UnexpectedFailureRecovers(t *testing.T) {
	s := newScenario()
	s.drawings.fetch = func(pn string, call int) (DrawingFields, error) {
		if call == 1 {
			return DrawingFields{}, errors.New("back button missing")
		}
		return DrawingFields{Revision: "B"}, nil
	}
	autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, []Phase{PhaseCompare}, s.session.recovered)
	assert.Equal(t, 1, report.CompareFailures)
	assert.Equal(t, 1, report.Compared)
	// The failed row stays pending and counts as an error row
	assert.True(t, s.ledger.row("1001").Primary().IsEmpty())
	assert.Equal(t, []string{"1001"}, report.ErrorRows)
}

func TestEngine_RecoveryFailureAborts(t *testing.T) {
	s := newScenario()
	s.orders.fetch = func(k Key) (WorkOrder, error) {
		return WorkOrder{}, errors.New("search view lost")
	}
	s.session.recoverErr = errors.New("browser gone")
	autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser gone")
	assert.Equal(t, 1, s.orders.calls)
	assert.Equal(t, 1, report.ExtractFailures)
	assert.Equal(t, 1, s.session.closed)
}

func TestEngine_PersistenceFailureIsFatal(t *testing.T) {
	s := newScenario()
	s.ledger.appendErr = errors.New("disk full")
	autoOperator(s.control)

	_, err := s.engine.Run(context.Background(), scenarioItems)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, s.orders.calls)
	assert.Equal(t, StateDone, s.control.Snapshot().State)
}

func TestEngine_CancelAtCheckpoint(t *testing.T) {
	s := newScenario()
	s.orders.fetch = func(k Key) (WorkOrder, error) {
		s.control.Cancel()
		return WorkOrder{PartNumber: "123-456-001", Revision: "B"}, nil
	}
	autoOperator(s.control)

	report, err := s.engine.Run(context.Background(), scenarioItems)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, report.Outcome)
	// The in-flight item completes; the next one is never started
	assert.Equal(t, 1, s.orders.calls)
	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, 1, s.session.closed)
}

func TestEngine_PauseBlocksWorker(t *testing.T) {
	s := newScenario()
	started := make(chan struct{}, len(scenarioItems))
	s.orders.fetch = func(k Key) (WorkOrder, error) {
		started <- struct{}{}
		return WorkOrder{PartNumber: "123-456-001", Revision: "B"}, nil
	}
	autoOperator(s.control)
	s.control.Pause()

	done := make(chan error, 1)
	go func() {
		_, err := s.engine.Run(context.Background(), scenarioItems)
		done <- err
	}()

	select {
	case <-started:
		t.Fatal("work item started while paused")
	case <-time.After(50 * time.Millisecond):
	}

	s.control.Resume()
	require.NoError(t, <-done)
	assert.Len(t, started, 2)
	assert.Equal(t, 2, s.ledger.saves)
}

func TestEngine_RunTwiceFails(t *testing.T) {
	s := newScenario()
	autoOperator(s.control)

	_, err := s.engine.Run(context.Background(), nil)
	require.NoError(t, err)

	_, err = s.engine.Run(context.Background(), nil)
	assert.Error(t, err)
}
