package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome is how a run ended.
type Outcome string

const (
	// OutcomeCompleted means every row in scope has three OK verdicts.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFinishedWithErrors means the operator chose to finish with error rows left.
	OutcomeFinishedWithErrors Outcome = "finished_with_errors"
	// OutcomeCancelled means the run was cancelled before it reached a decision.
	OutcomeCancelled Outcome = "cancelled"
)

// Report summarizes one invocation of Run.
type Report struct {
	Outcome         Outcome  `json:"outcome"`
	Passes          int      `json:"passes"`
	Extracted       int      `json:"extracted"`
	ExtractFailures int      `json:"extract_failures"`
	Compared        int      `json:"compared"`
	CompareFailures int      `json:"compare_failures"`
	ErrorRows       []string `json:"error_rows"`
}

// Prompts shown to the operator at the manual checkpoints.
const (
	PromptLogin   = "Log in to the portal, then continue."
	PromptExtract = "Open 'FSE' > 'Busca FSe' in the browser, then continue."
	PromptCompare = "Confirm the 'Desenhos Engenharia' screen is open, then continue."
)

// Engine runs the extract/compare/reprocess state machine for one invocation.
// It is driven by a single goroutine; the presentation layer talks to it only
// through Control.
type Engine struct {
	Ledger     Ledger
	WorkOrders WorkOrderSource
	Drawings   DrawingSource
	Parts      PartsSource
	Session    Session
	Snapshots  Snapshotter
	Control    *Control
	Logger     *zap.Logger

	state   State
	opened  bool
	entered map[Phase]bool
	report  Report
}

// NewEngine returns an engine in the Idle state.
func NewEngine(ledger Ledger, workOrders WorkOrderSource, drawings DrawingSource, parts PartsSource, session Session, control *Control, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if control == nil {
		control = NewControl()
	}
	return &Engine{
		Ledger:     ledger,
		WorkOrders: workOrders,
		Drawings:   drawings,
		Parts:      parts,
		Session:    session,
		Control:    control,
		Logger:     logger,
		state:      StateIdle,
	}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.state
}

// Run reconciles items until no error rows remain or the operator finishes.
// Cancellation is not an error: the report carries OutcomeCancelled.
// A returned error is fatal; the ledger remains valid and the run can be repeated.
func (e *Engine) Run(ctx context.Context, items []WorkItem) (*Report, error) {
	if e.state != StateIdle {
		return nil, eris.Errorf("engine already ran (state %s)", e.state)
	}
	e.entered = make(map[Phase]bool)
	e.report = Report{}
	defer e.closeSession()

	err := e.run(ctx, items)
	if errors.Is(err, ErrCancelled) {
		e.Logger.Warn("Run cancelled", zap.String("state", string(e.state)))
		e.report.Outcome = OutcomeCancelled
		e.state = StateDone
		e.Control.SetStatus(StateDone, "Cancelled")
		return &e.report, nil
	}
	if err != nil {
		e.state = StateDone
		e.Control.SetStatus(StateDone, "Aborted: "+err.Error())
		return &e.report, err
	}
	return &e.report, nil
}

func (e *Engine) run(ctx context.Context, items []WorkItem) error {
	scope := make([]string, len(items))
	for i, item := range items {
		scope[i] = item.ID
	}

	// 1. Extract work orders the ledger does not know yet
	if err := e.transition(StateExtracting, "Checking extracted work orders..."); err != nil {
		return err
	}
	if err := e.extract(ctx, items); err != nil {
		return err
	}

	// 2. Compare, then loop on the reprocess decision
	for {
		if err := e.transition(StateComparing, "Checking rows pending comparison..."); err != nil {
			return err
		}
		e.report.Passes++
		if err := e.compare(ctx, scope); err != nil {
			return err
		}

		if err := e.transition(StateAwaitingReprocessDecision, "Checking for error rows..."); err != nil {
			return err
		}
		errorRows, err := e.Ledger.ErrorRows(scope)
		if err != nil {
			return eris.Wrap(err, "failed to list error rows")
		}
		e.report.ErrorRows = rowIDs(errorRows)
		if len(errorRows) == 0 {
			e.report.Outcome = OutcomeCompleted
			return e.transition(StateDone, "Completed without errors")
		}

		e.Logger.Info("Rows with errors", zap.Int("count", len(errorRows)), zap.Strings("ids", e.report.ErrorRows))
		decision, err := e.Control.AwaitDecision(ctx, fmt.Sprintf("%d rows have errors. Reprocess them or finish?", len(errorRows)))
		if err != nil {
			return err
		}
		if decision == DecisionFinish {
			e.report.Outcome = OutcomeFinishedWithErrors
			return e.transition(StateDone, fmt.Sprintf("Finished with %d error rows", len(errorRows)))
		}

		if err := e.transition(StateReprocessing, "Clearing verdicts of error rows..."); err != nil {
			return err
		}
		scope = e.report.ErrorRows
		if err := e.Ledger.ClearVerdicts(scope); err != nil {
			return eris.Wrap(err, "failed to clear verdicts")
		}
		e.Logger.Info("Verdicts cleared for reprocessing", zap.Int("count", len(scope)))
	}
}

func (e *Engine) transition(to State, message string) error {
	if err := Transition(e.state, to); err != nil {
		return eris.Wrap(err, "engine state machine")
	}
	e.state = to
	e.Control.SetStatus(to, message)
	return nil
}

// extract appends one ledger row per work item not yet extracted.
func (e *Engine) extract(ctx context.Context, items []WorkItem) error {
	known, err := e.Ledger.KnownIdentifiers()
	if err != nil {
		return eris.Wrap(err, "failed to read extracted identifiers")
	}

	var pending []WorkItem
	for _, item := range items {
		if _, ok := known[item.ID]; !ok {
			pending = append(pending, item)
		}
	}
	e.Logger.Info("Extraction scope",
		zap.Int("input", len(items)),
		zap.Int("already_extracted", len(items)-len(pending)),
		zap.Int("pending", len(pending)),
	)
	if len(pending) == 0 {
		return nil
	}

	if err := e.enterPhase(ctx, PhaseExtract, PromptExtract); err != nil {
		return err
	}

	for i, item := range pending {
		if err := e.Control.Checkpoint(ctx); err != nil {
			return err
		}
		e.Control.SetStatus(e.state, fmt.Sprintf("Extracting %d of %d: OC %s", i+1, len(pending), item.Key))

		if err := e.extractOne(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) extractOne(ctx context.Context, item WorkItem) error {
	log := e.Logger.With(zap.String("id", item.ID), zap.String("key", item.Key.String()))

	wo, err := e.WorkOrders.FetchWorkOrder(ctx, item.Key)
	if err != nil {
		e.report.ExtractFailures++
		return e.itemFailed(ctx, log, PhaseExtract, item.Key.Order+"-"+item.Key.Line, err)
	}

	row := Row{
		ID:          item.ID,
		WorkOrder:   wo.Fields,
		PartNumber:  wo.PartNumber,
		FSERevision: wo.Revision,
	}
	if err := e.Ledger.Append(row); err != nil {
		return eris.Wrapf(err, "failed to append row %s", item.ID)
	}
	e.report.Extracted++
	log.Info("Work order extracted", zap.String("part_number", wo.PartNumber), zap.String("revision", wo.Revision))
	return nil
}

// compare fills the verdicts of every pending row in scope.
func (e *Engine) compare(ctx context.Context, scope []string) error {
	rows, err := e.Ledger.PendingComparison(scope)
	if err != nil {
		return eris.Wrap(err, "failed to list rows pending comparison")
	}
	e.Logger.Info("Comparison scope", zap.Int("pending", len(rows)), zap.Int("pass", e.report.Passes))
	if len(rows) == 0 {
		return nil
	}

	if err := e.enterPhase(ctx, PhaseCompare, PromptCompare); err != nil {
		return err
	}

	for i := range rows {
		if err := e.Control.Checkpoint(ctx); err != nil {
			return err
		}
		e.Control.SetStatus(e.state, fmt.Sprintf("Comparing %d of %d: PN %s", i+1, len(rows), rows[i].PartNumber))

		if err := e.compareOne(ctx, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) compareOne(ctx context.Context, row Row) error {
	log := e.Logger.With(zap.String("id", row.ID), zap.String("part_number", row.PartNumber))

	if row.PartNumber == "" {
		row.Results[PairEngineeringFSE] = ComparisonResult{Verdict: VerdictPartNumberMissing}
		if err := e.Ledger.SaveComparison(row); err != nil {
			return eris.Wrapf(err, "failed to save row %s", row.ID)
		}
		e.report.Compared++
		log.Warn("No part number was extracted for this row")
		return nil
	}

	// The database lookup overlaps the browser fetch; only this goroutine drives the session.
	// The fetch runs on ctx so a failed lookup does not cut it short.
	var part PartRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		part, err = e.Parts.Lookup(gctx, row.PartNumber)
		return err
	})
	drawing, drawErr := e.Drawings.FetchDrawing(ctx, row.PartNumber)
	partErr := g.Wait()

	if drawErr != nil {
		if _, ok := AsUnavailable(drawErr); !ok {
			e.report.CompareFailures++
			return e.itemFailed(ctx, log, PhaseCompare, row.PartNumber, drawErr)
		}
	}

	fse := Observed(LabelFSE, row.FSERevision)
	eng := observe(LabelEngineering, drawing.Revision, drawErr, "engineering")
	db := observe(LabelDatabase, part.RevPN, partErr, "database")

	if eng.Unavailable != nil {
		log.Warn("Engineering revision unavailable", zap.Error(eng.Unavailable))
		e.snapshot(ctx, log, PhaseCompare, row.PartNumber)
	}
	if db.Unavailable != nil {
		log.Warn("Database record unavailable", zap.Error(db.Unavailable))
	}

	row.EngineeringRevision = eng.Value
	row.DatabaseRevision = db.Value
	row.Part = part
	row.Results[PairEngineeringFSE] = Compare(eng, fse)
	row.Results[PairDatabaseFSE] = Compare(db, fse)
	row.Results[PairDatabaseEngineering] = Compare(db, eng)

	if err := e.Ledger.SaveComparison(row); err != nil {
		return eris.Wrapf(err, "failed to save row %s", row.ID)
	}
	e.report.Compared++
	log.Info("Row compared",
		zap.String(PairEngineeringFSE.String(), string(row.Results[PairEngineeringFSE].Verdict)),
		zap.String(PairDatabaseFSE.String(), string(row.Results[PairDatabaseFSE].Verdict)),
		zap.String(PairDatabaseEngineering.String(), string(row.Results[PairDatabaseEngineering].Verdict)),
	)
	return nil
}

// observe turns a source result into an observation. Errors that are not
// Unavailable are reported as an unreachable source.
func observe(label, value string, err error, source string) Observation {
	if err == nil {
		return Observed(label, value)
	}
	if u, ok := AsUnavailable(err); ok {
		return Missing(label, u)
	}
	return Missing(label, NewUnavailable(source, ReasonUnreachable, err))
}

// itemFailed downgrades a per-item failure to a logged skip. Unexpected
// failures also reset the session; if that fails the run aborts.
func (e *Engine) itemFailed(ctx context.Context, log *zap.Logger, phase Phase, id string, err error) error {
	e.snapshot(ctx, log, phase, id)

	if u, ok := AsUnavailable(err); ok {
		log.Warn("Source unavailable, item skipped", zap.String("reason", string(u.Reason)), zap.Error(err))
		return nil
	}

	log.Error("Unexpected failure, recovering session", zap.Error(err))
	if rerr := e.Session.Recover(ctx, phase); rerr != nil {
		return eris.Wrapf(rerr, "failed to recover session after error on %s", id)
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context, log *zap.Logger, phase Phase, id string) {
	if e.Snapshots == nil {
		return
	}
	path, err := e.Snapshots.Capture(ctx, phase, id)
	if err != nil {
		log.Warn("Failed to capture diagnostic snapshot", zap.Error(err))
		return
	}
	log.Info("Diagnostic snapshot saved", zap.String("path", path))
}

// enterPhase opens the session on first use, then navigates to phase and waits
// for the operator. Each phase is confirmed once per run.
func (e *Engine) enterPhase(ctx context.Context, phase Phase, prompt string) error {
	if e.entered[phase] {
		return nil
	}
	if !e.opened {
		if err := e.Session.Open(ctx); err != nil {
			return eris.Wrap(err, "failed to open web session")
		}
		e.opened = true
		if err := e.Control.AwaitAck(ctx, PromptLogin); err != nil {
			return err
		}
	}
	if err := e.Session.Enter(ctx, phase); err != nil {
		return eris.Wrapf(err, "failed to navigate to %s", phase)
	}
	if err := e.Control.AwaitAck(ctx, prompt); err != nil {
		return err
	}
	e.entered[phase] = true
	return nil
}

func (e *Engine) closeSession() {
	if !e.opened {
		return
	}
	if err := e.Session.Close(); err != nil {
		e.Logger.Warn("Failed to close web session", zap.Error(err))
	}
	e.opened = false
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
