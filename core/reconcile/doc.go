// Package reconcile reconciles a part's revision as recorded by three independent
// sources: the FSE work-order system, the engineering drawing repository and the
// parts database.
//
// For every work item the package produces three pairwise verdicts plus the raw
// values each source reported, persisted in a ledger that survives interruption
// and supports incremental re-runs.
//
// # Architecture
//
// The package consists of four parts:
//
// 1. Comparator: Compare is a pure function over two Observations. A side that is
// blank or Unavailable always yields FAILED, never DIVERGENT. Equality trims
// whitespace and folds case; no other normalization is applied.
//
// 2. Engine: a state machine driven by one goroutine.
//
//	Idle -> Extracting -> Comparing -> AwaitingReprocessDecision -> Done
//	                          ^                  |
//	                          +-- Reprocessing <-+
//
// Extracting fetches every work item the ledger does not know yet. Comparing
// fetches the engineering revision and the database record for every row
// without a primary verdict, overlapping the database lookup with the browser
// fetch. After a pass the error rows are listed; if any remain the engine waits
// for the operator to reprocess them or finish.
//
// 3. Control: the only channel between the engine and the presentation layer.
// Pause and cancel are honoured at work item boundaries; acknowledgements and
// the reprocess decision are single-slot handoffs.
//
// 4. Collaborators: Ledger, WorkOrderSource, DrawingSource, PartsSource, Session
// and Snapshotter are interfaces implemented by core/ledger, the feature packages
// and core/diagnostics.
//
// # Resumability
//
// The ledger doubles as the checkpoint. A row's existence means "extracted";
// an empty primary verdict means "not compared yet". Nothing else is persisted,
// so re-running after a crash or a fatal error picks up where it stopped.
//
// # Failure Semantics
//
// Sources report expected failures as *Unavailable with a Reason. These are
// logged and skipped (extraction) or recorded as FAILED verdicts (comparison).
// Any other source error means the session could not reset itself; the engine
// snapshots the view and calls Session.Recover, aborting if that fails too.
// Ledger errors are always fatal.
//
// # Usage Example
//
//	control := reconcile.NewControl()
//	engine := reconcile.NewEngine(ledger, fseAdapter, engAdapter, partsAdapter, session, control, logger)
//	engine.Snapshots = snapshotter
//
//	go func() { report, err = engine.Run(ctx, items) }()
//
//	control.Acknowledge()                      // operator logged in
//	control.Decide(reconcile.DecisionReprocess) // at the decision point
package reconcile
