package reconcile

import "context"

// Ledger is the durable record of work items the engine reads and writes.
// Every mutating call must be durable before it returns.
type Ledger interface {
	// KnownIdentifiers returns the identifiers that already have a row.
	KnownIdentifiers() (map[string]struct{}, error)

	// Append adds a new row. It never overwrites an existing identifier.
	Append(row Row) error

	// PendingComparison returns rows in scope whose primary verdict is empty,
	// in ledger order.
	PendingComparison(scope []string) ([]Row, error)

	// SaveComparison stores revisions, verdicts and the parts record of an
	// existing row.
	SaveComparison(row Row) error

	// ClearVerdicts empties every verdict and detail column of the given rows.
	ClearVerdicts(ids []string) error

	// ErrorRows returns rows in scope with at least one verdict other than OK.
	ErrorRows(scope []string) ([]Row, error)
}

// WorkOrderSource fetches a work order from the FSE system.
// A source that cannot supply one returns an *Unavailable error; any other
// error means the session could not be returned to its search view.
type WorkOrderSource interface {
	FetchWorkOrder(ctx context.Context, key Key) (WorkOrder, error)
}

// DrawingSource fetches the current drawing revision of a part number.
// Error semantics match WorkOrderSource.
type DrawingSource interface {
	FetchDrawing(ctx context.Context, partNumber string) (DrawingFields, error)
}

// PartsSource looks a part number up in the parts database.
// It must be safe to call concurrently with the drawing source.
type PartsSource interface {
	Lookup(ctx context.Context, partNumber string) (PartRecord, error)
}

// Session is the operator-driven web session shared by the browser sources.
type Session interface {
	// Open starts the session and shows the login page.
	Open(ctx context.Context) error

	// Enter navigates as far as automation can towards the view of phase.
	// The operator confirms the rest.
	Enter(ctx context.Context, phase Phase) error

	// Recover returns the session to the search view of phase after an
	// unexpected failure.
	Recover(ctx context.Context, phase Phase) error

	// Close releases the session. It is safe to call on an unopened session.
	Close() error
}

// Snapshotter records a diagnostic image of the session's current view.
type Snapshotter interface {
	Capture(ctx context.Context, phase Phase, id string) (string, error)
}
