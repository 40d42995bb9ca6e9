package reconcile

import (
	"errors"
	"fmt"
)

// Key is the composite lookup key of a work order: the two halves of "55/10".
type Key struct {
	// Order is the purchase order number (left of the separator).
	Order string `json:"order"`
	// Line is the order line (right of the separator).
	Line string `json:"line"`
}

// String renders the key the way it appears in the input table.
func (k Key) String() string {
	return k.Order + "/" + k.Line
}

// WorkItem is one unit of reconciliation work.
type WorkItem struct {
	// ID is the canonical work order identifier ("OS"). Unique within a run.
	ID string `json:"id"`
	// Key is used to query the work-order system.
	Key Key `json:"key"`
}

// Verdict is the outcome of comparing two sources for the same work item.
type Verdict string

const (
	// VerdictOK means both values were established and are equal.
	VerdictOK Verdict = "OK"
	// VerdictDivergent means both values were established and differ.
	VerdictDivergent Verdict = "DIVERGENT"
	// VerdictFailed means at least one value could not be established.
	VerdictFailed Verdict = "FAILED"
	// VerdictPartNumberMissing is the terminal status written when extraction never
	// resolved a part number, so no comparison can be attempted.
	VerdictPartNumberMissing Verdict = "PN NÃO ENCONTRADO"
)

// ParseVerdict maps a ledger cell back to a Verdict. Cells written by earlier
// releases used the Portuguese spellings.
func ParseVerdict(s string) Verdict {
	switch s {
	case "DIVERGENTE":
		return VerdictDivergent
	case "FALHA":
		return VerdictFailed
	case "PN NÃO ENCONTRADO NA FSE":
		return VerdictPartNumberMissing
	default:
		return Verdict(s)
	}
}

// ComparisonResult is the verdict and human-readable trail for one source pair.
type ComparisonResult struct {
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail"`
}

// IsEmpty reports whether the result has not been computed yet.
func (r ComparisonResult) IsEmpty() bool {
	return r.Verdict == ""
}

// Pair identifies one of the three pairwise comparisons.
type Pair int

const (
	// PairEngineeringFSE compares the drawing repository with the work order.
	// It is the primary comparison of a row.
	PairEngineeringFSE Pair = iota
	// PairDatabaseFSE compares the parts database with the work order.
	PairDatabaseFSE
	// PairDatabaseEngineering compares the parts database with the drawing repository.
	PairDatabaseEngineering

	pairCount
)

// Pairs lists the comparisons in the order they are computed and stored.
var Pairs = [pairCount]Pair{PairEngineeringFSE, PairDatabaseFSE, PairDatabaseEngineering}

func (p Pair) String() string {
	switch p {
	case PairEngineeringFSE:
		return "Eng vs FSE"
	case PairDatabaseFSE:
		return "Banco vs FSE"
	case PairDatabaseEngineering:
		return "Banco vs Eng"
	default:
		return fmt.Sprintf("Pair(%d)", int(p))
	}
}

// WorkOrderFields is what the FSE work-order system reports for a work item.
type WorkOrderFields struct {
	Order          string `json:"order"`
	Item           string `json:"item"`
	Codem          string `json:"codem"`
	RoutingRevDate string `json:"routing_rev_date"`
	PartNumber     string `json:"part_number"`
	PartRevision   string `json:"part_revision"`
	LID            string `json:"lid"`
	Plant          string `json:"plant"`
	Traceability   string `json:"traceability"`
	Serials        string `json:"serials"`
}

// WorkOrder is a work order as extracted, together with the part number and
// FSE revision derived from its fields.
type WorkOrder struct {
	Fields WorkOrderFields `json:"fields"`
	// PartNumber is empty when no part number could be derived.
	PartNumber string `json:"part_number"`
	Revision   string `json:"revision"`
}

// DrawingFields is what the engineering drawing repository reports for a part number.
type DrawingFields struct {
	PartNumber string `json:"part_number"`
	Revision   string `json:"revision"`
}

// Row is one work item's record in the ledger.
type Row struct {
	// ID is the work order identifier; the ledger key.
	ID string `json:"id"`

	// WorkOrder holds the raw FSE fields captured during extraction.
	WorkOrder WorkOrderFields `json:"work_order"`

	// PartNumber is the part number derived from WorkOrder.PartNumber.
	// Empty when extraction could not resolve one.
	PartNumber string `json:"part_number"`

	// FSERevision is the revision the work order carries.
	FSERevision string `json:"fse_revision"`

	// EngineeringRevision is the revision reported by the drawing repository,
	// or the reason text when it was unavailable.
	EngineeringRevision string `json:"engineering_revision"`

	// DatabaseRevision is the revision column of the parts database record,
	// or the reason text when it was unavailable.
	DatabaseRevision string `json:"database_revision"`

	// Results holds the three pairwise comparisons indexed by Pair.
	Results [pairCount]ComparisonResult `json:"results"`

	// Part is the raw parts database record.
	Part PartRecord `json:"part"`
}

// Primary returns the Engineering vs FSE result, which gates comparison.
func (r Row) Primary() ComparisonResult {
	return r.Results[PairEngineeringFSE]
}

// IsError reports whether any pairwise verdict is not OK. Rows that were never
// compared count as errors too.
func (r Row) IsError() bool {
	for _, res := range r.Results {
		if res.Verdict != VerdictOK {
			return true
		}
	}
	return false
}

// Reason classifies why a source could not supply a value.
type Reason string

const (
	// ReasonNotFound means the source affirmatively has no record. Not retried.
	ReasonNotFound Reason = "not_found"
	// ReasonTimeout means an expected state never appeared within the bounded wait.
	ReasonTimeout Reason = "timeout"
	// ReasonStructural means the page loaded but an expected element was absent.
	ReasonStructural Reason = "structural_error"
	// ReasonUnreachable means the source could not be contacted at all.
	ReasonUnreachable Reason = "source_unreachable"
)

// Text is the literal written to the ledger and into comparison details.
func (r Reason) Text() string {
	switch r {
	case ReasonNotFound:
		return "Not found"
	case ReasonTimeout:
		return "Timeout"
	case ReasonStructural:
		return "Structural error"
	case ReasonUnreachable:
		return "Unreachable"
	default:
		return "Unavailable"
	}
}

// Retryable reports whether a later run may succeed where this one did not.
func (r Reason) Retryable() bool {
	return r != ReasonNotFound
}

// Unavailable is returned by a source instead of a field set when it cannot
// supply one. It is an expected outcome, not a fault.
type Unavailable struct {
	Source string
	Reason Reason
	Err    error
}

// NewUnavailable builds an Unavailable for the named source.
func NewUnavailable(source string, reason Reason, err error) *Unavailable {
	return &Unavailable{Source: source, Reason: reason, Err: err}
}

func (u *Unavailable) Error() string {
	if u.Err == nil {
		return fmt.Sprintf("%s: %s", u.Source, u.Reason.Text())
	}
	return fmt.Sprintf("%s: %s: %v", u.Source, u.Reason.Text(), u.Err)
}

func (u *Unavailable) Unwrap() error {
	return u.Err
}

// AsUnavailable extracts an Unavailable from err's chain.
func AsUnavailable(err error) (*Unavailable, bool) {
	var u *Unavailable
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}
