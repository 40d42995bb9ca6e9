package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Source labels used in comparison details.
const (
	LabelFSE         = "FSE"
	LabelEngineering = "ENG"
	LabelDatabase    = "BANCO"
)

// Observation is a value as seen by one source, together with its provenance.
type Observation struct {
	// Label names the source in the comparison detail.
	Label string
	// Value is the literal value. For an unavailable observation it is the
	// reason text, kept only for the audit trail.
	Value string
	// Unavailable is set when the source could not supply a value.
	Unavailable *Unavailable
}

// Observed builds an observation of a value the source did report.
func Observed(label, value string) Observation {
	return Observation{Label: label, Value: value}
}

// Missing builds an observation for a source that could not supply a value.
func Missing(label string, u *Unavailable) Observation {
	return Observation{Label: label, Value: u.Reason.Text(), Unavailable: u}
}

// Valid reports whether the value is present and its provenance is trusted.
func (o Observation) Valid() bool {
	return o.Unavailable == nil && strings.TrimSpace(o.Value) != ""
}

// Compare returns the verdict for two observations of the same revision.
// Either side being invalid yields FAILED, never DIVERGENT.
func Compare(a, b Observation) ComparisonResult {
	detail := fmt.Sprintf("%s: %s vs %s: %s", a.Label, a.Value, b.Label, b.Value)
	if !a.Valid() || !b.Valid() {
		return ComparisonResult{Verdict: VerdictFailed, Detail: detail}
	}
	if normalizeRevision(a.Value) == normalizeRevision(b.Value) {
		return ComparisonResult{Verdict: VerdictOK, Detail: detail}
	}
	return ComparisonResult{Verdict: VerdictDivergent, Detail: detail}
}

// normalizeRevision trims surrounding whitespace and case-folds. No other
// normalization (leading zeros, synonyms) is applied.
func normalizeRevision(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
