// Package input reads the operator's work list and normalizes it into
// reconcile.WorkItem values.
//
// The work list is an xlsx sheet whose first row is a header. Column 1 holds the
// work order identifier ("OS") and column 2 the purchase order key "order/line".
// Further columns are ignored.
//
// # Normalization
//
//   - Identifiers are trimmed and integral numbers lose their fraction, so a cell
//     typed as 1001.0 and one typed as "1001" name the same work item.
//   - Blank rows are skipped.
//   - A repeated identifier keeps its first occurrence.
//   - Output order is input order; it defines processing order.
//
// A missing identifier column or a key that does not split into exactly two
// non-empty parts fails the whole table with *MalformedInputError before any
// work starts.
package input
