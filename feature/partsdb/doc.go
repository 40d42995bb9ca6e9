// Package partsdb looks part numbers up in the parts database.
//
// The lookup selects the 22 ledger columns from the configured table, keyed by
// the drawing number, and keeps the first row only. Values are rendered to
// strings the way the ledger stores them: NULL is empty, integral numbers lose
// their fraction and dates use utils.DateLayout.
//
// # Failure Semantics
//
//   - no row: Unavailable with ReasonNotFound
//   - driver or connection error, or no connection at all: ReasonUnreachable
//
// The engine runs Lookup concurrently with the engineering browser fetch, so a
// Source holds no per-call state.
package partsdb
