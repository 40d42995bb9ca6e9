// Package ledger persists reconciliation rows in an xlsx workbook.
//
// The ledger is both the output artifact and the resumability checkpoint: a
// row's presence means its work order was extracted, and an empty
// "Status (Eng vs FSE)" cell means it still has to be compared.
//
// # Schema
//
// A new ledger gets the fixed Header (bold). An existing ledger is matched by
// header name, never by position. Columns the schema does not know are left
// untouched, and schema columns missing from an old file are skipped when
// writing. The identifier column and the three status columns are required.
//
// # Durability
//
// Every mutation saves the whole workbook to a temporary file in the same
// directory and renames it over the ledger before returning. If the save fails
// the in-memory sheet is rolled back and a *PersistenceError is returned, so the
// next invocation sees exactly what the file holds.
//
// # Concurrency
//
// One writer (the engine) and any number of readers (status API, CLI) may use a
// Ledger concurrently; access is guarded by a RWMutex.
package ledger
