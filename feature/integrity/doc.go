// Package integrity provides the pre-flight checks of a validation run.
//
// # Checks Provided
//
//   - Database: the parts lookup table exists and carries the key column and every column of a parts record.
//   - Ledger: the ledger workbook, when present, has the sheet and the columns the engine writes to.
//   - Storage: the diagnostics bucket exists; counts uploaded snapshots.
//
// The check command prints the combined report. The same checks are served by
// the control API.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/database : Runs the parts table check.
//   - GET /integrity/ledger : Inspects the ledger header.
//   - GET /integrity/storage : Runs the bucket check (supports ?fix=true).
package integrity
