// Package control exposes a running validation over HTTP.
//
// The handlers only talk to reconcile.Control and the read side of the ledger,
// so they can run next to the terminal console without racing the worker.
//
// # HTTP Endpoints
//
//   - GET  /run : Current status, including any pending prompt.
//   - POST /run/pause, /run/resume, /run/cancel : Flow control.
//   - POST /run/ack : Confirms the pending prompt (409 when none).
//   - POST /run/decision : {"decision": "reprocess"|"finish"} at the decision point.
//   - GET  /run/summary : Verdict counts over the ledger.
//   - GET  /run/errors : Rows with a verdict other than OK.
//   - GET  /run/snapshots : Diagnostic snapshot files, newest first.
package control
