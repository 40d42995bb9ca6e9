// Package utils provides conversion helpers shared by the input reader and the
// parts database adapter. Values arrive from spreadsheets and SQL drivers as
// loosely typed cells; these helpers give them one canonical string form so set
// membership and ledger cells stay stable across sources.
package utils
