// Package fse reads work orders from the FSE web system.
//
// A lookup fills the order and line inputs of the search view, opens the
// details of the single result and reads the header blocks. Each block is a
// label line followed by values; the parse functions in this package turn the
// raw text into WorkOrderFields:
//
//	"55\n10"                                   -> order 55, item 10
//	"CODEM / DT. REV. ROT.\nC1\n01/02/2024"    -> CODEM C1, date 01/02/2024
//	"PN / REV. PN / LID\n123-456-001 B L9"     -> PN, revision, LID
//
// The part number used by the other sources is the first digits-digits-digits
// group of the PN field. The FSE revision is the REV. PN field.
//
// After every lookup the page is sent back to the search URL. If that fails the
// source returns a plain error so the engine can recover the session.
package fse
