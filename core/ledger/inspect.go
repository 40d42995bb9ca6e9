package ledger

import (
	"errors"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// HeaderReport describes an existing ledger file without modifying it.
type HeaderReport struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Rows   int    `json:"rows"`
	// MissingRequired lists columns whose absence prevents Open.
	MissingRequired []string `json:"missing_required"`
	// MissingSchema lists schema columns that would be skipped on write.
	MissingSchema []string `json:"missing_schema"`
	// Extra lists columns the schema does not know; they are preserved.
	Extra []string `json:"extra"`
}

// Usable reports whether Open would accept the file.
func (r *HeaderReport) Usable() bool {
	return !r.Exists || len(r.MissingRequired) == 0
}

// Inspect reads the header of the ledger at path. A missing file is not an
// error: Open would create it.
func Inspect(path, sheetName string) (*HeaderReport, error) {
	report := &HeaderReport{Path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return report, nil
	} else if err != nil {
		return nil, &PersistenceError{Op: "stat", Path: path, Err: err}
	}
	report.Exists = true

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, &PersistenceError{Op: "open", Path: path, Err: eris.Errorf("sheet %q not found", sheetName)}
	}

	present := make(map[string]bool)
	if len(sheet.Rows) > 0 && sheet.Rows[0] != nil {
		for _, cell := range sheet.Rows[0].Cells {
			if name := strings.TrimSpace(cell.String()); name != "" {
				present[name] = true
			}
		}
		report.Rows = len(sheet.Rows) - 1
	}

	known := make(map[string]bool, len(Header))
	for _, name := range Header {
		known[name] = true
		if !present[name] {
			report.MissingSchema = append(report.MissingSchema, name)
		}
	}
	for _, name := range requiredColumns() {
		if !present[name] {
			report.MissingRequired = append(report.MissingRequired, name)
		}
	}
	for name := range present {
		if !known[name] {
			report.Extra = append(report.Extra, name)
		}
	}
	return report, nil
}
