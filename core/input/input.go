package input

import (
	"fmt"
	"strings"

	"revision-validator/core/reconcile"
	"revision-validator/core/utils"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// KeySeparator splits the composite key column.
const KeySeparator = "/"

// MalformedInputError reports a work list that violates the expected layout.
type MalformedInputError struct {
	// Row is the 1-based sheet row, or 0 for table-level problems.
	Row    int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row == 0 {
		return "malformed input: " + e.Reason
	}
	return fmt.Sprintf("malformed input at row %d: %s", e.Row, e.Reason)
}

// ReadTable returns every row of the named sheet as strings, header included.
func ReadTable(path, sheetName string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found in %s", sheetName, path)
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Normalize converts a table whose first row is the header into work items.
func Normalize(rows [][]string) ([]reconcile.WorkItem, error) {
	if len(rows) == 0 {
		return nil, &MalformedInputError{Reason: "table is empty"}
	}
	if len(rows[0]) < 2 || strings.TrimSpace(rows[0][0]) == "" {
		return nil, &MalformedInputError{Row: 1, Reason: "identifier and key columns are required"}
	}

	items := make([]reconcile.WorkItem, 0, len(rows)-1)
	seen := make(map[string]struct{}, len(rows)-1)

	for i, row := range rows[1:] {
		sheetRow := i + 2
		if isBlank(row) {
			continue
		}

		id := utils.CanonicalNumber(cell(row, 0))
		if id == "" {
			return nil, &MalformedInputError{Row: sheetRow, Reason: "identifier is empty"}
		}

		key, err := SplitKey(cell(row, 1))
		if err != nil {
			return nil, &MalformedInputError{Row: sheetRow, Reason: err.Error()}
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, reconcile.WorkItem{ID: id, Key: key})
	}

	return items, nil
}

// Load reads and normalizes the work list in one step.
func Load(path, sheetName string) ([]reconcile.WorkItem, error) {
	rows, err := ReadTable(path, sheetName)
	if err != nil {
		return nil, err
	}
	return Normalize(rows)
}

// SplitKey splits "order/line" into its two halves.
func SplitKey(raw string) (reconcile.Key, error) {
	parts := strings.Split(strings.TrimSpace(raw), KeySeparator)
	if len(parts) != 2 {
		return reconcile.Key{}, eris.Errorf("key %q must have exactly one %q", raw, KeySeparator)
	}
	order, line := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if order == "" || line == "" {
		return reconcile.Key{}, eris.Errorf("key %q has an empty part", raw)
	}
	return reconcile.Key{Order: utils.CanonicalNumber(order), Line: utils.CanonicalNumber(line)}, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
