package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"revision-validator/core/reconcile"
	"revision-validator/core/utils"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Ledger is the xlsx-backed record of every work item ever processed.
// All mutations are saved to disk before they return.
type Ledger struct {
	mu      sync.RWMutex
	path    string
	file    *xlsx.File
	sheet   *xlsx.Sheet
	columns map[string]int
	index   map[string]int
	logger  *zap.Logger
}

var _ reconcile.Ledger = (*Ledger)(nil)

// Open loads the ledger at path, creating it with the default header if absent.
// The header of an existing file is authoritative: unknown columns are preserved
// and schema columns it lacks are skipped on write.
func Open(path, sheetName string, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{path: path, logger: logger}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := l.create(sheetName); err != nil {
			return nil, err
		}
		logger.Info("Ledger created", zap.String("path", path), zap.Int("columns", len(Header)))
		return l, nil
	} else if err != nil {
		return nil, &PersistenceError{Op: "stat", Path: path, Err: err}
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, &PersistenceError{Op: "open", Path: path, Err: eris.Errorf("sheet %q not found", sheetName)}
	}
	l.file, l.sheet = f, sheet

	if err := l.loadHeader(); err != nil {
		return nil, err
	}
	l.buildIndex()

	logger.Info("Ledger loaded", zap.String("path", path), zap.Int("rows", len(l.index)))
	return l, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Columns returns the named header columns, in sheet order.
func (l *Ledger) Columns() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	width := 0
	for _, i := range l.columns {
		if i+1 > width {
			width = i + 1
		}
	}
	byIndex := make([]string, width)
	for name, i := range l.columns {
		byIndex[i] = name
	}

	cols := make([]string, 0, len(l.columns))
	for _, name := range byIndex {
		if name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

func (l *Ledger) create(sheetName string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return &PersistenceError{Op: "create", Path: l.path, Err: err}
	}

	bold := xlsx.NewStyle()
	bold.Font.Bold = true
	bold.ApplyFont = true

	row := sheet.AddRow()
	l.columns = make(map[string]int, len(Header))
	for i, name := range Header {
		cell := row.AddCell()
		cell.SetString(name)
		cell.SetStyle(bold)
		l.columns[name] = i
	}

	l.file, l.sheet = f, sheet
	l.index = make(map[string]int)
	return l.save()
}

func (l *Ledger) loadHeader() error {
	if len(l.sheet.Rows) == 0 || l.sheet.Rows[0] == nil {
		return &PersistenceError{Op: "load", Path: l.path, Err: eris.New("header row is missing")}
	}

	l.columns = make(map[string]int)
	for i, cell := range l.sheet.Rows[0].Cells {
		name := strings.TrimSpace(cell.String())
		if name == "" {
			continue
		}
		if _, dup := l.columns[name]; !dup {
			l.columns[name] = i
		}
	}

	for _, name := range requiredColumns() {
		if _, ok := l.columns[name]; !ok {
			return &PersistenceError{Op: "load", Path: l.path, Err: eris.Errorf("required column %q is missing", name)}
		}
	}

	var skipped []string
	for _, name := range Header {
		if _, ok := l.columns[name]; !ok {
			skipped = append(skipped, name)
		}
	}
	if len(skipped) > 0 {
		l.logger.Warn("Ledger lacks schema columns; they will not be written", zap.Strings("columns", skipped))
	}
	return nil
}

func (l *Ledger) buildIndex() {
	l.index = make(map[string]int, len(l.sheet.Rows))
	for i := 1; i < len(l.sheet.Rows); i++ {
		id := l.idAt(i)
		if id == "" {
			continue
		}
		if _, dup := l.index[id]; !dup {
			l.index[id] = i
		}
	}
}

func (l *Ledger) idAt(i int) string {
	return utils.CanonicalNumber(l.cellValue(l.sheet.Rows[i], l.columns[ColID]))
}

func (l *Ledger) cellValue(row *xlsx.Row, col int) string {
	if row == nil || col >= len(row.Cells) || row.Cells[col] == nil {
		return ""
	}
	return row.Cells[col].String()
}

func (l *Ledger) cellAt(row *xlsx.Row, col int) *xlsx.Cell {
	for len(row.Cells) <= col {
		row.AddCell()
	}
	if row.Cells[col] == nil {
		row.Cells[col] = xlsx.NewCell(row)
	}
	return row.Cells[col]
}

// KnownIdentifiers returns the identifiers that already have a row.
func (l *Ledger) KnownIdentifiers() (map[string]struct{}, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	known := make(map[string]struct{}, len(l.index))
	for id := range l.index {
		known[id] = struct{}{}
	}
	return known, nil
}

// Append adds a new row for row.ID with empty verdict columns.
func (l *Ledger) Append(row reconcile.Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[row.ID]; ok {
		return eris.Wrapf(ErrDuplicateRow, "identifier %s", row.ID)
	}

	r := l.sheet.AddRow()
	for _, f := range extractionFields {
		l.write(r, f, &row)
	}

	if err := l.save(); err != nil {
		// Roll back so memory never claims a row the file does not hold
		l.sheet.Rows = l.sheet.Rows[:len(l.sheet.Rows)-1]
		l.sheet.MaxRow = len(l.sheet.Rows)
		return err
	}

	l.index[row.ID] = len(l.sheet.Rows) - 1
	return nil
}

// SaveComparison stores the revisions, verdicts and parts record of row.
func (l *Ledger) SaveComparison(row reconcile.Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[row.ID]
	if !ok {
		return eris.Wrapf(ErrRowNotFound, "identifier %s", row.ID)
	}
	r := l.sheet.Rows[i]

	restore := l.snapshotRow(r)
	for _, group := range [][]field{revisionFields, verdictFields, partFields} {
		for _, f := range group {
			l.write(r, f, &row)
		}
	}

	if err := l.save(); err != nil {
		restore()
		return err
	}
	return nil
}

// ClearVerdicts empties the verdict and detail columns of ids. Unknown ids are
// ignored.
func (l *Ledger) ClearVerdicts(ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var restores []func()
	for _, id := range ids {
		i, ok := l.index[id]
		if !ok {
			continue
		}
		r := l.sheet.Rows[i]
		restores = append(restores, l.snapshotRow(r))
		for _, f := range verdictFields {
			if col, ok := l.columns[f.name]; ok && col < len(r.Cells) && r.Cells[col] != nil {
				r.Cells[col].SetString("")
			}
		}
	}
	if len(restores) == 0 {
		return nil
	}

	if err := l.save(); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	l.logger.Info("Verdicts cleared", zap.Int("rows", len(restores)))
	return nil
}

// PendingComparison returns rows in scope whose primary verdict is empty.
// A nil scope selects every row.
func (l *Ledger) PendingComparison(scope []string) ([]reconcile.Row, error) {
	return l.selectRows(scope, func(r *reconcile.Row) bool { return r.Primary().IsEmpty() }), nil
}

// ErrorRows returns rows in scope with any verdict other than OK, pending rows
// included. A nil scope selects every row.
func (l *Ledger) ErrorRows(scope []string) ([]reconcile.Row, error) {
	return l.selectRows(scope, func(r *reconcile.Row) bool { return r.IsError() }), nil
}

// Rows returns every row in scope. A nil scope selects every row.
func (l *Ledger) Rows(scope []string) ([]reconcile.Row, error) {
	return l.selectRows(scope, func(*reconcile.Row) bool { return true }), nil
}

// Summary counts verdicts of the rows in scope.
func (l *Ledger) Summary(scope []string) (reconcile.Summary, error) {
	rows, err := l.Rows(scope)
	if err != nil {
		return reconcile.Summary{}, err
	}
	return reconcile.Summarize(rows), nil
}

func (l *Ledger) selectRows(scope []string, keep func(*reconcile.Row) bool) []reconcile.Row {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var inScope map[string]struct{}
	if scope != nil {
		inScope = make(map[string]struct{}, len(scope))
		for _, id := range scope {
			inScope[id] = struct{}{}
		}
	}

	var rows []reconcile.Row
	for i := 1; i < len(l.sheet.Rows); i++ {
		id := l.idAt(i)
		if id == "" || l.index[id] != i {
			continue
		}
		if inScope != nil {
			if _, ok := inScope[id]; !ok {
				continue
			}
		}
		row := l.readRow(l.sheet.Rows[i])
		row.ID = id
		if keep(&row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (l *Ledger) readRow(r *xlsx.Row) reconcile.Row {
	var row reconcile.Row
	for _, group := range allFields() {
		for _, f := range group {
			if col, ok := l.columns[f.name]; ok {
				f.set(&row, strings.TrimSpace(l.cellValue(r, col)))
			}
		}
	}
	return row
}

func (l *Ledger) write(r *xlsx.Row, f field, row *reconcile.Row) {
	col, ok := l.columns[f.name]
	if !ok {
		return
	}
	l.cellAt(r, col).SetString(f.get(row))
}

// snapshotRow records the row's cell values and returns a func restoring them.
func (l *Ledger) snapshotRow(r *xlsx.Row) func() {
	n := len(r.Cells)
	values := make([]string, n)
	for i := range values {
		values[i] = l.cellValue(r, i)
	}
	return func() {
		if len(r.Cells) > n {
			r.Cells = r.Cells[:n]
		}
		for i, v := range values {
			if r.Cells[i] != nil && r.Cells[i].String() != v {
				r.Cells[i].SetString(v)
			}
		}
	}
}

// save writes the workbook to a temporary file in the ledger's directory and
// renames it over the ledger, so readers never observe a partial file.
func (l *Ledger) save() error {
	dir, base := filepath.Split(l.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "save", Path: l.path, Err: err}
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: l.path, Err: err}
	}

	if err := l.file.Save(tmpPath); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: l.path, Err: err}
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "save", Path: l.path, Err: err}
	}
	return nil
}
