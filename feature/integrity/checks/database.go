package checks

import (
	"fmt"

	"revision-validator/core/database"
	"revision-validator/core/reconcile"

	"gorm.io/gorm"
)

// DatabaseReport is the result of the parts table check.
type DatabaseReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}

// CheckDatabase verifies that table carries the key column and every column
// of a parts record.
func CheckDatabase(db *gorm.DB, table, keyColumn string) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Table:          table,
		Matched:        true,
		MissingColumns: []string{},
	}

	actual, err := database.GetTableColumns(db, table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
		report.Matched = false
		return report, nil // Partial fail
	}
	if len(actual) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("Table %s has no columns or does not exist", table))
		report.Matched = false
		return report, nil
	}

	want := append([]string{keyColumn}, reconcile.PartColumnNames()...)
	seen := make(map[string]bool, len(want))
	for _, name := range database.MissingColumns(actual, want) {
		if !seen[name] {
			seen[name] = true
			report.MissingColumns = append(report.MissingColumns, name)
		}
	}
	report.Matched = len(report.MissingColumns) == 0
	return report, nil
}
