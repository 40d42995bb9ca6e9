// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL connections to the parts
// database from the application's configuration. SQLite is supported for local
// runs and tests.
//
// # Connect
//
// Connect opens the pool and pings it within the configured timeout. The parts
// database is optional for a run: when it cannot be reached the validator keeps
// going and records the database side of every comparison as unreachable.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table. The check command uses it to
// verify that the lookup table carries every column the ledger expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Parts database unavailable", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "VW_PN_ENGENHARIA")
package database
