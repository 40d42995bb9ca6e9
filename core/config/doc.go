// Package config provides configuration management for the revision validator.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Every key has a default declared in the struct tags of
// its section, so a run works with no configuration at all.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Log: level, format and the run log file
//   - Database: parts database connection (mysql or sqlite)
//   - Storage: optional MinIO upload of diagnostic snapshots
//   - Server: optional control API (port, API key)
//   - Browser: launcher and wait timeout
//   - Files: input table, ledger workbook and snapshot directory
//   - Run: unattended decision mode
//   - Portal, FSE, Engineering: navigation links and page selectors
//   - Parts: lookup table and key column
//
// Environment variables map to nested keys by replacing dots with
// underscores: DATABASE_HOST sets database.host.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Files.Ledger)
package config
