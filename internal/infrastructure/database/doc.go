// Package database provides SQLite connectivity for the sensor agent.
//
// The database is a single file on the device's flash storage holding the
// key store. It is opened with synchronous=FULL: a committed write survives
// power loss and watchdog resets.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Store.Path, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded by the top-level migrations package and are
// additive only. Each file is named YYYYMMDD_HHMMSS_description.up.sql.
package database
