// Package database provides SQLite connectivity for HomeHub Core.
//
// This package manages:
//   - The connection, with foreign keys enforced and optional WAL mode
//   - Embedded schema migrations tracked in schema_migrations
//   - Transactions for multi-statement writes (WithTx)
//   - Classification of constraint failures into ErrUniqueViolation and
//     ErrForeignKeyViolation
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files live in the top-level migrations package as
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql pairs.
package database
