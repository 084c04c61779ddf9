package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/whodunit/internal/errors"
	"log/slog"
	"slices"
	"strings"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type  string `db:"type"`
	Name  string `db:"name"`
	Table string `db:"tbl_name"`
	SQL   string `db:"sql"`
}

type schema map[string]schemaObject

func (s schema) ofType(typ string) []schemaObject {
	var objects []schemaObject
	for _, o := range s {
		if o.Type == typ {
			objects = append(objects, o)
		}
	}
	slices.SortFunc(objects, func(a, b schemaObject) int { return strings.Compare(a.Name, b.Name) })
	return objects
}

// migrateTo makes the database schema match schemaDefinition.
//
// The migration is declarative:
//
//  1. Tables missing from the definition are dropped and new tables are created.
//  2. Changed tables are rebuilt with the 12-step procedure of https://www.sqlite.org/lang_altertable.html#otheralter,
//     keeping the data of the columns both versions share.
//  3. Indexes, triggers and views are dropped and recreated whenever their SQL differs.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	target, err := sqlx.Open(driverName, ":memory:")
	if err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	// Each connection to :memory: is a database of its own.
	target.SetMaxOpenConns(1)
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(closeErr))
		}
	}()
	if strings.TrimSpace(schemaDefinition) != "" {
		if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
			return errors.Wrap(err, "create schema target database")
		}
	}
	want, err := readSchema(ctx, target)
	if err != nil {
		return errors.Wrap(err, "read target schema")
	}

	conn, err := db.ReadWrite.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	// Step 1: Disable foreign key validation. It can't be changed inside a transaction.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to re-enable foreign keys", errors.SlogError(fkErr))
		}
	}()

	// Step 2: Start transaction.
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rbErr))
		}
	}()

	if err = db.migrateTables(ctx, tx, target, want); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	// Step 8 and 9: Recreate indexes, triggers and views.
	if err = db.migrateObjects(ctx, tx, want); err != nil {
		return errors.Wrap(err, "migrate indexes, triggers and views")
	}

	// Step 10: Check foreign key constraints.
	var violations []struct {
		Table  string        `db:"table"`
		RowID  sql.NullInt64 `db:"rowid"`
		Parent string        `db:"parent"`
		FKID   int           `db:"fkid"`
	}
	if err = tx.SelectContext(ctx, &violations, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations",
			slog.String("table", violations[0].Table), slog.String("parent", violations[0].Parent))
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx, target *sqlx.DB, want schema) error {
	// Step 3: Remember schema.
	have, err := readSchema(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "read current schema")
	}

	for _, table := range have.ofType("table") {
		if _, ok := want[table.Name]; ok {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table.Name))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", table.Name)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table.Name))
		}
	}

	for _, table := range want.ofType("table") {
		current, ok := have[table.Name]
		switch {
		case !ok:
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", table.SQL))
			if _, err = tx.ExecContext(ctx, table.SQL); err != nil {
				return errors.Wrap(err, "create table", slog.String("table", table.Name))
			}
		case current.SQL != table.SQL:
			if err = db.rebuildTable(ctx, tx, target, table); err != nil {
				return errors.Wrap(err, "rebuild table", slog.String("table", table.Name))
			}
		}
	}
	return nil
}

func (db *Database) rebuildTable(ctx context.Context, tx *sqlx.Tx, target *sqlx.DB, table schemaObject) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.Name), slog.String("new_sql", table.SQL))

	// Step 4: Create the new table on a temporary name.
	tempName := table.Name + "_migration_temp"
	tempSQL := strings.Replace(table.SQL, table.Name, tempName, 1)
	if _, err := tx.ExecContext(ctx, tempSQL); err != nil {
		return errors.Wrap(err, "create temporary table", slog.String("query", tempSQL))
	}

	// Step 5: Copy the columns both versions share.
	var current, wanted []string
	if err := tx.SelectContext(ctx, &current, "SELECT name FROM pragma_table_info(?)", table.Name); err != nil {
		return errors.Wrap(err, "query current columns")
	}
	if err := target.SelectContext(ctx, &wanted, "SELECT name FROM pragma_table_info(?)", table.Name); err != nil {
		return errors.Wrap(err, "query target columns")
	}
	var common []string
	for _, column := range wanted {
		if slices.Contains(current, column) {
			// Quoted because columns such as "order" are keywords.
			common = append(common, fmt.Sprintf("%q", column))
		}
	}
	if len(common) > 0 {
		columns := strings.Join(common, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q", tempName, columns, columns, table.Name)
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}

	// Step 6: Drop the old table.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", table.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}

	// Step 7: Rename the new table to the old name.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q", tempName, table.Name)); err != nil {
		return errors.Wrap(err, "rename new table")
	}
	return nil
}

func (db *Database) migrateObjects(ctx context.Context, tx *sqlx.Tx, want schema) error {
	// Rebuilt tables took their indexes and triggers with them, so the schema is read again.
	have, err := readSchema(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "read current schema")
	}
	for _, typ := range []string{"view", "trigger", "index"} {
		for _, o := range have.ofType(typ) {
			if w, ok := want[o.Name]; ok && w.SQL == o.SQL {
				continue
			}
			db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+typ, slog.String("name", o.Name))
			if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP %s %q", strings.ToUpper(typ), o.Name)); err != nil {
				return errors.Wrap(err, "drop "+typ, slog.String("name", o.Name))
			}
		}
	}
	for _, typ := range []string{"index", "view", "trigger"} {
		for _, o := range want.ofType(typ) {
			if h, ok := have[o.Name]; ok && h.SQL == o.SQL {
				continue
			}
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+typ, slog.String("query", o.SQL))
			if _, err = tx.ExecContext(ctx, o.SQL); err != nil {
				return errors.Wrap(err, "create "+typ, slog.String("name", o.Name))
			}
		}
	}
	return nil
}

// readSchema lists the user-defined objects of a database. Automatic indexes have no SQL and are skipped.
func readSchema(ctx context.Context, q sqlx.QueryerContext) (schema, error) {
	var objects []schemaObject
	if err := sqlx.SelectContext(ctx, q, &objects, `SELECT type, name, tbl_name, sql
FROM sqlite_schema
WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'`); err != nil {
		return nil, errors.Wrap(err, "select schema")
	}
	s := make(schema, len(objects))
	for _, o := range objects {
		s[o.Name] = o
	}
	return s, nil
}
