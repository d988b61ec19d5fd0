package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column is one expected column of a table.
type Column struct {
	Name     string
	DataType string
}

// Table is the expected shape of one table.
type Table struct {
	Name    string
	Columns []Column
}

// SchemaGuard checks at startup that the live schema carries the columns the
// queries depend on. It catches a migration drift before the first request
// does.
type SchemaGuard struct {
	db *sql.DB
}

func NewSchemaGuard(db *sql.DB) *SchemaGuard {
	return &SchemaGuard{db: db}
}

// Validate checks every table. The first mismatch is returned.
func (g *SchemaGuard) Validate(ctx context.Context, tables []Table) error {
	for _, table := range tables {
		if err := g.validateTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (g *SchemaGuard) validateTable(ctx context.Context, table Table) error {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	`
	rows, err := g.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return fmt.Errorf("failed to read schema for %s: %w", table.Name, err)
	}
	defer rows.Close()

	actual := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		actual[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read schema for %s: %w", table.Name, err)
	}
	if len(actual) == 0 {
		return fmt.Errorf("table %s does not exist", table.Name)
	}

	for _, col := range table.Columns {
		dataType, ok := actual[col.Name]
		if !ok {
			return fmt.Errorf("table %s is missing column %s", table.Name, col.Name)
		}
		// Base-type match: varchar covers varchar(191).
		if !strings.HasPrefix(strings.ToLower(dataType), strings.ToLower(col.DataType)) {
			return fmt.Errorf("table %s column %s has type %s, expected %s",
				table.Name, col.Name, dataType, col.DataType)
		}
	}

	return nil
}
