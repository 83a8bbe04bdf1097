package database

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Schema DDL ships inside the binary. Files run in lexical order.
//
//go:embed schema/*.sql
var schemaFiles embed.FS

// Execer is the subset of pgx handles able to run DDL.
// *pgx.Conn, *pgxpool.Pool and pgx.Tx all satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SchemaStatements returns every statement of the embedded schema, in order.
func SchemaStatements() ([]string, error) {
	names, err := fs.Glob(schemaFiles, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing schema files: %w", err)
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		body, err := fs.ReadFile(schemaFiles, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		stmts = append(stmts, SplitStatements(string(body))...)
	}
	return stmts, nil
}

// ApplySchema drops and recreates the client tables.
//
// Existing data is lost. Callers wanting all-or-nothing behaviour pass a
// transaction as db.
func ApplySchema(ctx context.Context, db Execer) error {
	stmts, err := SchemaStatements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// SplitStatements splits a semicolon-terminated DDL script into executable statements.
// Blank lines and "--" comment lines are dropped.
func SplitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, strings.TrimSuffix(stmt, ";"))
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()

	return stmts
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
