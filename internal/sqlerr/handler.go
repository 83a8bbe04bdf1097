package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/client-directory/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// entityNames maps physical table names onto the entity they store.
// Tables not listed fall back to naive singularization.
var entityNames = map[string]string{
	"client_info":  "client",
	"client_phone": "phone",
}

// ErrCode reports the mapped Code for a given error.
//
//   - If err can be unwrapped into *Error, return its Code.
//   - If err carries a raw *pgconn.PgError, map its SQLSTATE.
//   - Otherwise return Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a raw *pgconn.PgError into *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates consistent application error codes from DB errors.
//
// Output format:
//
//	<DOMAIN>_<ACTION>
//
// Example:
//
//	client_info + UniqueViolation => CLIENT_ALREADY_EXISTS
//
// For foreign key violations the domain is the referenced entity, taken from
// the "<entity>_id" column, because the missing row lives in the other table.
func generateErrorCode(sqlErr *Error) string {
	domain := entityForTable(sqlErr.TableName)
	if sqlErr.Code == ForeignKeyViolation {
		if referenced := entityForColumn(sqlErr.ColumnName, sqlErr.ConstraintName, sqlErr.TableName); referenced != "" {
			domain = referenced
		}
	}
	domain = strings.ToUpper(strings.ReplaceAll(domain, " ", "_"))

	action := "ERROR"
	switch sqlErr.Code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringTooLong:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing error message.
//
// This message is intended for clients, not for logs.
func formatUserFriendlyMessage(sqlErr *Error) string {
	switch sqlErr.Code {
	case ForeignKeyViolation:
		entityName := entityForColumn(sqlErr.ColumnName, sqlErr.ConstraintName, sqlErr.TableName)
		if entityName == "" {
			entityName = entityForTable(sqlErr.TableName)
		}
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column name when it can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", entityForTable(sqlErr.TableName))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case StringTooLong:
		return "One or more values are too long"

	default:
		return "An error occurred while processing your request"
	}
}

// entityForTable returns the entity stored in a table.
//
//  1. Known tables use entityNames.
//  2. Otherwise the table name is singularized by dropping a trailing "s".
//  3. Otherwise "record".
func entityForTable(tableName string) string {
	if tableName == "" {
		return "record"
	}
	if entity, ok := entityNames[strings.ToLower(tableName)]; ok {
		return entity
	}
	entity := strings.ToLower(tableName)
	if strings.HasSuffix(entity, "s") && len(entity) > 1 {
		entity = entity[:len(entity)-1]
	}
	return strings.ReplaceAll(entity, "_", " ")
}

// entityForColumn infers the referenced entity of a foreign key.
//
// PostgreSQL does not fill ColumnName for foreign key violations, so the
// column is recovered from the default constraint name
// "<table>_<column>_fkey" when needed.
func entityForColumn(columnName, constraintName, tableName string) string {
	column := strings.ToLower(columnName)
	if column == "" {
		column = extractColumnFromConstraint(constraintName, tableName, "_fkey")
	}
	if column == "" || !strings.HasSuffix(column, "_id") {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSuffix(column, "_id"), "_", " ")
}

// humanizeText converts snake_case into Title Case.
//
//	"first_name" -> "First Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnFromConstraint recovers the column from a default constraint name.
//
// It supports two conventions:
//
//  1. "unique_<table>_<column>"                 e.g. unique_clients_email -> "email"
//  2. "<table>_<column>_<suffix>" (key, ukey, fkey) e.g. client_phone_phone_number_key -> "phone_number"
func extractColumnFromConstraint(constraintName, tableName string, suffixes ...string) string {
	if constraintName == "" {
		return ""
	}
	name := strings.ToLower(constraintName)

	if strings.HasPrefix(name, "unique_") {
		rest := strings.TrimPrefix(name, "unique_")
		if tableName != "" && strings.HasPrefix(rest, strings.ToLower(tableName)+"_") {
			return strings.TrimPrefix(rest, strings.ToLower(tableName)+"_")
		}
		parts := strings.Split(rest, "_")
		return parts[len(parts)-1]
	}

	for _, suffix := range suffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		column := strings.TrimSuffix(name, suffix)
		if tableName != "" && strings.HasPrefix(column, strings.ToLower(tableName)+"_") {
			return strings.TrimPrefix(column, strings.ToLower(tableName)+"_")
		}
		if idx := strings.LastIndex(column, "_"); idx >= 0 {
			return column[idx+1:]
		}
		return ""
	}

	return ""
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - PostgreSQL server errors: mapped to 400 (constraint classes) or 500
//   - connection failures: 503
//   - pgx.ErrNoRows / sql.ErrNoRows: 404, entity inferred from a "table:<name>:" prefix
//   - anything else: 500
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var sqlErr *Error
	if !errors.As(err, &sqlErr) {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) {
			sqlErr = ConvertPgError(pgerr)
		}
	}

	if sqlErr != nil {
		errorCode := generateErrorCode(sqlErr)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil)

		case UniqueViolation:
			columnName := extractColumnFromConstraint(sqlErr.ConstraintName, sqlErr.TableName, "_key", "_ukey")
			if columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			var fieldErrors []errs.FieldError
			if columnName != "" {
				fieldErrors = []errs.FieldError{{Field: columnName, Error: "already exists"}}
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)

		case CheckViolation, StringTooLong:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil)

		case ConnectionFailure:
			return errs.NewServiceUnavailableError("The database is unavailable")

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		// Repositories prefix not-found errors with "table:<name>:" so the
		// entity can be named in the message.
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			entityName := humanizeText(entityForTable(table))
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return errs.NewServiceUnavailableError("The database is unavailable")
	}

	return errs.NewInternalServerError()
}

// NotFound builds the error repositories return when a row does not exist.
//
// It wraps pgx.ErrNoRows with the "table:<name>:" prefix HandleError understands.
func NotFound(table string) error {
	return fmt.Errorf("table:%s: %w", table, pgx.ErrNoRows)
}
