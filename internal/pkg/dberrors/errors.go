package dberrors

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the bridge cares about.
const (
	codeDuplicateEntry    = 1062
	codeFunctionNotExists = 1305
	codeUnknownColumn     = 1054
	codeUnknownTable      = 1146
)

// IsDuplicateEntryError checks if the error is a MySQL unique key violation.
func IsDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == codeDuplicateEntry
}

// IsSchemaMismatchError checks if the error indicates the legacy database
// does not have the table, column or stored function the query expected.
// The two known legacy schema generations differ exactly here.
func IsSchemaMismatchError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	switch mysqlErr.Number {
	case codeFunctionNotExists, codeUnknownColumn, codeUnknownTable:
		return true
	}
	return false
}
