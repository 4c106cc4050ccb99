package sqlstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"zheliyou/internal/backend"
	"zheliyou/internal/remote"
)

const mysqlDuplicateEntry = 1062

// translate maps server-side MySQL errors to ServiceError; connection and
// driver errors pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	if me.Number == mysqlDuplicateEntry {
		return &remote.ServiceError{
			Status:  409,
			Code:    backend.CodeUniqueViolation,
			Message: "duplicate key value violates unique constraint",
			Details: me.Message,
		}
	}
	return &remote.ServiceError{Code: strconv.Itoa(int(me.Number)), Message: me.Message}
}

func singleRowError(n int) error {
	return &remote.ServiceError{
		Status:  406,
		Code:    backend.CodeSingleRow,
		Message: backend.MsgSingleRow,
		Details: fmt.Sprintf("The result contains %d rows", n),
	}
}

func unknownColumn(table, column string) error {
	return &remote.ServiceError{
		Status:  400,
		Code:    "42703",
		Message: fmt.Sprintf("column %s.%s does not exist", table, column),
	}
}

func unknownWriteColumn(table, column string) error {
	return &remote.ServiceError{
		Status:  400,
		Code:    "PGRST204",
		Message: fmt.Sprintf("Could not find the '%s' column of '%s' in the schema cache", column, table),
	}
}
