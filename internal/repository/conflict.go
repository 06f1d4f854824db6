package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL error number for a unique index violation
const mysqlErrDuplicateEntry = 1062

// IsDuplicateEntry reports whether err is a uniqueness violation from the
// store. GORM translates these to ErrDuplicatedKey when the dialector
// supports it; the raw driver error is checked as well since translation
// is not enabled on every code path.
func IsDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
