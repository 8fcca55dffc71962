package catalog

import "errors"

var (
	ErrDatabaseDoesNotExist  = errors.New("database does not exist")
	ErrDatabaseAlreadyExists = errors.New("database already exists")
	ErrDatabaseNameTooLong   = errors.New("database name too long")
	ErrTableDoesNotExist     = errors.New("table does not exist")
	ErrTableAlreadyExists    = errors.New("table already exists")
	ErrInsertFailed          = errors.New("insert failed")
)
