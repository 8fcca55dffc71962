package table

import "errors"

var (
	ErrTableNameTooLong    = errors.New("table name too long")
	ErrColumnAlreadyExists = errors.New("column already exists")
	ErrColumnDoesNotExist  = errors.New("column does not exist")
	ErrTooManyColumnsInUse = errors.New("too many columns in use")
	ErrValueCountMismatch  = errors.New("value count does not match column count")
	ErrPageFull            = errors.New("table page is full")
	ErrSlotNotOccupied     = errors.New("record slot is not occupied")
	ErrRecordDoesNotExist  = errors.New("record does not exist")
)
