package catalog

import "bsql/record"

// QueryResult is the typed outcome of one executed command.
type QueryResult interface {
	queryResult()
}

// CommandSuccessMessage reports a completed DDL command.
type CommandSuccessMessage string

// InsertSuccess reports how many rows an insert wrote.
type InsertSuccess struct {
	Count int
}

// RowResult carries the rows a select produced.
type RowResult struct {
	record.RowResult
}

func (CommandSuccessMessage) queryResult() {}
func (InsertSuccess) queryResult()         {}
func (RowResult) queryResult()             {}
