package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"bsql/catalog"
	"bsql/record"
)

func printResult(result catalog.QueryResult) {
	switch res := result.(type) {
	case catalog.CommandSuccessMessage:
		fmt.Println(string(res))
	case catalog.InsertSuccess:
		fmt.Printf("INSERT %d\n", res.Count)
	case catalog.RowResult:
		printRows(res)
	default:
		fmt.Printf("%v\n", result)
	}
}

func printRows(result catalog.RowResult) {
	writer := tablewriter.NewWriter(os.Stdout)
	writer.SetHeader(result.Columns())

	for _, row := range result.Rows() {
		cells := make([]string, len(row))
		for i, value := range row {
			// absent in the row's schema epoch
			if value == nil {
				continue
			}
			cells[i] = value.String()
		}
		writer.Append(cells)
	}

	writer.Render()
	fmt.Printf("(%d rows)\n", result.Count())
}

func printNames(header string, names []string) {
	writer := tablewriter.NewWriter(os.Stdout)
	writer.SetHeader([]string{header})
	for _, name := range names {
		writer.Append([]string{name})
	}
	writer.Render()
}

func printDefinition(tableName string, definition []record.ColumnDefinition) {
	writer := tablewriter.NewWriter(os.Stdout)
	writer.SetHeader([]string{"column", "type"})
	for _, column := range definition {
		writer.Append([]string{column.Name(), column.DataType().String()})
	}
	writer.Render()
	fmt.Printf("table %q, %d columns\n", tableName, len(definition))
}
