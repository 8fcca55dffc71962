package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bsql/record"
)

func TestParse(t *testing.T) {
	t.Run("parses create database", func(t *testing.T) {
		command, err := Parse("CREATE DATABASE my_database;")
		assert.NoError(t, err)
		assert.Equal(t, CreateDatabase{DatabaseName: "my_database"}, command)
	})

	t.Run("parses create table with columns", func(t *testing.T) {
		command, err := Parse("CREATE TABLE users (age integer, birthyear integer);")
		assert.NoError(t, err)
		assert.Equal(t, CreateTable{
			TableName: "users",
			Columns: []record.ColumnInfo{
				{Name: "age", DataType: record.Integer},
				{Name: "birthyear", DataType: record.Integer},
			},
		}, command)
	})

	t.Run("parses insert into", func(t *testing.T) {
		command, err := Parse("INSERT INTO users VALUES (25, 99);")
		assert.NoError(t, err)
		assert.Equal(t, InsertInto{
			TableName: "users",
			Values:    []record.Value{record.NewInteger(25), record.NewInteger(99)},
		}, command)
	})

	t.Run("parses select star", func(t *testing.T) {
		command, err := Parse("SELECT * FROM users;")
		assert.NoError(t, err)
		assert.Equal(t, Select{
			Identifiers: []string{"*"},
			TableName:   "users",
			Where:       []Condition{},
		}, command)
	})

	t.Run("parses select with named columns", func(t *testing.T) {
		command, err := Parse("SELECT age, birthyear FROM users;")
		assert.NoError(t, err)
		assert.Equal(t, Select{
			Identifiers: []string{"age", "birthyear"},
			TableName:   "users",
			Where:       []Condition{},
		}, command)
	})

	t.Run("parses select with a where condition", func(t *testing.T) {
		command, err := Parse("SELECT * FROM users WHERE age = 25;")
		assert.NoError(t, err)
		assert.Equal(t, Select{
			Identifiers: []string{"*"},
			TableName:   "users",
			Where:       []Condition{{Column: "age", Value: record.NewInteger(25)}},
		}, command)
	})

	t.Run("keywords are case insensitive", func(t *testing.T) {
		command, err := Parse("select * from users;")
		assert.NoError(t, err)
		assert.Equal(t, Select{
			Identifiers: []string{"*"},
			TableName:   "users",
			Where:       []Condition{},
		}, command)
	})

	t.Run("tokens after the semicolon are ignored", func(t *testing.T) {
		command, err := Parse("CREATE DATABASE d; DROP EVERYTHING")
		assert.NoError(t, err)
		assert.Equal(t, CreateDatabase{DatabaseName: "d"}, command)
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("empty input is a missing token", func(t *testing.T) {
		_, err := Parse("")
		assert.ErrorIs(t, err, ErrMissingToken)

		_, err = Parse("CREATE DATABASE")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("out of place tokens are unexpected", func(t *testing.T) {
		_, err := Parse("CREATE users;")
		unexpected := &UnexpectedTokenError{}
		assert.ErrorAs(t, err, &unexpected)
		assert.Equal(t, IDENTIFIER, unexpected.Token.Type)
	})

	t.Run("unknown column types are rejected", func(t *testing.T) {
		_, err := Parse("CREATE TABLE users (age varchar);")
		unexpected := &UnexpectedTokenError{}
		assert.ErrorAs(t, err, &unexpected)
		assert.Equal(t, "varchar", unexpected.Token.Literal)
	})

	t.Run("integer literals outside the value domain are rejected", func(t *testing.T) {
		_, err := Parse("INSERT INTO users VALUES (256);")
		unexpected := &UnexpectedTokenError{}
		assert.ErrorAs(t, err, &unexpected)
		assert.Equal(t, "256", unexpected.Token.Literal)
	})

	t.Run("trailing tokens are rejected", func(t *testing.T) {
		_, err := Parse("SELECT * FROM users users;")
		unexpected := &UnexpectedTokenError{}
		assert.ErrorAs(t, err, &unexpected)
	})
}
