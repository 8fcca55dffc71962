package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"bsql/catalog"
)

// runRepl drives the interactive shell. SQL statements are handed to the
// catalog as-is; lines starting with a backslash are shell meta commands.
func runRepl(manager *catalog.Manager) error {
	rl, err := readline.New(prompt(""))
	if err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}
	defer rl.Close()

	currentDatabase := ""
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if input == "exit" || input == `\q` {
			return nil
		}
		if strings.HasPrefix(input, `\`) {
			currentDatabase = runMetaCommand(manager, currentDatabase, input)
			rl.SetPrompt(prompt(currentDatabase))
			continue
		}

		result, err := manager.Execute(currentDatabase, input)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(result)
	}
}

func runMetaCommand(manager *catalog.Manager, currentDatabase, input string) string {
	fields := strings.Fields(input)
	switch fields[0] {
	case `\c`:
		if len(fields) != 2 {
			fmt.Println(`usage: \c <database>`)
			return currentDatabase
		}
		if !manager.DatabaseExists(fields[1]) {
			fmt.Printf("database %q does not exist\n", fields[1])
			return currentDatabase
		}
		fmt.Printf("connected to %q\n", fields[1])
		return fields[1]

	case `\l`, `\list`:
		names, err := manager.DatabaseNames()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return currentDatabase
		}
		printNames("databases", names)

	case `\dt`:
		names, err := manager.DatabaseTableNames(currentDatabase)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return currentDatabase
		}
		printNames("tables", names)

	case `\d+`:
		if len(fields) != 2 {
			fmt.Println(`usage: \d+ <table>`)
			return currentDatabase
		}
		definition, err := manager.TableDefinition(currentDatabase, fields[1])
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return currentDatabase
		}
		printDefinition(fields[1], definition)

	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return currentDatabase
}

func prompt(currentDatabase string) string {
	if currentDatabase == "" {
		return "bsql> "
	}
	return fmt.Sprintf("bsql/%s> ", currentDatabase)
}
