package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bsql/catalog"
	"bsql/dump"
	"bsql/storage/page"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("bsql failed")
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bsql [database-file]",
		Short: "A small embedded relational database",
		Long: "bsql opens the given database file and starts an interactive shell.\n" +
			"Pass \":memory:\" to work against a throwaway in-memory database.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(databasePath(args), func(pm *page.PageManager, manager *catalog.Manager) error {
				if err := runRepl(manager); err != nil {
					return err
				}
				return pm.Commit()
			})
		},
	}

	rootCmd.AddCommand(newDumpCmd(), newRestoreCmd())
	return rootCmd
}

func newDumpCmd() *cobra.Command {
	var output string

	dumpCmd := &cobra.Command{
		Use:   "dump [database-file]",
		Short: "Write a logical snapshot of the database to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(databasePath(args), func(pm *page.PageManager, manager *catalog.Manager) error {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer file.Close()

				if err := dump.Write(file, manager); err != nil {
					return err
				}
				log.Info().Str("output", output).Msg("dump written")
				return nil
			})
		},
	}

	dumpCmd.Flags().StringVarP(&output, "output", "o", "bsql.dump", "file to write the snapshot to")
	return dumpCmd
}

func newRestoreCmd() *cobra.Command {
	var input string

	restoreCmd := &cobra.Command{
		Use:   "restore [database-file]",
		Short: "Replay a logical snapshot into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(databasePath(args), func(pm *page.PageManager, manager *catalog.Manager) error {
				file, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("opening %s: %w", input, err)
				}
				defer file.Close()

				if err := dump.Restore(file, manager); err != nil {
					return err
				}
				if err := pm.Commit(); err != nil {
					return err
				}
				log.Info().Str("input", input).Msg("snapshot restored")
				return nil
			})
		},
	}

	restoreCmd.Flags().StringVarP(&input, "input", "i", "bsql.dump", "snapshot file to replay")
	return restoreCmd
}

func withManager(path string, fn func(*page.PageManager, *catalog.Manager) error) error {
	pm, err := page.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer pm.Close()

	manager, err := catalog.NewManager(pm)
	if err != nil {
		return err
	}
	return fn(pm, manager)
}

func databasePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "bsql.db"
}
