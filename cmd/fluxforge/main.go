// Command fluxforge is the CLI front-end for the migration engine (spec
// §6): extract a live schema to the canonical IR, migrate schema (and
// optionally data) to a target, or replicate schema and data end to end
// with optional verification. Flag parsing follows the teacher's
// jessevdk/go-flags idiom (cmd/mysqldef/mysqldef.go), extended with
// subcommands since this binary covers three operations instead of one.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/fluxforge/fluxforge/fferr"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	parser := flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "fluxforge"
	parser.Usage = "<command> [options]"

	extractCmd := &extractCommand{}
	migrateCmd := &migrateCommand{}
	replicateCmd := &replicateCommand{}

	if _, err := parser.AddCommand("extract", "Introspect a source schema into the canonical IR", "", extractCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := parser.AddCommand("migrate", "Apply schema (and optionally data) to a target", "", migrateCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := parser.AddCommand("replicate", "Migrate schema and data end to end with optional verification", "", replicateCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	_, err := parser.ParseArgs(args)
	if err == nil {
		return 0
	}

	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, flagsErr)
		return 0
	}

	fmt.Fprintln(os.Stderr, "fluxforge:", err)

	var ue *usageError
	if errors.As(err, &ue) {
		return 1
	}
	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrCommandRequired {
		return 1
	}
	return fferr.ExitCode(err)
}
