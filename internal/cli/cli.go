// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retroemit/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (options.Program, error) {
	flags := flag.NewFlagSet("retroemit", flag.ContinueOnError)
	opts := options.NewProgram()
	readOptionFlags(flags, &opts)

	err := flags.Parse(args)
	rest := flags.Args()
	if err != nil || len(rest) == 0 {
		return opts, &UsageError{flags: flags}
	}
	if len(rest) > 1 {
		return opts, &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("unexpected argument '%s', pass a single listing file", rest[1]),
		}
	}
	opts.Input = rest[0]

	if opts.Options != "" {
		if err := opts.LoadFile(opts.Options); err != nil {
			return opts, err
		}
	}
	if _, err := opts.TargetArch(); err != nil {
		return opts, err
	}
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", opts.Output, "output file, printed on console if no name given")
	flags.StringVar(&opts.Options, "options", opts.Options, "yaml file with tool options")
	flags.StringVar(&opts.Arch, "arch", opts.Arch, "target architecture: arm64, riscv64")
	flags.BoolVar(&opts.Assemble, "assemble", opts.Assemble, "assemble the listing and output machine code as hex")
	flags.BoolVar(&opts.RWTable, "rwtable", opts.RWTable, "output the register read/write table")
	flags.BoolVar(&opts.Dump, "dump", opts.Dump, "dump raw instruction query results for debugging")
	flags.BoolVar(&opts.Debug, "debug", opts.Debug, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", opts.Quiet, "perform operations quietly")
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retroemit [options] <listing file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}
