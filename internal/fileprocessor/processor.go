// Package fileprocessor handles listing file loading and processing.
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/internal/listing"
	"github.com/retroenv/retroemit/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints the tool banner unless quiet mode is set.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	fmt.Println("[---------------------------------------]")
	fmt.Println("[ retroemit - machine code emitter tool ]")
	fmt.Printf("[---------------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
	logger.Debug("Options",
		log.String("arch", opts.Arch),
		log.String("input", opts.Input),
		log.String("architectures", fmt.Sprint(inst.Archs())),
	)
}

// ProcessFile handles the complete listing processing workflow.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	targetArch, err := opts.TargetArch()
	if err != nil {
		return err
	}

	statements, err := loadListing(opts.Input)
	if err != nil {
		return fmt.Errorf("loading listing: %w", err)
	}

	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
			_ = closer.Close()
		}
	}()

	proc := newProcessor(logger, targetArch, statements, writer)

	if opts.RWTable || opts.Dump {
		if err := proc.writeRWTable(ctx, opts.Dump); err != nil {
			return fmt.Errorf("writing read/write table: %w", err)
		}
	}
	if opts.Assemble {
		if targetArch != arch.ARM64 {
			return fmt.Errorf("assembling is not supported for %s", targetArch)
		}
		if err := proc.assemble(ctx); err != nil {
			return fmt.Errorf("assembling: %w", err)
		}
	}
	return nil
}

func loadListing(name string) ([]listing.Statement, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file '%s': %w", name, err)
	}
	defer func() {
		_ = file.Close()
	}()

	statements, err := listing.Parse(file)
	if err != nil {
		return nil, err
	}
	return statements, nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating file '%s': %w", opts.Output, err)
	}
	return file, nil
}
