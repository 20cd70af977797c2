// Package options contains the program options.
package options

import (
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retroemit/arch"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Program options of the emitter tool.
type Program struct {
	Input   string // listing file to process
	Output  string // output file, stdout if empty
	Options string // yaml options file

	Arch string `yaml:"arch"`

	Assemble bool `yaml:"assemble"`
	RWTable  bool `yaml:"rwtable"`
	Dump     bool `yaml:"dump"`

	Debug bool `yaml:"debug"`
	Quiet bool `yaml:"quiet"`
}

// NewProgram returns program options with environment based defaults.
// Environment variables provide the defaults that command line flags
// can override.
func NewProgram() Program {
	return Program{
		Arch:    env.Str("RETROEMIT_ARCH", "arm64"),
		RWTable: true,
		Debug:   env.Bool("RETROEMIT_DEBUG"),
		Quiet:   env.Bool("RETROEMIT_QUIET"),
	}
}

// LoadFile merges settings from a yaml options file into the options.
func (p *Program) LoadFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading options file '%s': %w", name, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("parsing options file '%s': %w", name, err)
	}
	return nil
}

// TargetArch resolves the architecture option.
func (p *Program) TargetArch() (arch.Arch, error) {
	switch strings.ToLower(p.Arch) {
	case "arm64", "aarch64":
		return arch.ARM64, nil
	case "riscv", "riscv64":
		return arch.RISCV64, nil
	default:
		return arch.Unknown, fmt.Errorf("unsupported architecture '%s'", p.Arch)
	}
}
