// Package listing parses symbolic instruction listings. A listing is
// line based assembly text: labels end with a colon, instructions use
// the architecture mnemonics with comma separated operands, comments
// start with a semicolon.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Arg is one parsed operand. Label references carry the referenced
// name, all other operands are fully resolved at parse time.
type Arg struct {
	Register  *Register
	Memory    *Memory
	Immediate *int64
	LabelName string
}

// Register is a parsed register operand.
type Register struct {
	Name         string // normalized register name, for example x0 or sp
	Element      string // vector element type, empty for scalar registers
	ElementIndex int    // vector element index, -1 if not indexed
}

// Memory is a parsed memory operand.
type Memory struct {
	Base      string
	Index     string
	Offset    int64
	PreIndex  bool
	PostIndex bool
}

// Statement is one parsed listing line.
type Statement struct {
	Line    int
	Label   string // bound label name, empty for instruction lines
	Name    string // instruction mnemonic
	Args    []Arg
	Comment string
}

// Parse reads a listing and returns its statements.
func Parse(r io.Reader) ([]Statement, error) {
	var statements []Statement

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		var comment string
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			comment = strings.TrimSpace(line[idx+1:])
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if name, ok := strings.CutSuffix(line, ":"); ok {
			name = strings.TrimSpace(name)
			if name == "" || strings.ContainsAny(name, " \t,") {
				return nil, fmt.Errorf("line %d: invalid label '%s'", lineNo, name)
			}
			statements = append(statements, Statement{Line: lineNo, Label: name, Comment: comment})
			continue
		}

		stmt, err := parseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		stmt.Line = lineNo
		stmt.Comment = comment
		statements = append(statements, stmt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	return statements, nil
}

func parseInstruction(line string) (Statement, error) {
	name, rest, _ := strings.Cut(line, " ")
	stmt := Statement{Name: strings.ToLower(name)}

	tokens, err := splitOperands(strings.TrimSpace(rest))
	if err != nil {
		return stmt, err
	}

	for i := 0; i < len(tokens); i++ {
		arg, err := parseOperand(tokens[i])
		if err != nil {
			return stmt, err
		}

		// post-index addressing splits at the operand comma: merge a
		// memory operand with a directly following immediate.
		if arg.Memory != nil && !arg.Memory.PreIndex && i+1 < len(tokens) &&
			strings.HasPrefix(tokens[i+1], "#") {

			offset, err := parseImmediate(tokens[i+1])
			if err != nil {
				return stmt, err
			}
			arg.Memory.Offset = offset
			arg.Memory.PostIndex = true
			i++
		}

		stmt.Args = append(stmt.Args, arg)
	}
	return stmt, nil
}

// splitOperands splits at commas outside of brackets.
func splitOperands(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	var tokens []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in '%s'", s)
			}
		case ',':
			if depth == 0 {
				tokens = append(tokens, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in '%s'", s)
	}
	tokens = append(tokens, strings.TrimSpace(s[start:]))

	for _, token := range tokens {
		if token == "" {
			return nil, fmt.Errorf("empty operand in '%s'", s)
		}
	}
	return tokens, nil
}
