package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ValueType represents the type of a value on the stack
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
)

// Value represents a value on the stack
type Value struct {
	Type ValueType
	Str  string
	Int  int64
}

// Command represents a parsed command
type Command struct {
	Name string
	Args []Value
}

// Parser parses Forth-style commands
type Parser struct {
	reader  *bufio.Reader
	header  string
	version string
}

// NewParser creates a new parser
func NewParser(reader io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(reader),
	}

	// Read header
	headerBytes := make([]byte, 5)
	if n, err := io.ReadFull(p.reader, headerBytes); err != nil || n != 5 {
		return nil, fmt.Errorf("invalid header")
	}

	p.header = string(headerBytes[:3])
	p.version = string(headerBytes[3:5])

	if p.header != "TXT" {
		return nil, fmt.Errorf("unsupported format: %s", p.header)
	}

	return p, nil
}

// ParseCommand parses the next command from input
func (p *Parser) ParseCommand() (*Command, error) {
	stack := make([]Value, 0)

	for {
		line, err := p.reader.ReadString('\n')
		if err == io.EOF {
			if len(stack) == 0 {
				return nil, io.EOF
			}
			// Return command if stack is not empty
			break
		}
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)

		// Skip empty lines
		if line == "" {
			continue
		}

		// Skip comments
		if strings.HasPrefix(line, "#") {
			continue
		}

		// Check if it's a command
		if cmd := parseCommand(line); cmd != "" {
			// Return command with current stack
			return &Command{
				Name: cmd,
				Args: stack,
			}, nil
		}

		// Otherwise, parse as value and push to stack
		value, err := parseValue(line)
		if err != nil {
			return nil, fmt.Errorf("parse error: %v", err)
		}
		stack = append(stack, value)
	}

	return nil, io.EOF
}

func parseCommand(line string) string {
	line = strings.TrimSpace(line)

	// Known commands
	// list takes a group-name string argument, the id commands take an
	// integer entry handle
	commands := []string{
		"rescan",
		"groups",
		"list",
		"entry",
		"argv",
		"launched",
		"+filter-name",
		"0filters",
	}

	for _, cmd := range commands {
		if line == cmd {
			return cmd
		}
	}

	return ""
}

func parseValue(line string) (Value, error) {
	line = strings.TrimSpace(line)

	// String value (prefixed with ")
	if after, ok := strings.CutPrefix(line, `"`); ok {
		str := after
		return Value{Type: TypeString, Str: str}, nil
	}

	// Try parsing as integer (must be all digits)
	if intVal, err := strconv.ParseInt(line, 10, 64); err == nil {
		return Value{Type: TypeInt, Int: intVal}, nil
	}

	return Value{}, fmt.Errorf("cannot parse value: %s", line)
}

// ReadAllCommands reads all commands from the parser
func (p *Parser) ReadAllCommands() ([]*Command, error) {
	var commands []*Command

	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}
