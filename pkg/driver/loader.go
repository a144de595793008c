package driver

import (
	"fmt"
	"log"
	"os"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/parser"
	"plc/interpreter-go/pkg/typechecker"
)

// Program is a parsed source file. Analyzed is set once the checker has
// annotated Source.
type Program struct {
	Path     string
	Text     string
	Source   *ast.Source
	Analyzed bool
}

// Loader reads, parses and analyzes programs. Trace, when set, receives one
// line per pass.
type Loader struct {
	Trace *log.Logger
}

// LoadFile reads path and parses it without analysis.
func (l *Loader) LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	return l.Parse(path, string(data))
}

// Parse parses text that was read from path.
func (l *Loader) Parse(path, text string) (*Program, error) {
	l.tracef("parse %s", path)
	src, err := parser.ParseSource(text)
	if err != nil {
		return nil, err
	}
	return &Program{Path: path, Text: text, Source: src}, nil
}

// Analyze runs the checker over the program. Re-analysis starts from a fresh
// checker, so it is safe to call more than once.
func (l *Loader) Analyze(prog *Program) error {
	l.tracef("analyze %s", prog.Path)
	if err := typechecker.New().CheckSource(prog.Source); err != nil {
		return err
	}
	prog.Analyzed = true
	return nil
}

// Load reads, parses and analyzes path.
func (l *Loader) Load(path string) (*Program, error) {
	prog, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := l.Analyze(prog); err != nil {
		return prog, err
	}
	return prog, nil
}

func (l *Loader) tracef(format string, args ...any) {
	if l == nil || l.Trace == nil {
		return
	}
	l.Trace.Printf(format, args...)
}
