package driver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"plc/interpreter-go/pkg/generator"
	"plc/interpreter-go/pkg/interpreter"
	"plc/interpreter-go/pkg/runtime"
)

// Request describes one driver action on a source file.
type Request struct {
	Mode TargetMode
	Path string
	// Output is the file an emit writes to; empty means Stdout.
	Output string
	// Stdout receives program output for run and Java text for emit.
	Stdout io.Writer
	// SkipAnalysis runs an unanalyzed tree. Only meaningful for run.
	SkipAnalysis bool
}

// Result carries what the action produced. Value is main's return for run.
type Result struct {
	Program *Program
	Value   runtime.Value
}

// Execute loads req.Path and performs req.Mode on it.
func (l *Loader) Execute(req Request) (*Result, error) {
	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("driver: unsupported mode %q", req.Mode)
	}
	stdout := req.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	prog, err := l.LoadFile(req.Path)
	if err != nil {
		return nil, err
	}
	result := &Result{Program: prog}
	if !(req.Mode == TargetModeRun && req.SkipAnalysis) {
		if err := l.Analyze(prog); err != nil {
			return result, err
		}
	}

	switch req.Mode {
	case TargetModeCheck:
		return result, nil
	case TargetModeEmit:
		return result, l.emit(prog, req.Output, stdout)
	default:
		l.tracef("run %s", prog.Path)
		interp := interpreter.New(interpreter.Options{Output: stdout, Trace: l.Trace})
		value, err := interp.EvaluateSource(prog.Source)
		result.Value = value
		return result, err
	}
}

// ExecuteTarget performs a manifest target, resolving its paths against the
// manifest directory.
func (l *Loader) ExecuteTarget(m *Manifest, target *TargetSpec, stdout io.Writer) (*Result, error) {
	req := Request{Mode: target.Mode, Path: m.Resolve(target.Main), Stdout: stdout}
	if target.Mode == TargetModeEmit && target.Output != "" {
		req.Output = m.Resolve(target.Output)
	}
	return l.Execute(req)
}

func (l *Loader) emit(prog *Program, output string, stdout io.Writer) error {
	l.tracef("emit %s", prog.Path)
	var buf bytes.Buffer
	if err := generator.Generate(&buf, prog.Source); err != nil {
		return err
	}
	buf.WriteByte('\n')
	if output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("driver: create %s: %w", filepath.Dir(output), err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("driver: write %s: %w", output, err)
	}
	return nil
}

// ExitCode maps main's return value to a process status. Values outside the
// int range and non-integers yield 0.
func ExitCode(value runtime.Value) int {
	iv, ok := value.(runtime.IntegerValue)
	if !ok || iv.Val == nil || !iv.Val.IsInt64() {
		return 0
	}
	code := iv.Val.Int64()
	if code < -1<<31 || code > 1<<31-1 {
		return 0
	}
	return int(code)
}
