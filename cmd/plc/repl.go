package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"plc/interpreter-go/pkg/driver"
	"plc/interpreter-go/pkg/generator"
	"plc/interpreter-go/pkg/interpreter"
	"plc/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".plc_history"
	promptMain  = "plc> "
	promptCont  = "...> "
	replFile    = "<repl>"
)

const replHelp = `Lines are collected into one program until a command runs it.
  :run     analyze and run the program, printing main's result
  :check   analyze the program without running it
  :emit    print the program as Java
  :show    print the collected lines
  :undo    drop the last line
  :reset   drop every line
  :quit    exit the REPL`

// replSession accumulates declarations between commands. It knows nothing
// about the terminal, so it can be driven line by line.
type replSession struct {
	out    io.Writer
	errOut io.Writer
	loader *driver.Loader
	lines  []string
}

func (s *replSession) source() string {
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

// handle processes one input line and reports whether the session is over.
func (s *replSession) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		if trimmed != "" {
			s.lines = append(s.lines, line)
		}
		return false
	}
	switch strings.ToLower(trimmed) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":show":
		fmt.Fprint(s.out, s.source())
	case ":undo":
		if len(s.lines) > 0 {
			s.lines = s.lines[:len(s.lines)-1]
		}
	case ":reset":
		s.lines = nil
	case ":check":
		if _, err := s.analyze(); err != nil {
			s.report(err)
			return false
		}
		fmt.Fprintln(s.out, "ok")
	case ":emit":
		prog, err := s.analyze()
		if err != nil {
			s.report(err)
			return false
		}
		text, err := generator.Render(prog.Source)
		if err != nil {
			s.report(err)
			return false
		}
		fmt.Fprintln(s.out, text)
	case ":run":
		prog, err := s.analyze()
		if err != nil {
			s.report(err)
			return false
		}
		interp := interpreter.New(interpreter.Options{Output: s.out, Trace: s.loader.Trace})
		value, err := interp.EvaluateSource(prog.Source)
		if err != nil {
			s.report(err)
			return false
		}
		fmt.Fprintf(s.out, "=> %s\n", runtime.Stringify(value))
	default:
		fmt.Fprintf(s.errOut, "unknown command %s. Type :help for a list.\n", trimmed)
	}
	return false
}

func (s *replSession) analyze() (*driver.Program, error) {
	prog, err := s.loader.Parse(replFile, s.source())
	if err != nil {
		return nil, err
	}
	if err := s.loader.Analyze(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func (s *replSession) report(err error) {
	fmt.Fprintln(s.errOut, driver.Describe(err, replFile))
}

func (c *cli) runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}
	session := &replSession{out: c.stdout, errOut: c.stderr, loader: c.loader()}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	stop := watchSignals(func() {
		ln.Close()
		os.Exit(130)
	})
	defer stop()

	fmt.Fprintf(c.stdout, "%s REPL\nType :help for commands, Ctrl+D exits.\n", cliToolVersion)
	for {
		prompt := promptMain
		if len(session.lines) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(c.stderr, "read input: %v\n", err)
				return 1
			}
			fmt.Fprintln(c.stdout)
			return 0
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if session.handle(line) {
			return 0
		}
	}
}

// watchSignals calls onSignal on SIGTERM or SIGHUP. The returned stop func
// unregisters the handler and waits for the watcher goroutine to exit.
func watchSignals(onSignal func()) (stop func()) {
	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		defer close(done)
		if _, ok := <-sigc; ok {
			onSignal()
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(sigc)
		<-done
	}
}
