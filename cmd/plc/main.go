package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"plc/interpreter-go/pkg/driver"
)

const cliToolVersion = "plc 0.1.0"

func main() {
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

// cli holds the process streams so commands can be driven from tests.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	trace  *log.Logger
}

func (c *cli) run(args []string) int {
	args = c.takeGlobalFlags(args)
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runMode(driver.TargetModeRun, args[1:])
	case "check":
		return c.runMode(driver.TargetModeCheck, args[1:])
	case "emit":
		return c.runMode(driver.TargetModeEmit, args[1:])
	case "build":
		return c.runBuild(args[1:])
	case "repl":
		return c.runRepl(args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(c.stderr, "unknown flag %s\n", args[0])
			c.printUsage()
			return 1
		}
		return c.runMode(driver.TargetModeRun, args)
	}
}

// takeGlobalFlags strips --trace from anywhere in args.
func (c *cli) takeGlobalFlags(args []string) []string {
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--trace" {
			c.trace = log.New(c.stderr, "plc: ", 0)
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}

func (c *cli) loader() *driver.Loader {
	return &driver.Loader{Trace: c.trace}
}

// runMode handles `plc run|check|emit [flags] [file.plc | target]`.
func (c *cli) runMode(mode driver.TargetMode, args []string) int {
	req := driver.Request{Mode: mode, Stdout: c.stdout}
	var positional []string
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case (arg == "-o" || arg == "--output") && mode == driver.TargetModeEmit:
			if i+1 >= len(args) {
				fmt.Fprintf(c.stderr, "%s requires a file name\n", arg)
				return 1
			}
			i++
			req.Output = args[i]
		case arg == "--no-check" && mode == driver.TargetModeRun:
			req.SkipAnalysis = true
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(c.stderr, "unknown flag %s for plc %s\n", arg, mode)
			return 1
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) > 1 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(positional[1:], " "))
		return 1
	}

	if len(positional) == 1 && looksLikePathCandidate(positional[0]) {
		req.Path = positional[0]
		return c.execute(req)
	}

	manifest, err := c.loadManifest()
	if err != nil {
		return c.manifestFailure(err, mode)
	}
	target, code := c.selectTarget(manifest, positional)
	if target == nil {
		return code
	}
	req.Path = manifest.Resolve(target.Main)
	if mode == driver.TargetModeEmit && req.Output == "" && target.Mode == driver.TargetModeEmit {
		req.Output = manifest.Resolve(target.Output)
	}
	return c.execute(req)
}

// runBuild performs a manifest target in the mode the manifest gives it.
func (c *cli) runBuild(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}
	manifest, err := c.loadManifest()
	if err != nil {
		return c.manifestFailure(err, "build")
	}
	target, code := c.selectTarget(manifest, args)
	if target == nil {
		return code
	}
	result, err := c.loader().ExecuteTarget(manifest, target, c.stdout)
	return c.finish(result, err, manifest.Resolve(target.Main))
}

func (c *cli) execute(req driver.Request) int {
	result, err := c.loader().Execute(req)
	return c.finish(result, err, req.Path)
}

// finish reports err, or maps main's return value to the exit status.
func (c *cli) finish(result *driver.Result, err error, path string) int {
	if err != nil {
		fmt.Fprintln(c.stderr, driver.Describe(err, displayPath(path)))
		return 1
	}
	if result == nil {
		return 0
	}
	return driver.ExitCode(result.Value)
}

func (c *cli) loadManifest() (*driver.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	path, err := driver.FindManifest(cwd)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func (c *cli) manifestFailure(err error, command any) int {
	if errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(c.stderr, "plc %s requires a source file or a manifest target (%s not found)\n", command, driver.ManifestName)
		return 1
	}
	fmt.Fprintf(c.stderr, "failed to load manifest: %v\n", err)
	return 1
}

func (c *cli) selectTarget(manifest *driver.Manifest, args []string) (*driver.TargetSpec, int) {
	if len(args) == 0 {
		target, err := manifest.DefaultTarget()
		if err != nil {
			fmt.Fprintf(c.stderr, "manifest error: %v\n", err)
			return nil, 1
		}
		return target, 0
	}
	target, ok := manifest.FindTarget(args[0])
	if !ok {
		fmt.Fprintf(c.stderr, "unknown target %q in %s\n", args[0], displayPath(manifest.Path))
		return nil, 1
	}
	return target, 0
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if filepath.Ext(arg) == ".plc" {
		return true
	}
	return strings.HasPrefix(arg, ".")
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil || !filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  plc [--trace] <file.plc>")
	fmt.Fprintln(c.stderr, "  plc [--trace] run [--no-check] [file.plc | target]")
	fmt.Fprintln(c.stderr, "  plc [--trace] check [file.plc | target]")
	fmt.Fprintln(c.stderr, "  plc [--trace] emit [-o Main.java] [file.plc | target]")
	fmt.Fprintln(c.stderr, "  plc [--trace] build [target]")
	fmt.Fprintln(c.stderr, "  plc repl")
	fmt.Fprintln(c.stderr, "  plc version")
}
