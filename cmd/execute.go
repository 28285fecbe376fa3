// Package cmd implements the command line interface of the compiler.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/build"
	"github.com/PeterBassett/Compiler-sub001/eval"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Version is the compiler version.
const Version = "0.1.0"

// Execute runs the command line application on `os.Args` and returns the
// process exit code.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("vmc", "vmc compiles syntax trees to assembly for the register VM", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, report.LogLevelNames())
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a syntax tree to assembly", true)
	buildCmd.AddPrimaryArg("tree-path", "the path to the JSON syntax tree", true)
	buildCmd.AddStringArg("output", "o", "the path to write the assembly to", false)
	buildCmd.AddStringArg("profile", "p", "the path to the compiler profile", false)

	runCmd := cli.AddSubcommand("run", "evaluate the `main` function of a syntax tree", true)
	runCmd.AddPrimaryArg("tree-path", "the path to the JSON syntax tree", true)
	runCmd.AddStringArg("profile", "p", "the path to the compiler profile", false)

	dumpCmd := cli.AddSubcommand("dump", "print the lowered bound tree", true)
	dumpCmd.AddPrimaryArg("tree-path", "the path to the JSON syntax tree", true)
	dumpCmd.AddStringArg("profile", "p", "the path to the compiler profile", false)

	cli.AddSubcommand("version", "print the compiler version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	loglevel, err := report.ParseLogLevel(result.Arguments["loglevel"].(string))
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult, loglevel)
	case "run":
		return execRunCommand(subResult, loglevel)
	case "dump":
		return execDumpCommand(subResult, loglevel)
	case "version":
		report.PrintInfoMessage("Version", Version)
	}

	return 0
}

// execBuildCommand executes the build subcommand and handles all errors
func execBuildCommand(result *olive.ArgParseResult, loglevel int) int {
	unit, opts, ok := loadInputs(result, loglevel, os.Stdout)
	if !ok {
		return 1
	}

	res, err := build.Compile(unit, opts)
	if err != nil || !res.Succeeded() {
		return 1
	}

	outPath, ok := stringArg(result, "output")
	if !ok {
		fmt.Print(res.Assembly)
		return 0
	}

	if err := os.WriteFile(outPath, []byte(res.Assembly), 0644); err != nil {
		opts.Reporter.ReportFatal("Output Error", fmt.Errorf("error writing assembly: %w", err))
		return 1
	}

	return 0
}

// execRunCommand executes the run subcommand and handles all errors
func execRunCommand(result *olive.ArgParseResult, loglevel int) int {
	unit, opts, ok := loadInputs(result, loglevel, os.Stdout)
	if !ok {
		return 1
	}

	res, err := build.Run(unit, opts)
	if err != nil || !res.Succeeded() {
		return 1
	}

	if main, ok := res.Lowered.Function("main"); ok && !main.ReturnType().Equals(types.Unit) {
		report.PrintInfoMessage("Result", eval.Format(res.Value))
	}

	return 0
}

// execDumpCommand executes the dump subcommand and handles all errors
func execDumpCommand(result *olive.ArgParseResult, loglevel int) int {
	unit, opts, ok := loadInputs(result, loglevel, io.Discard)
	if !ok {
		return 1
	}

	res, err := build.Analyze(unit, opts)
	if err != nil || !res.Succeeded() {
		return 1
	}

	if err := bound.Fprint(os.Stdout, res.Lowered); err != nil {
		opts.Reporter.ReportFatal("Output Error", err)
		return 1
	}

	return 0
}

// -----------------------------------------------------------------------------

// loadInputs loads the syntax tree and profile named by the arguments of a
// subcommand and creates the reporter of the compilation.  Builtins that print
// write to `out`.
func loadInputs(result *olive.ArgParseResult, loglevel int, out io.Writer) (*ast.CompilationUnit, build.Options, bool) {
	treePath, _ := result.PrimaryArg()
	reporter := report.NewReporter(filepath.Base(treePath), loglevel)

	profilePath, _ := stringArg(result, "profile")
	opts, err := loadProfile(profilePath, out)
	if err != nil {
		reporter.ReportFatal("Config Error", err)
		return nil, opts, false
	}
	opts.Reporter = reporter

	unit, err := loadTree(treePath)
	if err != nil {
		reporter.ReportFatal("Input Error", err)
		return nil, opts, false
	}

	return unit, opts, true
}

// loadTree loads a syntax tree from its JSON hand-off file.
func loadTree(path string) (*ast.CompilationUnit, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading syntax tree: %w", err)
	}

	unit, err := ast.Decode(buff)
	if err != nil {
		return nil, fmt.Errorf("error decoding syntax tree: %w", err)
	}

	return unit, nil
}

// stringArg returns the value of an optional string argument.
func stringArg(result *olive.ArgParseResult, name string) (string, bool) {
	if val, ok := result.Arguments[name]; ok {
		return val.(string), true
	}

	return "", false
}
