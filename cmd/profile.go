package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/PeterBassett/Compiler-sub001/build"
	"github.com/PeterBassett/Compiler-sub001/builtins"
)

// tomlProfile represents a compiler profile as it is encoded in TOML
type tomlProfile struct {
	Generator *tomlGenerator `toml:"generator"`
	Builtins  *tomlBuiltins  `toml:"builtins"`
	Evaluator *tomlEvaluator `toml:"evaluator"`
}

// tomlGenerator represents the code generator options of a profile
type tomlGenerator struct {
	Comments        bool `toml:"comments"`
	BlankLines      bool `toml:"blank-lines"`
	OptimiseForSize bool `toml:"optimise-for-size"`
}

// tomlBuiltins represents the builtin functions available to a program.  The
// interrupt index of each builtin is its position in `Enabled`.
type tomlBuiltins struct {
	Enabled []string `toml:"enabled"`
}

// tomlEvaluator represents the options of the bound tree interpreter
type tomlEvaluator struct {
	StepLimit int `toml:"step-limit"`
}

// loadProfile loads the compiler profile at `path`.  An empty path yields
// the default options.  Builtins that print write to `out`.
func loadProfile(path string, out io.Writer) (build.Options, error) {
	if path == "" {
		return parseProfile(nil, out)
	}

	buff, err := os.ReadFile(path)
	if err != nil {
		return build.Options{}, fmt.Errorf("error loading profile: %w", err)
	}

	return parseProfile(buff, out)
}

// parseProfile converts the TOML text of a profile into build options.
func parseProfile(buff []byte, out io.Writer) (build.Options, error) {
	tp := &tomlProfile{}
	if err := toml.Unmarshal(buff, tp); err != nil {
		return build.Options{}, fmt.Errorf("error parsing profile: %w", err)
	}

	opts := build.Options{}
	if tp.Generator != nil {
		opts.Generator.Comments = tp.Generator.Comments
		opts.Generator.BlankLines = tp.Generator.BlankLines
		opts.Generator.OptimiseForSize = tp.Generator.OptimiseForSize
	}

	if tp.Evaluator != nil {
		if tp.Evaluator.StepLimit < 0 {
			return build.Options{}, fmt.Errorf("step limit must not be negative: %d", tp.Evaluator.StepLimit)
		}

		opts.StepLimit = tp.Evaluator.StepLimit
	}

	// an empty list selects the default registry
	if tp.Builtins == nil || len(tp.Builtins.Enabled) == 0 {
		opts.Generator.Builtins = builtins.Default()
		return opts, nil
	}

	registry, err := builtins.Select(out, tp.Builtins.Enabled...)
	if err != nil {
		return build.Options{}, fmt.Errorf("error in profile builtins: %w", err)
	}

	opts.Generator.Builtins = registry
	return opts, nil
}
