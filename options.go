package vmrex

import (
	"github.com/vmrex/vmrex/compiler"
	"github.com/vmrex/vmrex/vm"
)

// CompileOptions controls pattern compilation and execution behavior.
//
// Example:
//
//	opts := vmrex.DefaultOptions()
//	opts.CaseInsensitive = true
//	re, err := vmrex.CompileWithOptions(`hello`, opts)
type CompileOptions struct {
	// OptLevel selects how aggressively the compiler rewrites the
	// straightforward bytecode lowering (peephole jump-threading, and at
	// the aggressive tier, literal prefilter extraction).
	// Default: compiler.LevelBasic
	OptLevel compiler.Level

	// CaseInsensitive folds ASCII letter matching and backreference
	// comparison so 'a' and 'A' are equivalent.
	// Default: false
	CaseInsensitive bool

	// Multiline makes ^ and $ match at line boundaries (after/before '\n')
	// rather than only at the start/end of the whole haystack.
	// Default: false
	Multiline bool

	// DotAll makes '.' also match '\n'.
	// Default: false
	DotAll bool

	// MaxRecursionDepth caps nested lookaround invocation depth.
	// Default: 1000
	MaxRecursionDepth int

	// MaxSteps caps how many times a single search attempt may advance a
	// thread over an input byte, guarding against pathological patterns.
	// Zero-width instructions and nested lookaround searches are not
	// counted.
	// Default: 1,000,000
	MaxSteps int
}

// DefaultOptions returns a configuration with sensible defaults: the
// basic optimizer tier (jump threading, dead-code trimming, and
// character-class folding) and the VM's own default step/recursion
// limits. Callers that know their patterns are literal-heavy and want
// prefilter extraction can opt into compiler.LevelAggressive explicitly.
//
// Example:
//
//	opts := vmrex.DefaultOptions()
//	opts.MaxSteps = 1000 // tighter budget for untrusted patterns
func DefaultOptions() CompileOptions {
	d := vm.DefaultOptions()
	return CompileOptions{
		OptLevel:          compiler.LevelBasic,
		MaxRecursionDepth: d.MaxRecursionDepth,
		MaxSteps:          d.MaxSteps,
	}
}

// Validate checks that opts is within acceptable ranges, returning a
// *ConfigError naming the first offending field.
//
// Valid ranges:
//   - MaxRecursionDepth: 1 to 1,000
//   - MaxSteps: 1 to 1,000,000,000
//
// Example:
//
//	opts := vmrex.CompileOptions{MaxRecursionDepth: 0}
//	if err := opts.Validate(); err != nil {
//	    log.Fatal(err)
//	}
func (o CompileOptions) Validate() error {
	if o.MaxRecursionDepth < 1 || o.MaxRecursionDepth > 1_000 {
		return &ConfigError{
			Field:   "MaxRecursionDepth",
			Message: "must be between 1 and 1,000",
		}
	}
	if o.MaxSteps < 1 || o.MaxSteps > 1_000_000_000 {
		return &ConfigError{
			Field:   "MaxSteps",
			Message: "must be between 1 and 1,000,000,000",
		}
	}
	return nil
}

func (o CompileOptions) vmOptions() vm.Options {
	return vm.Options{
		MaxSteps:          o.MaxSteps,
		MaxRecursionDepth: o.MaxRecursionDepth,
	}
}

func (o CompileOptions) compilerOptions() compiler.Options {
	return compiler.Options{
		OptLevel:        o.OptLevel,
		CaseInsensitive: o.CaseInsensitive,
		Multiline:       o.Multiline,
		DotAll:          o.DotAll,
	}
}

// ConfigError represents an invalid CompileOptions field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "vmrex: invalid config: " + e.Field + ": " + e.Message
}
