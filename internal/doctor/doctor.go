// Package doctor provides environment preflight checks for matchatext.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// EspeakVersion returns the output of `espeak-ng --version`.
	EspeakVersion VersionFunc
	// SkipEspeak skips the espeak-ng binary check (goruut backend mode).
	SkipEspeak bool
	// Pipelines is the list of cleaner pipeline names to verify.
	Pipelines []string
	// LookupPipeline resolves a pipeline name, returning an error when undefined.
	LookupPipeline func(name string) error
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- espeak-ng binary -------------------------------------------------
	if cfg.SkipEspeak {
		fmt.Fprintf(w, "%s espeak-ng binary: skipped\n", PassMark)
	} else {
		ver, err := cfg.EspeakVersion()
		if err != nil {
			res.fail(fmt.Sprintf("espeak-ng binary: %v", err))
			fmt.Fprintf(w, "%s espeak-ng binary: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s espeak-ng binary: %s\n", PassMark, strings.TrimSpace(ver))
		}
	}

	// ---- cleaner pipelines ------------------------------------------------
	for _, name := range cfg.Pipelines {
		if cfg.LookupPipeline == nil {
			break
		}
		if err := cfg.LookupPipeline(name); err != nil {
			res.fail(fmt.Sprintf("pipeline %q: %v", name, err))
			fmt.Fprintf(w, "%s pipeline %s: undefined\n", FailMark, name)
		} else {
			fmt.Fprintf(w, "%s pipeline: %s\n", PassMark, name)
		}
	}

	return res
}

// espeakTempLib is the shared-library file that marks a temp directory as
// espeak residue. Crashed engine processes leave these behind under the
// system temp directory and they accumulate over time.
const espeakTempLib = "libespeak-ng.so.1.1.51"

// SweepResult reports what a temp sweep found and removed.
type SweepResult struct {
	Found   []string
	Removed []string
	Errors  []error
}

// SweepTemps scans tempDir for tmp* directories containing a leftover espeak
// shared library and removes them. With dryRun set, directories are reported
// but left in place. An empty tempDir means os.TempDir().
func SweepTemps(tempDir string, dryRun bool) SweepResult {
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	var res SweepResult

	matches, err := filepath.Glob(filepath.Join(tempDir, "tmp*"))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("scan %s: %w", tempDir, err))
		return res
	}

	for _, dir := range matches {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, espeakTempLib)); err != nil {
			continue
		}

		res.Found = append(res.Found, dir)
		if dryRun {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			// Directories still mapped by a live engine fail removal; they
			// disappear when that process exits.
			res.Errors = append(res.Errors, fmt.Errorf("remove %s: %w", dir, err))
			continue
		}
		res.Removed = append(res.Removed, dir)
	}

	return res
}
