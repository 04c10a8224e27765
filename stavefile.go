//go:build stave

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// binaries built from ./cmd.
var binaries = []string{"srx-split", "srx-bench"}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles the srx-split and srx-bench binaries.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_Split, Build_Bench)
	return nil
}

// Build_Split compiles the srx-split binary with version information.
func Build_Split() error {
	st.Deps(Init)
	return buildBinary("srx-split")
}

// Build_Bench compiles the srx-bench binary with version information.
func Build_Bench() error {
	st.Deps(Init)
	return buildBinary("srx-bench")
}

func buildBinary(name string) error {
	out := filepath.Join("bin", name)

	// Check if rebuild is needed
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode.
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	for _, a := range append([]string{"bin/", "coverage.out", "coverage.html"}, binaries...) {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		src := "bin/" + name
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, src); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Corpus namespace for gold corpus targets.
type Corpus st.Namespace

// Conllu converts a CoNLL-U treebank into gold documents.
// Set CONLLU to the treebank file and LANG_CODE to its language code.
func (Corpus) Conllu() error {
	src := os.Getenv("CONLLU")
	if src == "" {
		return errors.New("CONLLU is not set")
	}
	lang := os.Getenv("LANG_CODE")
	if lang == "" {
		lang = "en"
	}

	return sh.RunV("go", "run", "scripts/process-conllu.go",
		"-in", src,
		"-out", "testdata/gold",
		"-lang", lang,
	)
}

// Bench namespace for benchmark-related targets.
type Bench st.Namespace

// Run ranks the SRX files under testdata against the gold corpus.
func (Bench) Run() error {
	st.Deps(Build_Bench)

	lang := os.Getenv("SRX_LANGUAGE")
	if lang == "" {
		lang = "en"
	}
	rulesets, err := filepath.Glob("testdata/*.srx")
	if err != nil {
		return err
	}

	args := append([]string{"--corpus", "testdata/gold", "--language", lang}, rulesets...)
	return sh.RunV("./bin/srx-bench", args...)
}

// Go runs the Go benchmarks of the segmenter.
func (Bench) Go() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", ".")
}

// Fuzz runs the segmentation fuzz test for a minute.
func (Bench) Fuzz() error {
	return sh.RunV("go", "test", "-run", "^$", "-fuzz", "FuzzSegments", "-fuzztime", "1m", ".")
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy runs go mod tidy and verifies the go.sum is clean.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	// Verify no changes to go.sum (useful for CI)
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
