// Package snapshot_test provides golden snapshot tests for the compiler.
//
// Each program in testdata/in/ is either besl source (.besl) or a JSON
// description (.json). An optional YAML file with the same base name
// supplies compiler settings and resources. The formatted GLSL output is
// compared to testdata/golden/<name>.glsl.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"unicode"

	"github.com/gogpu/besl"
	"github.com/gogpu/besl/config"
	"github.com/gogpu/besl/syntax"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// program represents an input program loaded from disk.
type program struct {
	name   string // base name without extension (e.g., "vertex_basic")
	path   string
	json   bool
	source []byte
	cfg    *config.Config
}

// TestSnapshots is the main golden snapshot test. It compiles every input
// program formatted and minified, compares the formatted output with its
// golden file and checks that both differ only in whitespace.
func TestSnapshots(t *testing.T) {
	programs := loadInputPrograms(t, "testdata/in")
	if len(programs) == 0 {
		t.Fatal("no input programs found in testdata/in/")
	}

	for i := range programs {
		p := &programs[i]
		t.Run(p.name, func(t *testing.T) {
			pretty := compileProgram(t, p, false)
			compareGolden(t, filepath.Join("testdata", "golden", p.name+".glsl"), pretty)

			minified := compileProgram(t, p, true)
			if stripWhitespace(minified) != stripWhitespace(pretty) {
				t.Errorf("minified output differs beyond whitespace:\n%s", diffStrings(pretty, minified))
			}
		})
	}
}

// loadInputPrograms reads the .besl and .json files in dir, sorted by name,
// with their optional configuration.
func loadInputPrograms(t *testing.T, dir string) []program {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input dir %s: %v", dir, err)
	}

	var programs []program
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".besl" && ext != ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		name := strings.TrimSuffix(e.Name(), ext)

		cfg := &config.Config{}
		cfgPath := filepath.Join(dir, name+".yaml")
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			cfg, err = config.LoadFile(cfgPath)
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
		}

		programs = append(programs, program{
			name:   name,
			path:   path,
			json:   ext == ".json",
			source: data,
			cfg:    cfg,
		})
	}

	sort.Slice(programs, func(i, j int) bool {
		return programs[i].name < programs[j].name
	})
	return programs
}

// compileProgram runs the full pipeline for p with the configuration's
// resources appended before resolution.
func compileProgram(t *testing.T, p *program, minify bool) string {
	t.Helper()

	opts, err := p.cfg.Merge(config.MergeOptions{Minify: &minify})
	if err != nil {
		t.Fatalf("%s: options: %v", p.path, err)
	}
	compileOpts := besl.CompileOptions{
		GLSL:          opts,
		BeforeResolve: besl.BindingTransform(p.cfg),
	}

	var code string
	if p.json {
		root, table, jsonErr := syntax.ParseJSON(p.source)
		if jsonErr != nil {
			t.Fatalf("%s: %v", p.path, jsonErr)
		}
		code, err = besl.CompileSyntax(root, table, compileOpts)
	} else {
		code, err = besl.Compile(string(p.source), compileOpts)
	}
	if err != nil {
		var srcErr *syntax.SourceError
		if errors.As(err, &srcErr) {
			t.Fatalf("%s:\n%s", p.path, srcErr.FormatWithContext())
		}
		t.Fatalf("%s: %v", p.path, err)
	}
	return code
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with a golden file. When
// UPDATE_GOLDEN is set, the golden file is written instead.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, truncate(actual, 500))
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actualStr))
	}
}

// diffStrings reports the first differing line with surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))

	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	const contextLines = 3
	start := max(firstDiff-contextLines, 0)
	end := min(firstDiff+contextLines+1, maxLines)
	for i := start; i < end; i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(e, 120))
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(a, 120))
		}
	}
	return sb.String()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
