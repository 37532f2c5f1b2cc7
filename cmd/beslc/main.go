// Command beslc is the besl shader compiler CLI.
//
// Usage:
//
//	beslc [options] <input>...
//
// Examples:
//
//	beslc shader.besl                      # Compile to stdout
//	beslc -o shader.glsl shader.besl       # Compile to a file
//	beslc -stage compute -minify=true a.besl
//	beslc -o out/ a.besl b.json            # Compile several inputs concurrently
//	beslc -ast shader.besl                 # Print the syntax tree as JSON
//
// Inputs ending in .json are program descriptions; anything else is besl
// source. Settings are read from the nearest beslc.yaml unless -config is
// given; command-line flags take precedence.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gogpu/besl"
	"github.com/gogpu/besl/config"
	"github.com/gogpu/besl/glsl"
	"github.com/gogpu/besl/syntax"
)

var (
	output     = flag.String("o", "", "output file, or directory for several inputs (default: stdout)")
	stage      = flag.String("stage", "", "shader stage: vertex, fragment, compute, task, mesh or auto")
	entry      = flag.String("entry", "", "entry function name (default: main)")
	minify     = flag.String("minify", "auto", "minify output: true, false or auto (pretty on a terminal)")
	configPath = flag.String("config", "", "configuration file (default: nearest beslc.yaml)")
	dumpAST    = flag.Bool("ast", false, "print the syntax tree as JSON instead of GLSL")
	verbose    = flag.Bool("v", false, "verbose logging")
	version    = flag.Bool("version", false, "print version")
)

const beslcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("beslc version %s\n", beslcVersion)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inputs := flag.Args()
	if len(inputs) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("loading configuration", "err", err)
		os.Exit(1)
	}

	opts, err := compileOptions(cfg)
	if err != nil {
		logger.Error("invalid options", "err", err)
		os.Exit(1)
	}

	results := make([]string, len(inputs))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			out, err := compileFile(path, opts)
			if err != nil {
				logger.Error("compilation failed", "input", path, "err", err)
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("compiled", "input", path, "bytes", len(out))
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		os.Exit(1)
	}

	if err := writeResults(inputs, results); err != nil {
		logger.Error("writing output", "err", err)
		os.Exit(1)
	}
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, path, err := config.Load(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &config.Config{}, nil
	}
	logger.Debug("using configuration", "path", path)
	return cfg, nil
}

func compileOptions(cfg *config.Config) (besl.CompileOptions, error) {
	merge := config.MergeOptions{Stage: *stage, EntryPoint: *entry}
	switch *minify {
	case "true":
		merge.Minify = boolPtr(true)
	case "false":
		merge.Minify = boolPtr(false)
	case "auto":
		if cfg.Minify == nil {
			toTerminal := *output == "" && term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd fits in int
			merge.Minify = boolPtr(!toTerminal)
		}
	default:
		return besl.CompileOptions{}, fmt.Errorf("invalid -minify value %q", *minify)
	}

	glslOpts, err := cfg.Merge(merge)
	if err != nil {
		return besl.CompileOptions{}, err
	}
	return besl.CompileOptions{
		GLSL:          glslOpts,
		BeforeResolve: besl.BindingTransform(cfg),
	}, nil
}

func compileFile(path string, opts besl.CompileOptions) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var (
		root  *syntax.Scope
		table *syntax.TypeTable
	)
	if strings.HasSuffix(path, ".json") {
		root, table, err = syntax.ParseJSON(data)
	} else {
		var tokens []string
		tokens, err = syntax.Tokenize(string(data))
		if err == nil {
			root, table, err = besl.Parse(tokens)
		}
	}
	if err != nil {
		if srcErr, ok := err.(*syntax.SourceError); ok { //nolint:errorlint // tokenizer errors are not wrapped
			return "", fmt.Errorf("%s", srcErr.FormatWithContext())
		}
		return "", err
	}

	if *dumpAST {
		out, err := syntax.MarshalTree(root)
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	}
	return besl.CompileSyntax(root, table, opts)
}

func writeResults(inputs, results []string) error {
	if *output == "" {
		for _, r := range results {
			if _, err := os.Stdout.WriteString(r); err != nil {
				return err
			}
			if !strings.HasSuffix(r, "\n") {
				fmt.Println()
			}
		}
		return nil
	}

	if len(inputs) == 1 && !strings.HasSuffix(*output, string(os.PathSeparator)) {
		return os.WriteFile(*output, []byte(results[0]), 0o644) //nolint:gosec // G306: shader source is not secret
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		return err
	}
	for i, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".glsl"
		if err := os.WriteFile(filepath.Join(*output, name), []byte(results[i]), 0o644); err != nil { //nolint:gosec // G306: shader source is not secret
			return err
		}
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: beslc [options] <input>...\n\n")
	fmt.Fprintf(os.Stderr, "Compile besl shaders to GLSL.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nSupported stages: %s, %s, %s, %s, %s\n",
		glsl.StageVertex, glsl.StageFragment, glsl.StageCompute, glsl.StageTask, glsl.StageMesh)
}
