// Package besl provides a shader compiler for the besl shading language.
//
// besl compiles a small declarative shading language to Vulkan GLSL:
//
//	Light: struct { position: vec3f, color: vec3f }
//	main: fn () -> void {
//	    let position: vec4f = vec4f(0.0, 0.0, 0.0, 1.0);
//	    position.y = 2.0 * position.x;
//	}
//
// Compilation runs in three stages, each available on its own:
//   - Parse: tokens to a Syntax Tree whose type references are names
//   - Resolve: names to shared handles in an ir.Tree
//   - Generate: ir.Tree to GLSL, keeping only what the entry point reaches
//
// Example usage:
//
//	source, err := besl.Compile(src, besl.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Programs can be extended between stages with transform hooks, for example
// to inject resource bindings described by a configuration file.
package besl

import (
	"errors"
	"fmt"

	"github.com/gogpu/besl/config"
	"github.com/gogpu/besl/glsl"
	"github.com/gogpu/besl/ir"
	"github.com/gogpu/besl/syntax"
)

// SyntaxTransform extends a Syntax Tree before resolution. The config value
// is CompileOptions.TransformConfig.
type SyntaxTransform func(root *syntax.Scope, config any) (*syntax.Scope, error)

// TreeTransform extends a resolved tree before code generation.
type TreeTransform func(tree *ir.Tree, config any) (*ir.Tree, error)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// GLSL configures code generation.
	GLSL glsl.Options

	// BeforeResolve and AfterResolve run between the compilation stages.
	// A transform may only append declarations, and the result may hold at
	// most one function named main.
	BeforeResolve SyntaxTransform
	AfterResolve  TreeTransform

	// TransformConfig is passed to both transforms.
	TransformConfig any
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{GLSL: glsl.DefaultOptions()}
}

// ErrTransformContract is returned when a transform rewrites or removes
// declarations, or declares a second main function.
var ErrTransformContract = errors.New("transform broke the append-only contract")

// Compile tokenizes and compiles besl source text to GLSL.
func Compile(source string, opts CompileOptions) (string, error) {
	tokens, err := syntax.Tokenize(source)
	if err != nil {
		return "", fmt.Errorf("tokenize error: %w", err)
	}
	return CompileTokens(tokens, opts)
}

// CompileTokens compiles a token stream to GLSL.
//
// The compilation pipeline is:
//  1. Parse tokens to a Syntax Tree
//  2. Run the BeforeResolve transform
//  3. Resolve names to an ir.Tree
//  4. Run the AfterResolve transform
//  5. Generate GLSL
func CompileTokens(tokens []string, opts CompileOptions) (string, error) {
	root, table, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	return CompileSyntax(root, table, opts)
}

// CompileSyntax compiles an already parsed or programmatically built
// Syntax Tree. A nil table means the intrinsic types only.
func CompileSyntax(root *syntax.Scope, table *syntax.TypeTable, opts CompileOptions) (string, error) {
	if root == nil {
		return "", errors.New("compile: nil root scope")
	}
	if opts.BeforeResolve != nil {
		transformed, err := opts.BeforeResolve(root, opts.TransformConfig)
		if err != nil {
			return "", fmt.Errorf("transform error: %w", err)
		}
		if err := checkSyntaxTransform(root.Children, transformed); err != nil {
			return "", fmt.Errorf("transform error: %w", err)
		}
		root = transformed
	}

	tree, err := Resolve(root, table)
	if err != nil {
		return "", err
	}

	if opts.AfterResolve != nil {
		before := tree.RootScope().Children
		transformed, err := opts.AfterResolve(tree, opts.TransformConfig)
		if err != nil {
			return "", fmt.Errorf("transform error: %w", err)
		}
		if err := checkTreeTransform(before, transformed); err != nil {
			return "", fmt.Errorf("transform error: %w", err)
		}
		tree = transformed
	}

	source, _, err := Generate(tree, opts.GLSL)
	return source, err
}

// Parse parses a token stream into a Syntax Tree and its Type Table.
func Parse(tokens []string) (*syntax.Scope, *syntax.TypeTable, error) {
	root, table, err := syntax.Parse(tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("parse error: %w", err)
	}
	return root, table, nil
}

// Resolve converts a Syntax Tree to a resolved tree.
func Resolve(root *syntax.Scope, table *syntax.TypeTable) (*ir.Tree, error) {
	tree, err := syntax.Resolve(root, table)
	if err != nil {
		return nil, fmt.Errorf("resolve error: %w", err)
	}
	return tree, nil
}

// Generate writes GLSL for a resolved tree.
func Generate(tree *ir.Tree, opts glsl.Options) (string, glsl.TranslationInfo, error) {
	source, info, err := glsl.Compile(tree, opts)
	if err != nil {
		return "", glsl.TranslationInfo{}, fmt.Errorf("codegen error: %w", err)
	}
	return source, info, nil
}

// BindingTransform returns a SyntaxTransform appending the resources
// declared in cfg to the root scope.
func BindingTransform(cfg *config.Config) SyntaxTransform {
	return func(root *syntax.Scope, _ any) (*syntax.Scope, error) {
		if cfg == nil {
			return root, nil
		}
		out := &syntax.Scope{Name: root.Name, Children: append([]syntax.Node(nil), root.Children...)}
		out.Children = append(out.Children, cfg.Declarations()...)
		return out, nil
	}
}

func checkSyntaxTransform(before []syntax.Node, after *syntax.Scope) error {
	if after == nil || after.Name != ir.RootName {
		return fmt.Errorf("%w: result is not a root scope", ErrTransformContract)
	}
	if len(after.Children) < len(before) {
		return fmt.Errorf("%w: declarations removed", ErrTransformContract)
	}
	for i, n := range before {
		if after.Children[i] != n {
			return fmt.Errorf("%w: declaration %d replaced", ErrTransformContract, i)
		}
	}
	mains := 0
	for _, n := range after.Children {
		if fn, ok := n.(*syntax.Function); ok && fn.Name == "main" {
			mains++
		}
	}
	if mains > 1 {
		return fmt.Errorf("%w: %d functions named main", ErrTransformContract, mains)
	}
	return nil
}

func checkTreeTransform(before []ir.Handle, after *ir.Tree) error {
	if after == nil {
		return fmt.Errorf("%w: nil tree", ErrTransformContract)
	}
	children := after.RootScope().Children
	if len(children) < len(before) {
		return fmt.Errorf("%w: declarations removed", ErrTransformContract)
	}
	for i, h := range before {
		if children[i] != h {
			return fmt.Errorf("%w: declaration %d replaced", ErrTransformContract, i)
		}
	}
	mains := 0
	for _, h := range after.Declarations() {
		if fn, ok := after.Node(h).(ir.Function); ok && fn.Name == "main" {
			mains++
		}
	}
	if mains > 1 {
		return fmt.Errorf("%w: %d functions named main", ErrTransformContract, mains)
	}
	return nil
}
