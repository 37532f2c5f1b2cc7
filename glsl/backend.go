// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/besl/ir"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES
}

// Common GLSL versions.
var (
	Version450   = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5 / Vulkan
	Version460   = Version{Major: 4, Minor: 60, ES: false} // OpenGL 4.6 / Vulkan
	VersionES320 = Version{Major: 3, Minor: 20, ES: true}  // ES 3.2
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "450").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// ParseVersion parses "450", "460 core" or "320 es".
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Version{}, fmt.Errorf("invalid GLSL version %q", s)
	}
	var n int
	if _, err := fmt.Sscanf(fields[0], "%d", &n); err != nil || n < 100 || n > 999 {
		return Version{}, fmt.Errorf("invalid GLSL version %q", s)
	}
	v := Version{Major: uint8(n / 100), Minor: uint8(n % 100)} //nolint:gosec // G115: range checked above
	if len(fields) == 2 {
		switch fields[1] {
		case "es":
			v.ES = true
		case "core":
		default:
			return Version{}, fmt.Errorf("invalid GLSL profile %q", fields[1])
		}
	}
	return v, nil
}

// Stage is the shader stage being generated.
type Stage uint8

const (
	// StageAuto takes the stage from the entry function's annotation,
	// falling back to vertex.
	StageAuto Stage = iota
	StageVertex
	StageFragment
	StageCompute
	StageTask
	StageMesh
)

var stageNames = [...]string{
	StageAuto:     "auto",
	StageVertex:   "vertex",
	StageFragment: "fragment",
	StageCompute:  "compute",
	StageTask:     "task",
	StageMesh:     "mesh",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", s)
}

// ParseStage maps a stage name to a Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil //nolint:gosec // G115: index of a small array
		}
	}
	return StageAuto, fmt.Errorf("unknown shader stage %q", name)
}

// MatrixLayout is the default memory layout of matrices in uniform and
// buffer blocks.
type MatrixLayout uint8

const (
	RowMajor MatrixLayout = iota
	ColumnMajor
)

func (m MatrixLayout) String() string {
	if m == ColumnMajor {
		return "column_major"
	}
	return "row_major"
}

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagMinify removes unnecessary whitespace.
	WriterFlagMinify WriterFlags = 1 << iota
)

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	LangVersion Version

	// EntryPoint names the function emitted as the shader entry.
	// Defaults to "main" if empty.
	EntryPoint string

	// Stage selects the shader stage.
	Stage Stage

	// LocalSize is the workgroup size of compute and mesh shaders.
	LocalSize [3]uint32

	// MaxVertices and MaxPrimitives bound mesh shader output.
	MaxVertices   uint32
	MaxPrimitives uint32

	// MatrixLayout is the default matrix layout.
	MatrixLayout MatrixLayout

	// WriterFlags control output formatting.
	WriterFlags WriterFlags
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:   Version450,
		EntryPoint:    "main",
		LocalSize:     [3]uint32{1, 1, 1},
		MaxVertices:   64,
		MaxPrimitives: 126,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPoint is the name of the emitted entry function.
	EntryPoint string

	// Stage is the stage the shader was generated for.
	Stage Stage

	// Declarations lists the emitted declarations in output order.
	Declarations []string

	// UsedExtensions lists GLSL extensions required by the shader.
	UsedExtensions []string
}

// Compile generates GLSL source code for the entry point of tree.
func Compile(tree *ir.Tree, options Options) (string, TranslationInfo, error) {
	if tree == nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", &Error{Message: "nil tree"})
	}
	if options.EntryPoint == "" {
		options.EntryPoint = "main"
	}
	if options.LangVersion == (Version{}) {
		options.LangVersion = Version450
	}

	w := newWriter(tree, &options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	return w.out.String(), w.info, nil
}

// MissingEntryPointError reports that the tree has no entry function.
type MissingEntryPointError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("no function named %q", e.Name)
}

// UnresolvedSymbolError reports a name read by a raw code fragment that is
// neither declared in the tree, introduced by another fragment, nor a GLSL
// built-in.
type UnresolvedSymbolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("fragment reads undeclared symbol %q", e.Name)
}

// Error reports a tree shape the generator cannot emit.
type Error struct {
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
