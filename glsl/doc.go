// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates Vulkan-flavoured GLSL from a resolved besl tree.
//
// Generation starts at the entry function (main by default), follows every
// reference into a dependency graph, and emits only reachable declarations,
// each after everything it depends on.
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(tree, glsl.DefaultOptions())
//
// # Output Modes
//
// The default output is indented with one declaration per line. With
// WriterFlagMinify set the same declarations are written in the same order
// with all optional whitespace removed.
//
// # Header
//
// Every shader starts with a #version directive, a shader_stage pragma, the
// extensions the generated code relies on (16-bit storage, scalar block
// layout, buffer references, ...), stage-specific layout declarations for
// compute and mesh shaders, the default matrix layout, and a PI constant.
package glsl
