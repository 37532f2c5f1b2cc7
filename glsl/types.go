// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/besl/ir"
)

// typeNames maps besl type names to GLSL.
var typeNames = map[string]string{
	"void":           "void",
	"bool":           "bool",
	"u8":             "uint8_t",
	"u16":            "uint16_t",
	"u32":            "uint32_t",
	"i32":            "int32_t",
	"f32":            "float",
	"vec2f":          "vec2",
	"vec2u":          "uvec2",
	"vec2i":          "ivec2",
	"vec2u16":        "u16vec2",
	"vec3f":          "vec3",
	"vec3u":          "uvec3",
	"vec3i":          "ivec3",
	"vec4f":          "vec4",
	"vec4u":          "uvec4",
	"mat2f":          "mat2",
	"mat3f":          "mat3",
	"mat4f":          "mat4",
	"Texture2D":      "sampler2D",
	"ArrayTexture2D": "sampler2DArray",
}

// reservedStructs are built-in types never emitted as struct definitions.
var reservedStructs = map[string]struct{}{
	"In": {}, "Out": {}, "PushConstant": {},
}

// translateType returns the GLSL spelling of a besl type name. Unknown
// names are returned unchanged.
func translateType(name string) string {
	if t, ok := typeNames[name]; ok {
		return t
	}
	return name
}

// isReservedStruct reports whether a struct name is a built-in type.
func isReservedStruct(name string) bool {
	if _, ok := typeNames[name]; ok {
		return true
	}
	_, ok := reservedStructs[name]
	return ok
}

// isSamplerType reports whether a GLSL type is an opaque sampler.
func isSamplerType(glslType string) bool {
	return strings.HasPrefix(glslType, "sampler")
}

// typeName returns the GLSL type for a struct handle. Generic instances
// are written as their argument; synthesized pointer structs as the
// pointee name.
func (w *Writer) typeName(h ir.Handle) (string, error) {
	s, ok := w.tree.Node(h).(ir.Struct)
	if !ok {
		return "", w.errorf("handle %d is not a type", h)
	}
	if s.IsInstance() {
		if len(s.Types) == 1 {
			return w.typeName(s.Types[0])
		}
		return strings.TrimSuffix(s.Name, "*"), nil
	}
	return translateType(s.Name), nil
}

// memberDecl returns "type name" with an array suffix for a Member handle.
func (w *Writer) memberDecl(h ir.Handle) (string, error) {
	m, ok := w.tree.Node(h).(ir.Member)
	if !ok {
		return "", w.errorf("handle %d is not a member", h)
	}
	return w.memberText(m)
}

func (w *Writer) memberText(m ir.Member) (string, error) {
	t, err := w.typeName(m.Type)
	if err != nil {
		return "", err
	}
	return t + " " + m.Name + arraySuffix(m.Count), nil
}

func arraySuffix(count uint32) string {
	if count == 0 {
		return ""
	}
	return "[" + uitoa(count) + "]"
}

// imageType returns the GLSL image type for a texel format.
func imageType(format string) string {
	switch format {
	case "r8ui", "r16ui", "r32ui", "rgba8ui", "rgba16ui", "rgba32ui":
		return "uimage2D"
	default:
		return "image2D"
	}
}

// specializationDefault returns the default value of a specialization
// constant of the given besl scalar type.
func specializationDefault(typ string) string {
	switch typ {
	case "u8", "u16", "u32":
		return "1u"
	case "i32":
		return "1"
	case "bool":
		return "true"
	default:
		return "1.0f"
	}
}
