// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// glslBuiltins contains GLSL names a raw code fragment may read without a
// declaration: built-in types used as constructors and built-in functions.
// Built-in variables are matched by their gl_ prefix.
var glslBuiltins = map[string]struct{}{
	// Scalar and vector types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"u16vec2": {}, "u16vec3": {}, "u16vec4": {},
	"uint8_t": {}, "uint16_t": {}, "uint32_t": {}, "int32_t": {}, "float16_t": {},

	// Matrix types
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},

	// Angle and trigonometry
	"radians": {}, "degrees": {}, "sin": {}, "cos": {}, "tan": {},
	"asin": {}, "acos": {}, "atan": {}, "sinh": {}, "cosh": {}, "tanh": {},

	// Exponential
	"pow": {}, "exp": {}, "log": {}, "exp2": {}, "log2": {}, "sqrt": {}, "inversesqrt": {},

	// Common
	"abs": {}, "sign": {}, "floor": {}, "trunc": {}, "round": {}, "ceil": {}, "fract": {},
	"mod": {}, "min": {}, "max": {}, "clamp": {}, "mix": {}, "step": {}, "smoothstep": {},
	"isnan": {}, "isinf": {}, "fma": {},
	"floatBitsToInt": {}, "floatBitsToUint": {}, "intBitsToFloat": {}, "uintBitsToFloat": {},
	"packUnorm4x8": {}, "unpackUnorm4x8": {}, "packHalf2x16": {}, "unpackHalf2x16": {},

	// Geometry
	"length": {}, "distance": {}, "dot": {}, "cross": {}, "normalize": {},
	"faceforward": {}, "reflect": {}, "refract": {},

	// Matrix
	"matrixCompMult": {}, "outerProduct": {}, "transpose": {}, "determinant": {}, "inverse": {},

	// Vector relational
	"lessThan": {}, "lessThanEqual": {}, "greaterThan": {}, "greaterThanEqual": {},
	"equal": {}, "notEqual": {}, "any": {}, "all": {}, "not": {},

	// Integer
	"bitCount": {}, "findLSB": {}, "findMSB": {}, "bitfieldExtract": {}, "bitfieldInsert": {},

	// Texture and image
	"texture": {}, "textureLod": {}, "textureGrad": {}, "textureOffset": {}, "texelFetch": {},
	"textureSize": {}, "textureGather": {}, "textureQueryLevels": {},
	"imageLoad": {}, "imageStore": {}, "imageSize": {},
	"imageAtomicAdd": {}, "imageAtomicMin": {}, "imageAtomicMax": {},

	// Derivatives
	"dFdx": {}, "dFdy": {}, "fwidth": {},

	// Atomics and barriers
	"atomicAdd": {}, "atomicMin": {}, "atomicMax": {}, "atomicAnd": {}, "atomicOr": {},
	"atomicXor": {}, "atomicExchange": {}, "atomicCompSwap": {},
	"barrier": {}, "memoryBarrier": {}, "memoryBarrierShared": {}, "groupMemoryBarrier": {},

	// Subgroups and mesh shading
	"subgroupAdd": {}, "subgroupBallot": {}, "subgroupBroadcastFirst": {}, "subgroupElect": {},
	"subgroupShuffle": {}, "SetMeshOutputsEXT": {}, "EmitMeshTasksEXT": {},
	"nonuniformEXT": {},

	// Emitted by the header
	"PI": {}, "out_instance_index": {}, "out_primitive_index": {},
}

// isBuiltin reports whether name is provided by GLSL or the generated
// header.
func isBuiltin(name string) bool {
	if strings.HasPrefix(name, "gl_") {
		return true
	}
	_, ok := glslBuiltins[name]
	return ok
}
