// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/besl/syntax"
)

// =============================================================================
// Functions and structs
// =============================================================================

func TestStructAndFunction(t *testing.T) {
	src := `
		Vertex: struct { position: vec3f, normal: vec3f }
		use_vertex: fn () -> Vertex {}
		main: fn () -> void { use_vertex(); }`
	out, info := compileSource(t, src, minified())

	want := "struct Vertex{vec3 position;vec3 normal;};Vertex use_vertex(){}void main(){use_vertex();}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if got := strings.Join(info.Declarations, " "); got != "Vertex use_vertex main" {
		t.Errorf("Declarations = %q", got)
	}
}

func TestDeadCodeElimination(t *testing.T) {
	src := `
		not_used: fn () -> void {}
		used_by_used: fn () -> void {}
		used: fn () -> void { used_by_used(); }
		main: fn () -> void { used(); }`
	out, _ := compileSource(t, src, minified())

	want := "void used_by_used(){}void used(){used_by_used();}void main(){used();}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if strings.Contains(out, "not_used") {
		t.Error("unreachable function was emitted")
	}
}

func TestSharedDependencyEmittedOnce(t *testing.T) {
	src := `
		Light: struct { color: vec3f }
		a: fn () -> Light {}
		b: fn () -> Light {}
		main: fn () -> void { a(); b(); }`
	out, _ := compileSource(t, src, minified())

	if n := strings.Count(out, "struct Light"); n != 1 {
		t.Errorf("struct Light emitted %d times, want 1", n)
	}
	want := "struct Light{vec3 color;};Light a(){}Light b(){}void main(){a();b();}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestReservedStructsNotEmitted(t *testing.T) {
	src := `
		position: In<vec3f>;
		main: fn () -> void { let p: vec4f = vec4f(position, 1.0); }`
	out, _ := compileSource(t, src, minified())

	for _, name := range []string{"struct In", "struct vec3f", "struct vec4f", "struct f32", "struct void"} {
		if strings.Contains(out, name) {
			t.Errorf("output declares built-in type %q:\n%s", name, out)
		}
	}
}

func TestLocalVariable(t *testing.T) {
	out, _ := compileSource(t, "main: fn () -> void { let albedo: vec3f = vec3f(1.0, 0.0, 0.0); }", minified())

	want := "void main(){vec3 albedo=vec3(1.0,0.0,0.0);}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestFieldAccess(t *testing.T) {
	src := `main: fn () -> void {
		let position: vec4f = vec4f(0.0, 0.0, 0.0, 1.0);
		position.y = 2.0 * position.x;
	}`
	out, _ := compileSource(t, src, minified())

	want := "void main(){vec4 position=vec4(0.0,0.0,0.0,1.0);position.y=2.0*position.x;}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestReturnStatement(t *testing.T) {
	src := "halve: fn () -> f32 { return 1.0 / 2.0; } main: fn () -> void { let h: f32 = halve(); return; }"
	out, _ := compileSource(t, src, minified())

	want := "float halve(){return 1.0/2.0;}void main(){float h=halve();return;}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestSamplerParameter(t *testing.T) {
	root := syntax.NewRoot().Add(
		syntax.NewFunction("sample", []*syntax.Parameter{syntax.NewParameter("tex", "Texture2D")}, "vec4f"),
		syntax.NewFunction("main", nil, "void", syntax.NewCall("sample", syntax.NewMemberExpr("albedo"))),
	)
	out, _ := compileRoot(t, root, nil, minified())

	if !strings.Contains(out, "vec4 sample(in sampler2D tex){}") {
		t.Errorf("sampler parameter not qualified:\n%s", out)
	}
}

// =============================================================================
// Expressions
// =============================================================================

func op(name string, left, right syntax.Node) syntax.Node {
	return &syntax.Operator{Name: name, Left: left, Right: right}
}

func ref(name string) syntax.Node {
	return syntax.NewMemberExpr(name)
}

func TestOperatorParentheses(t *testing.T) {
	tests := []struct {
		name string
		expr syntax.Node
		want string
	}{
		{"looser child", op("*", op("+", ref("a"), ref("b")), ref("c")), "(a+b)*c"},
		{"tighter child", op("+", ref("a"), op("*", ref("b"), ref("c"))), "a+b*c"},
		{"left associative", op("-", op("-", ref("a"), ref("b")), ref("c")), "a-b-c"},
		{"right operand", op("-", ref("a"), op("-", ref("b"), ref("c"))), "a-(b-c)"},
		{"right associative", op("=", ref("a"), op("=", ref("b"), ref("c"))), "a=b=c"},
		{"assignment of sum", op("=", ref("a"), op("+", ref("b"), ref("c"))), "a=b+c"},
		{"equality", op("==", op("%", ref("a"), &syntax.LiteralExpr{Value: "2u"}), &syntax.LiteralExpr{Value: "0u"}), "a%2u==0u"},
		{"negative operand", op("-", ref("a"), &syntax.LiteralExpr{Value: "-2.0"}), "a- -2.0"},
		{"signed operand", op("+", ref("a"), &syntax.LiteralExpr{Value: "+1"}), "a+ +1"},
		{"mixed signs", op("-", ref("a"), &syntax.LiteralExpr{Value: "+1"}), "a-+1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := syntax.NewRoot().Add(syntax.NewFunction("main", nil, "void", tt.expr))
			out, _ := compileRoot(t, root, nil, minified())
			want := "void main(){" + tt.want + ";}"
			if got := body(t, out); got != want {
				t.Errorf("body = %q, want %q", got, want)
			}
		})
	}
}

func TestNegativeLiteralOperand(t *testing.T) {
	src := "main: fn () -> void { let a: f32 = 1.0 - -2.0; }"

	mini, _ := compileSource(t, src, minified())
	if got, want := body(t, mini), "void main(){float a=1.0- -2.0;}"; got != want {
		t.Errorf("minified body = %q, want %q", got, want)
	}

	pretty, _ := compileSource(t, src, DefaultOptions())
	if !strings.Contains(pretty, "    float a = 1.0 - -2.0;\n") {
		t.Errorf("pretty output missing the subtraction:\n%s", pretty)
	}
	if stripWhitespace(pretty) != stripWhitespace(mini) {
		t.Errorf("outputs differ beyond whitespace:\npretty:\n%s\nminified:\n%s", pretty, mini)
	}
}

func TestLiteralReference(t *testing.T) {
	root := syntax.NewRoot().Add(
		syntax.NewLiteral("ONE", "1.0"),
		syntax.NewFunction("main", nil, "void", op("=", ref("x"), ref("ONE"))),
	)
	out, _ := compileRoot(t, root, nil, minified())

	if got := body(t, out); got != "void main(){x=1.0;}" {
		t.Errorf("body = %q, want %q", got, "void main(){x=1.0;}")
	}
}

func TestIntrinsicExpansion(t *testing.T) {
	root := syntax.NewRoot().Add(
		syntax.NewIntrinsic("splat",
			[]*syntax.Parameter{syntax.NewParameter("v", "f32")},
			[]syntax.Node{syntax.NewCall("vec3f", ref("v"), ref("v"), ref("v"))},
			"vec3f"),
	)
	main, _, err := syntax.Parse(mustTokenize(t, "main: fn () -> void { let n: f32 = splat(0.5).y; }"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root.Add(main.Children...)

	out, _ := compileRoot(t, root, nil, minified())
	want := "void main(){float n=vec3(0.5,0.5,0.5).y;}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestSentenceAndMacro(t *testing.T) {
	root := syntax.NewRoot().Add(syntax.NewFunction("main", nil, "void",
		syntax.NewSentence(ref("barrier"), &syntax.LiteralExpr{Value: "()"}),
		syntax.NewMacro("DEBUG", "1"),
	))
	out, _ := compileRoot(t, root, nil, minified())

	if got := body(t, out); got != "void main(){barrier();}" {
		t.Errorf("body = %q, want %q", got, "void main(){barrier();}")
	}
}

func mustTokenize(t *testing.T, src string) []string {
	t.Helper()
	tokens, err := syntax.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	return tokens
}

// =============================================================================
// Resources
// =============================================================================

func TestResources(t *testing.T) {
	tests := []struct {
		name string
		decl syntax.Node
		ref  string
		want string
	}{
		{
			name: "buffer",
			decl: syntax.NewBinding("buff", syntax.NewBuffer(syntax.NewMember("member", "f32")), 0, 0, true, true),
			ref:  "buff",
			want: "layout(set=0,binding=0,scalar) buffer _buff{float member;}buff;",
		},
		{
			name: "readonly buffer array",
			decl: syntax.NewBindingArray("meshes", syntax.NewBuffer(syntax.NewArrayMember("ids", "u32", 4)), 0, 1, true, false, 8),
			ref:  "meshes",
			want: "layout(set=0,binding=1,scalar) readonly buffer _meshes{uint32_t ids[4];}meshes[8];",
		},
		{
			name: "image",
			decl: syntax.NewBinding("image", syntax.NewImage("r8"), 0, 1, false, true),
			ref:  "image",
			want: "layout(set=0,binding=1,r8) writeonly uniform image2D image;",
		},
		{
			name: "unsigned image",
			decl: syntax.NewBinding("ids", syntax.NewImage("r32ui"), 0, 3, true, false),
			ref:  "ids",
			want: "layout(set=0,binding=3,r32ui) readonly uniform uimage2D ids;",
		},
		{
			name: "combined image sampler",
			decl: syntax.NewBinding("texture", syntax.NewCombinedImageSampler(""), 1, 0, true, false),
			ref:  "texture",
			want: "layout(set=1,binding=0) uniform sampler2D texture;",
		},
		{
			name: "texture array",
			decl: syntax.NewBindingArray("layers", syntax.NewCombinedImageSampler("ArrayTexture2D"), 0, 2, true, false, 16),
			ref:  "layers",
			want: "layout(set=0,binding=2) uniform sampler2DArray layers[16];",
		},
		{
			name: "push constant",
			decl: syntax.NewPushConstant(syntax.NewMember("material_id", "u32")),
			ref:  "push_constant",
			want: "layout(push_constant)uniform PushConstant{uint32_t material_id;}push_constant;",
		},
		{
			name: "vector specialization",
			decl: syntax.NewSpecialization("color", "vec3f"),
			ref:  "color",
			want: "layout(constant_id=0)const float color_x=1.0f;" +
				"layout(constant_id=1)const float color_y=1.0f;" +
				"layout(constant_id=2)const float color_z=1.0f;" +
				"const vec3 color=vec3(color_x,color_y,color_z);",
		},
		{
			name: "scalar specialization",
			decl: syntax.NewSpecialization("count", "u32"),
			ref:  "count",
			want: "layout(constant_id=0)const uint32_t count=1u;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := syntax.NewRoot().Add(
				tt.decl,
				syntax.NewFunction("main", nil, "void", syntax.NewFragment("", []string{tt.ref}, nil)),
			)
			out, _ := compileRoot(t, root, nil, minified())
			want := tt.want + "void main(){}"
			if got := body(t, out); got != want {
				t.Errorf("body = %q, want %q", got, want)
			}
		})
	}
}

func TestUnreferencedResourcesDropped(t *testing.T) {
	root := syntax.NewRoot().Add(
		syntax.NewBinding("buff", syntax.NewBuffer(syntax.NewMember("member", "f32")), 0, 0, true, true),
		syntax.NewPushConstant(syntax.NewMember("material_id", "u32")),
		syntax.NewFunction("main", nil, "void"),
	)
	out, _ := compileRoot(t, root, nil, minified())

	if got := body(t, out); got != "void main(){}" {
		t.Errorf("body = %q, want %q", got, "void main(){}")
	}
}

func TestSpecializationIDsAreModuleWide(t *testing.T) {
	root := syntax.NewRoot().Add(
		syntax.NewSpecialization("color", "vec3f"),
		syntax.NewSpecialization("count", "u32"),
		syntax.NewSpecialization("enabled", "bool"),
		syntax.NewFunction("main", nil, "void", syntax.NewFragment("", []string{"color", "count", "enabled"}, nil)),
	)
	out, _ := compileRoot(t, root, nil, minified())

	for _, want := range []string{
		"layout(constant_id=2)const float color_z=1.0f;",
		"layout(constant_id=3)const uint32_t count=1u;",
		"layout(constant_id=4)const bool enabled=true;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLateBoundDeclaration(t *testing.T) {
	// main is declared before the binding it reads.
	root := syntax.NewRoot().Add(
		syntax.NewFunction("main", nil, "void", op("=", ref("x"), ref("buff"))),
		syntax.NewBinding("buff", syntax.NewBuffer(syntax.NewMember("member", "f32")), 0, 0, true, true),
	)
	out, _ := compileRoot(t, root, nil, minified())

	want := "layout(set=0,binding=0,scalar) buffer _buff{float member;}buff;void main(){x=buff;}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestStageInterface(t *testing.T) {
	src := `
		#[flat] id: In<u32>;
		color: Out<vec4f>;
		main: fn () -> void {
			color = vec4f(1.0, 1.0, 1.0, 1.0);
			let i: u32 = id;
		}`
	out, _ := compileSource(t, src, minified())

	want := "layout(location=0) out vec4 color;" +
		"layout(location=0) flat in uint32_t id;" +
		"void main(){color=vec4(1.0,1.0,1.0,1.0);uint32_t i=id;}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

// =============================================================================
// Formatting
// =============================================================================

const formattingProgram = `
	Vertex: struct { position: vec3f, normal: vec3f }
	#[flat] id: In<u32>;
	use_vertex: fn () -> Vertex { return Vertex(); }
	main: fn () -> void {
		let v: Vertex = use_vertex();
		let p: vec4f = vec4f(v.position, 1.0);
		p.x = p.y * 2.0 + 1.0;
	}`

func TestPrettyMatchesMinified(t *testing.T) {
	pretty, _ := compileSource(t, formattingProgram, DefaultOptions())
	mini, _ := compileSource(t, formattingProgram, minified())

	if stripWhitespace(pretty) != stripWhitespace(mini) {
		t.Errorf("outputs differ beyond whitespace:\npretty:\n%s\nminified:\n%s", pretty, mini)
	}
	if len(mini) >= len(pretty) {
		t.Errorf("minified output (%d bytes) is not shorter than pretty output (%d bytes)", len(mini), len(pretty))
	}
}

func TestPrettyOutput(t *testing.T) {
	out, _ := compileSource(t, formattingProgram, DefaultOptions())

	for _, want := range []string{
		"struct Vertex {\n    vec3 position;\n    vec3 normal;\n};\n\n",
		"Vertex use_vertex() {\n    return Vertex();\n}\n\n",
		"    vec4 p = vec4(v.position, 1.0);\n",
		"    p.x = p.y * 2.0 + 1.0;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q:\n%s", want, out)
		}
	}
}

func TestMutualCallsTerminate(t *testing.T) {
	src := `
		a: fn () -> void { b(); }
		b: fn () -> void { a(); }
		main: fn () -> void { a(); }`
	out, _ := compileSource(t, src, minified())

	want := "void b(){a();}void a(){b();}void main(){a();}"
	if got := body(t, out); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
