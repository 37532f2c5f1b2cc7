package besl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/besl/config"
	"github.com/gogpu/besl/glsl"
	"github.com/gogpu/besl/ir"
	"github.com/gogpu/besl/syntax"
)

const lightShader = `
Light: struct { position: vec3f, color: vec3f }
main: fn () -> void {
    let position: vec4f = vec4f(0.0, 0.0, 0.0, 1.0);
    position.y = 2.0 * position.x;
}
`

func minifiedOptions() CompileOptions {
	opts := DefaultOptions()
	opts.GLSL.WriterFlags = glsl.WriterFlagMinify
	return opts
}

// TestCompileLight tests the full pipeline on a small vertex shader.
func TestCompileLight(t *testing.T) {
	out, err := Compile(lightShader, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	for _, want := range []string{
		"#version 450 core\n",
		"#pragma shader_stage(vertex)\n",
		"void main() {\n",
		"    vec4 position = vec4(0.0, 0.0, 0.0, 1.0);\n",
		"    position.y = 2.0 * position.x;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "struct Light") {
		t.Error("unused struct Light was emitted")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		prefix string
	}{
		{"tokenize", "main: fn () -> void { $ }", "tokenize error:"},
		{"parse", "main: fn () void {}", "parse error:"},
		{"resolve", "a: Missing;", "resolve error:"},
		{"codegen", "helper: fn () -> void {}", "codegen error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source, DefaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("error = %q, want prefix %q", err, tt.prefix)
			}
		})
	}
}

func TestCompileErrorTypes(t *testing.T) {
	_, err := Compile("a: Missing;", DefaultOptions())
	var typeErr *syntax.NoSuchTypeError
	if !errors.As(err, &typeErr) || typeErr.Name != "Missing" {
		t.Errorf("error = %v, want NoSuchTypeError for Missing", err)
	}

	_, err = Compile("helper: fn () -> void {}", DefaultOptions())
	var missing *glsl.MissingEntryPointError
	if !errors.As(err, &missing) {
		t.Errorf("error = %v, want MissingEntryPointError", err)
	}
}

func TestCompileSyntaxNilRoot(t *testing.T) {
	if _, err := CompileSyntax(nil, nil, DefaultOptions()); err == nil {
		t.Error("CompileSyntax(nil) succeeded, want error")
	}
}

func TestCompileJSON(t *testing.T) {
	root, table, err := syntax.ParseJSON([]byte(`{
		"type": "scope",
		"in_position": {"type": "in", "data_type": "vec3f"},
		"unused": {"type": "in", "data_type": "vec2f"},
		"main": {
			"type": "function",
			"return_type": "void",
			"stage": "vertex",
			"code": "gl_Position = vec4(in_position, 1.0);",
			"inputs": ["in_position", "gl_Position"]
		}
	}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	out, err := CompileSyntax(root, table, minifiedOptions())
	if err != nil {
		t.Fatalf("CompileSyntax failed: %v", err)
	}
	want := "layout(location=0) in vec3 in_position;void main(){gl_Position = vec4(in_position, 1.0);}"
	if !strings.HasSuffix(out, want) {
		t.Errorf("output does not end with %q:\n%s", want, out)
	}
	if strings.Contains(out, "unused") {
		t.Error("unreferenced input was emitted")
	}
}

// =============================================================================
// Transforms
// =============================================================================

func TestBindingTransform(t *testing.T) {
	cfg, err := config.Parse([]byte(`
bindings:
  - name: lights
    kind: buffer
    set: 0
    binding: 1
    read: true
    members:
      - name: colors
        type: vec3f
        count: 16
specializations:
  - name: unused
    type: f32
`))
	if err != nil {
		t.Fatalf("config.Parse failed: %v", err)
	}

	opts := minifiedOptions()
	opts.BeforeResolve = BindingTransform(cfg)
	out, err := Compile("main: fn () -> void { let c: vec3f = lights.colors; }", opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := "layout(set=0,binding=1,scalar) readonly buffer _lights{vec3 colors[16];}lights;" +
		"void main(){vec3 c=lights.colors;}"
	if !strings.HasSuffix(out, want) {
		t.Errorf("output does not end with %q:\n%s", want, out)
	}
	if strings.Contains(out, "constant_id") {
		t.Error("unreferenced specialization was emitted")
	}
}

func TestBindingTransformNilConfig(t *testing.T) {
	opts := minifiedOptions()
	opts.BeforeResolve = BindingTransform(nil)
	if _, err := Compile("main: fn () -> void {}", opts); err != nil {
		t.Errorf("Compile failed: %v", err)
	}
}

func TestTransformConfig(t *testing.T) {
	var seen []any
	opts := minifiedOptions()
	opts.TransformConfig = "settings"
	opts.BeforeResolve = func(root *syntax.Scope, cfg any) (*syntax.Scope, error) {
		seen = append(seen, cfg)
		return root, nil
	}
	opts.AfterResolve = func(tree *ir.Tree, cfg any) (*ir.Tree, error) {
		seen = append(seen, cfg)
		return tree, nil
	}

	if _, err := Compile("main: fn () -> void {}", opts); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != "settings" || seen[1] != "settings" {
		t.Errorf("transforms saw %v, want the config twice", seen)
	}
}

func TestAfterResolveAppend(t *testing.T) {
	opts := minifiedOptions()
	opts.AfterResolve = func(tree *ir.Tree, _ any) (*ir.Tree, error) {
		h := tree.Add(ir.Literal{Name: "SCALE", Body: "2.0"})
		return tree, tree.AppendChild(tree.Root(), h)
	}

	out, err := Compile("main: fn () -> void { x = SCALE; }", opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.HasSuffix(out, "void main(){x=SCALE;}") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTransformContract(t *testing.T) {
	tests := []struct {
		name   string
		before SyntaxTransform
		after  TreeTransform
	}{
		{
			name: "declaration removed",
			before: func(root *syntax.Scope, _ any) (*syntax.Scope, error) {
				return syntax.NewRoot(), nil
			},
		},
		{
			name: "declaration replaced",
			before: func(root *syntax.Scope, _ any) (*syntax.Scope, error) {
				return syntax.NewRoot().Add(
					syntax.NewFunction("helper", nil, "void"),
					syntax.NewFunction("main", nil, "void"),
				), nil
			},
		},
		{
			name: "second main",
			before: func(root *syntax.Scope, _ any) (*syntax.Scope, error) {
				out := syntax.NewRoot().Add(root.Children...)
				return out.Add(syntax.NewFunction("main", nil, "void")), nil
			},
		},
		{
			name: "not a root scope",
			before: func(root *syntax.Scope, _ any) (*syntax.Scope, error) {
				return syntax.NewScope("other", root.Children...), nil
			},
		},
		{
			name: "tree replaced",
			after: func(*ir.Tree, any) (*ir.Tree, error) {
				return ir.NewTree(), nil
			},
		},
		{
			name: "second main after resolution",
			after: func(tree *ir.Tree, _ any) (*ir.Tree, error) {
				void, _ := tree.FindStruct("void")
				h := tree.Add(ir.Function{Name: "main", Return: void})
				return tree, tree.AppendChild(tree.Root(), h)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := minifiedOptions()
			opts.BeforeResolve = tt.before
			opts.AfterResolve = tt.after
			_, err := Compile("helper: fn () -> void {} main: fn () -> void {}", opts)
			if !errors.Is(err, ErrTransformContract) {
				t.Errorf("error = %v, want ErrTransformContract", err)
			}
		})
	}
}

func TestTransformError(t *testing.T) {
	boom := errors.New("boom")
	opts := DefaultOptions()
	opts.BeforeResolve = func(*syntax.Scope, any) (*syntax.Scope, error) {
		return nil, boom
	}
	_, err := Compile("main: fn () -> void {}", opts)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

// =============================================================================
// Stages
// =============================================================================

func TestStages(t *testing.T) {
	tokens, err := syntax.Tokenize(lightShader)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	root, table, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tree, err := Resolve(root, table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	opts := glsl.DefaultOptions()
	opts.Stage = glsl.StageFragment
	out, info, err := Generate(tree, opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "#pragma shader_stage(fragment)") {
		t.Errorf("stage pragma missing:\n%s", out)
	}
	if info.Stage != glsl.StageFragment || len(info.Declarations) != 1 || info.Declarations[0] != "main" {
		t.Errorf("info = %+v", info)
	}
}
