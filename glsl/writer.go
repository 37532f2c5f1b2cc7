// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/besl/ir"
)

// Writer generates GLSL source code from a resolved tree.
type Writer struct {
	tree    *ir.Tree
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int
	minify bool

	stage Stage
	info  TranslationInfo

	// Next free interface locations, input then output.
	locations  [2]uint32
	constantID uint32
}

func newWriter(tree *ir.Tree, options *Options) *Writer {
	return &Writer{
		tree:    tree,
		options: options,
		minify:  options.WriterFlags&WriterFlagMinify != 0,
	}
}

// writeModule writes the complete shader.
func (w *Writer) writeModule() error {
	// 1. Locate the entry function and settle the stage
	entry, err := w.findEntry()
	if err != nil {
		return err
	}
	w.stage = w.resolveStage(entry)
	w.info.EntryPoint = w.options.EntryPoint
	w.info.Stage = w.stage

	// 2. Order reachable declarations
	order, err := newGraph(w.tree).sort(entry)
	if err != nil {
		return err
	}

	// 3. Header
	w.writeHeader()

	// 4. Declarations
	for _, h := range order {
		if err := w.writeDeclaration(h); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) findEntry() (ir.Handle, error) {
	for _, h := range w.tree.Declarations() {
		if fn, ok := w.tree.Node(h).(ir.Function); ok && fn.Name == w.options.EntryPoint {
			return h, nil
		}
	}
	return ir.InvalidHandle, &MissingEntryPointError{Name: w.options.EntryPoint}
}

// resolveStage returns the configured stage, or the first stage annotation
// of the entry function when the configuration leaves it to the source.
func (w *Writer) resolveStage(entry ir.Handle) Stage {
	if w.options.Stage != StageAuto {
		return w.options.Stage
	}
	fn, _ := w.tree.Node(entry).(ir.Function)
	for _, a := range fn.Annotations {
		if s, err := ParseStage(a); err == nil && s != StageAuto {
			return s
		}
	}
	return StageVertex
}

// =============================================================================
// Output helpers
// =============================================================================

// writeLine writes an indented line. Minified output has neither.
func (w *Writer) writeLine(format string, args ...any) {
	if !w.minify {
		w.writeIndent()
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	if !w.minify {
		w.out.WriteByte('\n')
	}
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// sp returns the optional space written around punctuation.
func (w *Writer) sp() string {
	if w.minify {
		return ""
	}
	return " "
}

func (w *Writer) errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func uitoa(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}

// =============================================================================
// Header
// =============================================================================

func (w *Writer) extension(name, behavior string) {
	w.out.WriteString("#extension " + name + ":" + behavior + "\n")
	w.info.UsedExtensions = append(w.info.UsedExtensions, name)
}

// writeHeader writes the version, stage pragma, extensions, stage layout,
// matrix layout and the PI constant. Directives always end in a newline.
func (w *Writer) writeHeader() {
	o := w.options
	fmt.Fprintf(&w.out, "#version %s\n", o.LangVersion)
	fmt.Fprintf(&w.out, "#pragma shader_stage(%s)\n", w.stage)

	w.extension("GL_EXT_shader_16bit_storage", "require")
	w.extension("GL_EXT_shader_explicit_arithmetic_types", "require")
	w.extension("GL_EXT_nonuniform_qualifier", "require")
	w.extension("GL_EXT_scalar_block_layout", "require")
	w.extension("GL_EXT_buffer_reference", "enable")
	w.extension("GL_EXT_buffer_reference2", "enable")
	w.extension("GL_EXT_shader_image_load_formatted", "enable")

	switch w.stage {
	case StageCompute:
		w.extension("GL_KHR_shader_subgroup_basic", "enable")
		w.extension("GL_KHR_shader_subgroup_arithmetic", "enable")
		w.extension("GL_KHR_shader_subgroup_ballot", "enable")
		w.extension("GL_KHR_shader_subgroup_shuffle", "enable")
	case StageMesh:
		w.extension("GL_EXT_mesh_shader", "require")
		fmt.Fprintf(&w.out, "layout(location=0) perprimitiveEXT out uint out_instance_index[%d];\n", o.MaxPrimitives)
		fmt.Fprintf(&w.out, "layout(location=1) perprimitiveEXT out uint out_primitive_index[%d];\n", o.MaxPrimitives)
		fmt.Fprintf(&w.out, "layout(triangles,max_vertices=%d,max_primitives=%d) out;\n", o.MaxVertices, o.MaxPrimitives)
	}

	if w.stage == StageCompute || w.stage == StageMesh {
		size := o.LocalSize
		for i := range size {
			if size[i] == 0 {
				size[i] = 1
			}
		}
		fmt.Fprintf(&w.out, "layout(local_size_x=%d,local_size_y=%d,local_size_z=%d) in;\n", size[0], size[1], size[2])
	}

	fmt.Fprintf(&w.out, "layout(%[1]s) uniform;layout(%[1]s) buffer;\n", o.MatrixLayout)

	w.out.WriteString("const float PI = 3.14159265359;")
	if !w.minify {
		w.out.WriteByte('\n')
	}
}

// =============================================================================
// Declarations
// =============================================================================

// writeDeclaration writes h if its kind is emitted at top level.
func (w *Writer) writeDeclaration(h ir.Handle) error {
	var err error
	name := w.tree.Name(h)
	switch n := w.tree.Node(h).(type) {
	case ir.Function:
		err = w.writeFunction(n)
	case ir.Struct:
		if n.IsInstance() || isReservedStruct(n.Name) {
			return nil
		}
		err = w.writeStruct(n)
	case ir.Binding:
		err = w.writeBinding(n)
	case ir.PushConstant:
		err = w.writePushConstant(n)
	case ir.Specialization:
		err = w.writeSpecialization(n)
	case ir.Member:
		emitted, e := w.writeInterface(n)
		if !emitted || e != nil {
			return e
		}
	default:
		return nil
	}
	if err != nil {
		return err
	}
	w.info.Declarations = append(w.info.Declarations, name)
	return nil
}

func (w *Writer) writeFunction(fn ir.Function) error {
	ret, err := w.typeName(fn.Return)
	if err != nil {
		return fmt.Errorf("function %s: %w", fn.Name, err)
	}

	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		param, ok := w.tree.Node(p).(ir.Parameter)
		if !ok {
			return w.errorf("function %s: parameter handle %d is not a parameter", fn.Name, p)
		}
		t, err := w.typeName(param.Type)
		if err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
		if isSamplerType(t) {
			t = "in " + t
		}
		params = append(params, t+" "+param.Name)
	}

	w.writeLine("%s %s(%s)%s{", ret, fn.Name, strings.Join(params, ","+w.sp()), w.sp())
	w.pushIndent()
	for _, stmt := range fn.Statements {
		text, err := w.expr(stmt)
		if err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
		if text == "" {
			continue
		}
		if !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
			text += ";"
		}
		w.writeLine("%s", text)
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

func (w *Writer) writeMembers(members []ir.Handle) error {
	w.pushIndent()
	defer w.popIndent()
	for _, m := range members {
		decl, err := w.memberDecl(m)
		if err != nil {
			return err
		}
		w.writeLine("%s;", decl)
	}
	return nil
}

func (w *Writer) writeStruct(s ir.Struct) error {
	w.writeLine("struct %s%s{", s.Name, w.sp())
	if err := w.writeMembers(s.Fields); err != nil {
		return fmt.Errorf("struct %s: %w", s.Name, err)
	}
	w.writeLine("};")
	w.writeLine("")
	return nil
}

func (w *Writer) writePushConstant(pc ir.PushConstant) error {
	w.writeLine("layout(push_constant)%suniform PushConstant%s{", w.sp(), w.sp())
	if err := w.writeMembers(pc.Members); err != nil {
		return fmt.Errorf("push constant: %w", err)
	}
	w.writeLine("}%s%s;", w.sp(), ir.PushConstantName)
	w.writeLine("")
	return nil
}

// writeSpecialization writes one constant per field of the specialization
// type and a composite constant assembling them. A scalar type yields a
// single constant.
func (w *Writer) writeSpecialization(spec ir.Specialization) error {
	s, ok := w.tree.Node(spec.Type).(ir.Struct)
	if !ok {
		return w.errorf("specialization %s: type handle %d is not a struct", spec.Name, spec.Type)
	}
	typ, err := w.typeName(spec.Type)
	if err != nil {
		return err
	}
	sp := w.sp()

	if len(s.Fields) == 0 {
		w.writeLine("layout(constant_id=%d)%sconst %s %s%s=%s%s;", w.constantID, sp, typ, spec.Name, sp, sp, specializationDefault(s.Name))
		w.constantID++
		w.writeLine("")
		return nil
	}

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		field, ok := w.tree.Node(f).(ir.Member)
		if !ok {
			return w.errorf("specialization %s: field handle %d is not a member", spec.Name, f)
		}
		fieldType, err := w.typeName(field.Type)
		if err != nil {
			return err
		}
		fieldName := spec.Name + "_" + field.Name
		w.writeLine("layout(constant_id=%d)%sconst %s %s%s=%s%s;", w.constantID, sp, fieldType, fieldName, sp, sp,
			specializationDefault(w.tree.Name(field.Type)))
		w.constantID++
		names = append(names, fieldName)
	}
	w.writeLine("const %s %s%s=%s%s(%s);", typ, spec.Name, sp, sp, typ, strings.Join(names, ","+sp))
	w.writeLine("")
	return nil
}

func (w *Writer) writeBinding(b ir.Binding) error {
	var layout strings.Builder
	fmt.Fprintf(&layout, "layout(set=%d,binding=%d", b.Set, b.Binding)
	switch b.Kind {
	case ir.BindingBuffer:
		layout.WriteString(",scalar")
	case ir.BindingImage:
		if b.Format != "" {
			layout.WriteString("," + b.Format)
		}
	}
	layout.WriteString(") ")

	access := ""
	switch {
	case b.Read && !b.Write:
		access = "readonly "
	case b.Write && !b.Read:
		access = "writeonly "
	}
	suffix := arraySuffix(b.Count)

	switch b.Kind {
	case ir.BindingBuffer:
		w.writeLine("%s%sbuffer _%s%s{", layout.String(), access, b.Name, w.sp())
		if err := w.writeMembers(b.Members); err != nil {
			return fmt.Errorf("binding %s: %w", b.Name, err)
		}
		w.writeLine("}%s%s%s;", w.sp(), b.Name, suffix)
	case ir.BindingImage:
		w.writeLine("%s%suniform %s %s%s;", layout.String(), access, imageType(b.Format), b.Name, suffix)
	case ir.BindingCombinedImageSampler:
		sampler := "sampler2D"
		if b.Format == "ArrayTexture2D" {
			sampler = "sampler2DArray"
		}
		w.writeLine("%suniform %s %s%s;", layout.String(), sampler, b.Name, suffix)
	default:
		return w.errorf("binding %s: unknown kind %s", b.Name, b.Kind)
	}
	w.writeLine("")
	return nil
}

// writeInterface writes a top-level In<T> or Out<T> member as a stage
// input or output. Other members are not emitted.
func (w *Writer) writeInterface(m ir.Member) (bool, error) {
	s, ok := w.tree.Node(m.Type).(ir.Struct)
	if !ok || !s.IsInstance() {
		return false, nil
	}
	dir := 0
	switch w.tree.Name(s.Template) {
	case "In":
	case "Out":
		dir = 1
	default:
		return false, nil
	}

	decl, err := w.memberText(m)
	if err != nil {
		return false, err
	}
	qualifier := ""
	for _, a := range m.Annotations {
		if a == "flat" || a == "noperspective" || a == "smooth" {
			qualifier = a + " "
		}
	}
	storage := [2]string{"in", "out"}[dir]
	w.writeLine("layout(location=%d) %s%s %s;", w.locations[dir], qualifier, storage, decl)
	w.locations[dir]++
	w.writeLine("")
	return true, nil
}
