package ir

import "fmt"

// Handle references a node in a Tree arena.
type Handle uint32

// InvalidHandle marks an absent or unresolved reference.
const InvalidHandle Handle = ^Handle(0)

// Valid reports whether h refers to a node.
func (h Handle) Valid() bool {
	return h != InvalidHandle
}

// RootName is the name of the root scope of every tree.
const RootName = "root"

// NodeInner is implemented by every node kind.
type NodeInner interface {
	nodeInner()
}

// Scope groups declarations.
type Scope struct {
	Name     string
	Children []Handle
}

func (Scope) nodeInner() {}

// Struct is a structure type. Template is set for generic instantiations
// (the outer type) and for synthesized pointer structs; Types holds the
// instantiation arguments.
type Struct struct {
	Name     string
	Template Handle
	Fields   []Handle
	Types    []Handle
}

func (Struct) nodeInner() {}

// IsInstance reports whether the struct was produced by generic instantiation.
func (s Struct) IsInstance() bool {
	return s.Template.Valid()
}

// Member is a struct field or a free-standing typed declaration.
// Count is the array length, zero for scalars.
type Member struct {
	Name        string
	Type        Handle
	Count       uint32
	Annotations []string
}

func (Member) nodeInner() {}

// Function is a function declaration.
type Function struct {
	Name        string
	Params      []Handle
	Return      Handle
	Statements  []Handle
	Annotations []string
}

func (Function) nodeInner() {}

// Parameter is a function or intrinsic parameter.
type Parameter struct {
	Name string
	Type Handle
}

func (Parameter) nodeInner() {}

// BindingKind selects the resource class of a binding.
type BindingKind uint8

const (
	BindingBuffer BindingKind = iota
	BindingImage
	BindingCombinedImageSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingBuffer:
		return "buffer"
	case BindingImage:
		return "image"
	case BindingCombinedImageSampler:
		return "combined_image_sampler"
	default:
		return fmt.Sprintf("BindingKind(%d)", k)
	}
}

// Binding is a descriptor-set resource. Members is used by buffers,
// Format by images and combined image samplers.
type Binding struct {
	Name    string
	Kind    BindingKind
	Members []Handle
	Format  string
	Set     uint32
	Binding uint32
	Read    bool
	Write   bool
	Count   uint32
}

func (Binding) nodeInner() {}

// PushConstant is the push constant block.
type PushConstant struct {
	Members []Handle
}

func (PushConstant) nodeInner() {}

// PushConstantName is the instance name under which the push constant block
// is visible to expressions.
const PushConstantName = "push_constant"

// Specialization is a specialization constant of a struct type.
type Specialization struct {
	Name string
	Type Handle
}

func (Specialization) nodeInner() {}

// Fragment is raw target-language code. Inputs name the declarations the
// code reads, Outputs the names it introduces.
type Fragment struct {
	Code    string
	Inputs  []string
	Outputs []string
}

func (Fragment) nodeInner() {}

// Intrinsic is an inlined helper whose body is substituted at each call.
type Intrinsic struct {
	Name   string
	Params []Handle
	Body   []Handle
	Return Handle
}

func (Intrinsic) nodeInner() {}

// Literal is a named constant emitted inline at every use.
type Literal struct {
	Name string
	Body string
}

func (Literal) nodeInner() {}

// Null is an empty placeholder.
type Null struct{}

func (Null) nodeInner() {}

// Sentence is a sequence of expressions emitted back to back.
type Sentence struct {
	Elements []Handle
}

func (Sentence) nodeInner() {}

// Accessor is a field access, Left.Right.
type Accessor struct {
	Left  Handle
	Right Handle
}

func (Accessor) nodeInner() {}

// MemberExpr references a named value. Source is the declaration it
// resolved to, or InvalidHandle for target built-ins and swizzles.
type MemberExpr struct {
	Name   string
	Source Handle
}

func (MemberExpr) nodeInner() {}

// LiteralExpr is a literal value as written.
type LiteralExpr struct {
	Value string
}

func (LiteralExpr) nodeInner() {}

// Call is a call to a function, a struct constructor or a built-in.
// Target is InvalidHandle for built-ins.
type Call struct {
	Name   string
	Target Handle
	Params []Handle
}

func (Call) nodeInner() {}

// IntrinsicCall is an intrinsic body with parameters substituted.
type IntrinsicCall struct {
	Intrinsic Handle
	Elements  []Handle
}

func (IntrinsicCall) nodeInner() {}

// OperatorExpr is a binary operation.
type OperatorExpr struct {
	Op    Operator
	Left  Handle
	Right Handle
}

func (OperatorExpr) nodeInner() {}

// VarDecl declares a local variable.
type VarDecl struct {
	Name string
	Type Handle
}

func (VarDecl) nodeInner() {}

// Macro is a preprocessor-level marker. It emits nothing.
type Macro struct {
	Name string
	Body string
}

func (Macro) nodeInner() {}

// Return is a return statement. Value is InvalidHandle for a bare return.
type Return struct {
	Value Handle
}

func (Return) nodeInner() {}
