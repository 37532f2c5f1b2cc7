package syntax

// Node is implemented by every Syntax Tree node.
type Node interface {
	node()
}

// Scope groups declarations. The tree returned by Parse is a Scope named
// "root".
type Scope struct {
	Name     string
	Children []Node
}

// Struct declares a structure type.
type Struct struct {
	Name        string
	Fields      []*Member
	Annotations []string
}

// Member is a struct field or a free-standing typed declaration. Type is a
// type name, possibly a single-parameter generic such as "In<vec4f>".
// Count is the array length for "T[N]" members, zero otherwise.
type Member struct {
	Name        string
	Type        string
	Count       uint32
	Annotations []string
}

// Function declares a function.
type Function struct {
	Name        string
	Params      []*Parameter
	Return      string
	Statements  []Node
	Annotations []string
}

// Parameter is a function or intrinsic parameter.
type Parameter struct {
	Name string
	Type string
}

// BindingType is the resource class of a Binding: *Buffer, *Image or
// *CombinedImageSampler.
type BindingType interface {
	bindingType()
}

// Buffer is a storage buffer resource.
type Buffer struct {
	Members []*Member
}

// Image is a storage image resource with a texel format such as "rgba8".
type Image struct {
	Format string
}

// CombinedImageSampler is a sampled texture. Format is "Texture2D" or
// "ArrayTexture2D".
type CombinedImageSampler struct {
	Format string
}

// Binding declares a descriptor-set resource.
type Binding struct {
	Name       string
	Type       BindingType
	Set        uint32
	Descriptor uint32
	Read       bool
	Write      bool
	Count      uint32
}

// Specialization declares a specialization constant of a struct type.
type Specialization struct {
	Name string
	Type string
}

// PushConstant declares the push constant block.
type PushConstant struct {
	Members []*Member
}

// Fragment is raw target-language code. Inputs name the declarations the
// code reads; Outputs the names it introduces for later code.
type Fragment struct {
	Code    string
	Inputs  []string
	Outputs []string
}

// Intrinsic is a helper whose body is inlined at every call site with its
// parameters replaced by the call arguments.
type Intrinsic struct {
	Name   string
	Params []*Parameter
	Body   []Node
	Return string
}

// Literal is a named constant expanded inline at every use.
type Literal struct {
	Name string
	Body string
}

// Null is an empty placeholder.
type Null struct{}

// Sentence is a sequence of expressions emitted back to back.
type Sentence struct {
	Elements []Node
}

// Accessor is a field access, Left.Right.
type Accessor struct {
	Left  Node
	Right Node
}

// MemberExpr references a value by name.
type MemberExpr struct {
	Name string
}

// LiteralExpr is a literal value as written.
type LiteralExpr struct {
	Value string
}

// Call is a call expression.
type Call struct {
	Name   string
	Params []Node
}

// Operator is a binary operation named by its symbol.
type Operator struct {
	Name  string
	Left  Node
	Right Node
}

// VarDecl declares a local variable.
type VarDecl struct {
	Name string
	Type string
}

// Macro is a preprocessor-level marker.
type Macro struct {
	Name string
	Body string
}

// Return is a return statement with an optional value.
type Return struct {
	Value Node
}

func (*Scope) node()          {}
func (*Struct) node()         {}
func (*Member) node()         {}
func (*Function) node()       {}
func (*Parameter) node()      {}
func (*Binding) node()        {}
func (*Specialization) node() {}
func (*PushConstant) node()   {}
func (*Fragment) node()       {}
func (*Intrinsic) node()      {}
func (*Literal) node()        {}
func (*Null) node()           {}
func (*Sentence) node()       {}
func (*Accessor) node()       {}
func (*MemberExpr) node()     {}
func (*LiteralExpr) node()    {}
func (*Call) node()           {}
func (*Operator) node()       {}
func (*VarDecl) node()        {}
func (*Macro) node()          {}
func (*Return) node()         {}

func (*Buffer) bindingType()               {}
func (*Image) bindingType()                {}
func (*CombinedImageSampler) bindingType() {}

// Add appends children to the scope and returns it.
func (s *Scope) Add(children ...Node) *Scope {
	s.Children = append(s.Children, children...)
	return s
}

// Child returns the first direct child declared under name.
func (s *Scope) Child(name string) (Node, bool) {
	for _, c := range s.Children {
		if NameOf(c) == name {
			return c, true
		}
	}
	return nil, false
}

// NameOf returns the declared name of a node, or "".
func NameOf(n Node) string {
	switch n := n.(type) {
	case *Scope:
		return n.Name
	case *Struct:
		return n.Name
	case *Member:
		return n.Name
	case *Function:
		return n.Name
	case *Parameter:
		return n.Name
	case *Binding:
		return n.Name
	case *Specialization:
		return n.Name
	case *PushConstant:
		return "push_constant"
	case *Intrinsic:
		return n.Name
	case *Literal:
		return n.Name
	case *VarDecl:
		return n.Name
	case *MemberExpr:
		return n.Name
	case *Call:
		return n.Name
	case *Macro:
		return n.Name
	default:
		return ""
	}
}

// NewScope creates a scope.
func NewScope(name string, children ...Node) *Scope {
	return &Scope{Name: name, Children: children}
}

// NewRoot creates an empty root scope.
func NewRoot() *Scope {
	return &Scope{Name: "root"}
}

// NewStruct creates a struct declaration.
func NewStruct(name string, fields ...*Member) *Struct {
	return &Struct{Name: name, Fields: fields}
}

// NewMember creates a member of the named type.
func NewMember(name, typ string) *Member {
	return &Member{Name: name, Type: typ}
}

// NewArrayMember creates a member holding count elements of typ.
func NewArrayMember(name, typ string, count uint32) *Member {
	return &Member{Name: name, Type: typ, Count: count}
}

// NewFunction creates a function declaration.
func NewFunction(name string, params []*Parameter, returnType string, statements ...Node) *Function {
	return &Function{Name: name, Params: params, Return: returnType, Statements: statements}
}

// NewParameter creates a parameter.
func NewParameter(name, typ string) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

// NewBinding creates a single binding.
func NewBinding(name string, typ BindingType, set, descriptor uint32, read, write bool) *Binding {
	return &Binding{Name: name, Type: typ, Set: set, Descriptor: descriptor, Read: read, Write: write}
}

// NewBindingArray creates a binding holding count descriptors.
func NewBindingArray(name string, typ BindingType, set, descriptor uint32, read, write bool, count uint32) *Binding {
	b := NewBinding(name, typ, set, descriptor, read, write)
	b.Count = count
	return b
}

// NewBuffer creates a buffer binding type.
func NewBuffer(members ...*Member) *Buffer {
	return &Buffer{Members: members}
}

// NewImage creates a storage image binding type.
func NewImage(format string) *Image {
	return &Image{Format: format}
}

// NewCombinedImageSampler creates a sampled texture binding type.
func NewCombinedImageSampler(format string) *CombinedImageSampler {
	return &CombinedImageSampler{Format: format}
}

// NewSpecialization creates a specialization constant.
func NewSpecialization(name, typ string) *Specialization {
	return &Specialization{Name: name, Type: typ}
}

// NewPushConstant creates a push constant block.
func NewPushConstant(members ...*Member) *PushConstant {
	return &PushConstant{Members: members}
}

// NewFragment creates a raw code fragment.
func NewFragment(code string, inputs, outputs []string) *Fragment {
	return &Fragment{Code: code, Inputs: inputs, Outputs: outputs}
}

// NewIntrinsic creates an intrinsic.
func NewIntrinsic(name string, params []*Parameter, body []Node, returnType string) *Intrinsic {
	return &Intrinsic{Name: name, Params: params, Body: body, Return: returnType}
}

// NewLiteral creates a named literal.
func NewLiteral(name, body string) *Literal {
	return &Literal{Name: name, Body: body}
}

// NewMacro creates a macro marker.
func NewMacro(name, body string) *Macro {
	return &Macro{Name: name, Body: body}
}

// NewSentence creates a sentence.
func NewSentence(elements ...Node) *Sentence {
	return &Sentence{Elements: elements}
}

// NewCall creates a call expression.
func NewCall(name string, params ...Node) *Call {
	return &Call{Name: name, Params: params}
}

// NewMemberExpr creates a name reference.
func NewMemberExpr(name string) *MemberExpr {
	return &MemberExpr{Name: name}
}
