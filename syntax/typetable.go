package syntax

import (
	"sort"
	"sync"
)

// intrinsicTypes is the shared baseline of built-in types. It is built once
// and never modified.
var intrinsicTypes = sync.OnceValue(func() map[string]*Struct {
	types := make(map[string]*Struct, 32)
	scalar := func(name string) {
		types[name] = &Struct{Name: name}
	}
	vector := func(name, elem string, n int) {
		s := &Struct{Name: name}
		for _, f := range []string{"x", "y", "z", "w"}[:n] {
			s.Fields = append(s.Fields, &Member{Name: f, Type: elem})
		}
		types[name] = s
	}

	for _, name := range []string{"void", "bool", "u8", "u16", "u32", "i32", "f32"} {
		scalar(name)
	}
	vector("vec2f", "f32", 2)
	vector("vec2u", "u32", 2)
	vector("vec2i", "i32", 2)
	vector("vec2u16", "u16", 2)
	vector("vec3f", "f32", 3)
	vector("vec3u", "u32", 3)
	vector("vec3i", "i32", 3)
	vector("vec4f", "f32", 4)
	vector("vec4u", "u32", 4)
	vector("mat2f", "vec2f", 2)
	vector("mat3f", "vec3f", 3)
	vector("mat4f", "vec4f", 4)

	// Resource handles and generic markers.
	for _, name := range []string{"Texture2D", "ArrayTexture2D", "In", "Out", "PushConstant"} {
		scalar(name)
	}
	return types
})

// IsIntrinsicType reports whether name is a built-in type.
func IsIntrinsicType(name string) bool {
	_, ok := intrinsicTypes()[name]
	return ok
}

// IntrinsicTypeNames returns the built-in type names in sorted order.
func IntrinsicTypeNames() []string {
	base := intrinsicTypes()
	names := make([]string, 0, len(base))
	for name := range base {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeTable maps type names to struct declarations. Lookups fall back to
// the intrinsic baseline; inserts go to a per-table overlay. The intrinsic
// structs are shared between tables and must not be modified.
type TypeTable struct {
	overlay map[string]*Struct
	order   []string
}

// NewTypeTable returns a table holding only the intrinsic types.
func NewTypeTable() *TypeTable {
	return &TypeTable{overlay: make(map[string]*Struct)}
}

// Lookup returns the struct registered under name.
func (t *TypeTable) Lookup(name string) (*Struct, bool) {
	if s, ok := t.overlay[name]; ok {
		return s, true
	}
	s, ok := intrinsicTypes()[name]
	return s, ok
}

// Insert registers s under its name and under the pointer alias "Name*",
// replacing earlier entries.
func (t *TypeTable) Insert(s *Struct) {
	if _, seen := t.overlay[s.Name]; !seen {
		t.order = append(t.order, s.Name)
	}
	t.overlay[s.Name] = s
	t.overlay[s.Name+"*"] = s
}

// Declared returns the names of inserted structs in insertion order.
func (t *TypeTable) Declared() []string {
	return append([]string(nil), t.order...)
}
