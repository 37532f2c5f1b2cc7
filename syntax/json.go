package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
)

// ParseJSON loads a program description. The document is an object of
// type "scope" whose object-valued keys are child declarations, named by
// their key:
//
//	{
//	  "type": "scope",
//	  "Camera": {"type": "struct", "view": {"type": "member", "data_type": "mat4f"}},
//	  "camera": {"type": "push_constant", "data_type": "Camera*"},
//	  "in_position": {"type": "in", "data_type": "vec3f"},
//	  "main": {"type": "function", "return_type": "void", "code": "gl_Position = vec4(in_position, 1.0);", "inputs": ["in_position"]}
//	}
//
// Key order is significant: it is the declaration order.
func ParseJSON(data []byte) (*Scope, *TypeTable, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, nil, fmt.Errorf("json: %w", err)
	}
	obj, ok := v.(*jsonObject)
	if !ok {
		return nil, nil, errors.New("json: program description must be an object")
	}

	l := &jsonLoader{table: NewTypeTable()}
	n, err := l.node("root", obj)
	if err != nil {
		return nil, nil, fmt.Errorf("json: %w", err)
	}
	root, ok := n.(*Scope)
	if !ok {
		return nil, nil, errors.New(`json: root must have type "scope"`)
	}
	return root, l.table, nil
}

// jsonObject is a decoded object that keeps its key order.
type jsonObject struct {
	keys   []string
	values []any
}

func (o *jsonObject) get(key string) (any, bool) {
	for i, k := range o.keys {
		if k == key {
			return o.values[i], true
		}
	}
	return nil, false
}

func (o *jsonObject) str(key string) string {
	v, _ := o.get(key)
	s, _ := v.(string)
	return s
}

func (o *jsonObject) boolean(key string) bool {
	v, _ := o.get(key)
	b, _ := v.(bool)
	return b
}

func (o *jsonObject) uint(key string) (uint32, error) {
	v, ok := o.get(key)
	if !ok {
		return 0, nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%q must be a number", key)
	}
	n, err := strconv.ParseUint(num.String(), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", key, err)
	}
	return uint32(n), nil
}

func (o *jsonObject) strings(key string) ([]string, error) {
	v, ok := o.get(key)
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%q must be an array of strings", key)
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := &jsonObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values = append(obj.values, v)
		}
		if err := closeDelim(dec, '}'); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if err := closeDelim(dec, ']'); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}

type jsonLoader struct {
	table *TypeTable
}

func (l *jsonLoader) node(name string, obj *jsonObject) (Node, error) {
	kind := obj.str("type")
	switch kind {
	case "scope":
		children, err := l.children(obj)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", name, err)
		}
		return &Scope{Name: name, Children: children}, nil

	case "struct":
		children, err := l.children(obj)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", name, err)
		}
		s := &Struct{Name: name}
		for _, c := range children {
			m, ok := c.(*Member)
			if !ok {
				return nil, fmt.Errorf("struct %s: field %s is not a member", name, NameOf(c))
			}
			s.Fields = append(s.Fields, m)
		}
		l.table.Insert(s)
		return s, nil

	case "member", "in", "out", "push_constant":
		typ := obj.str("data_type")
		if typ == "" {
			return nil, fmt.Errorf("%s %s: missing data_type", kind, name)
		}
		switch kind {
		case "in":
			typ = "In<" + typ + ">"
		case "out":
			typ = "Out<" + typ + ">"
		case "push_constant":
			typ = "PushConstant<" + typ + ">"
		}
		count, err := obj.uint("count")
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, name, err)
		}
		m := &Member{Name: name, Type: typ, Count: count}
		if interp := obj.str("interpolation"); interp != "" {
			m.Annotations = append(m.Annotations, interp)
		}
		return m, nil

	case "function":
		return l.function(name, obj)

	case "binding":
		return l.binding(name, obj)

	case "specialization":
		return &Specialization{Name: name, Type: obj.str("data_type")}, nil

	case "literal":
		return &Literal{Name: name, Body: obj.str("value")}, nil

	default:
		return nil, fmt.Errorf("%s: unsupported node type %q", name, kind)
	}
}

// children loads every object-valued key; other keys are attributes.
func (l *jsonLoader) children(obj *jsonObject) ([]Node, error) {
	var out []Node
	for i, key := range obj.keys {
		child, ok := obj.values[i].(*jsonObject)
		if !ok {
			continue
		}
		n, err := l.node(key, child)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (l *jsonLoader) function(name string, obj *jsonObject) (Node, error) {
	fn := &Function{Name: name, Return: obj.str("return_type")}
	if stage := obj.str("stage"); stage != "" {
		fn.Annotations = []string{stage}
	}
	if code := obj.str("code"); code != "" {
		inputs, err := obj.strings("inputs")
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		outputs, err := obj.strings("outputs")
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		fn.Statements = append(fn.Statements, &Fragment{Code: code, Inputs: inputs, Outputs: outputs})
	}
	return fn, nil
}

func (l *jsonLoader) binding(name string, obj *jsonObject) (Node, error) {
	set, err := obj.uint("set")
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", name, err)
	}
	descriptor, err := obj.uint("binding")
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", name, err)
	}
	count, err := obj.uint("count")
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", name, err)
	}

	b := &Binding{
		Name:       name,
		Set:        set,
		Descriptor: descriptor,
		Read:       obj.boolean("read"),
		Write:      obj.boolean("write"),
		Count:      count,
	}
	switch kind := obj.str("kind"); kind {
	case "buffer":
		children, err := l.children(obj)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		buf := &Buffer{}
		for _, c := range children {
			m, ok := c.(*Member)
			if !ok {
				return nil, fmt.Errorf("binding %s: %s is not a member", name, NameOf(c))
			}
			buf.Members = append(buf.Members, m)
		}
		b.Type = buf
	case "image":
		b.Type = &Image{Format: obj.str("format")}
	case "combined_image_sampler":
		b.Type = &CombinedImageSampler{Format: obj.str("format")}
	default:
		return nil, fmt.Errorf("binding %s: unsupported kind %q", name, kind)
	}
	return b, nil
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}
