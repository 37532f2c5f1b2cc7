package ir

// StructRegistry deduplicates struct nodes by name so every reference to a
// type shares one arena node.
type StructRegistry struct {
	tree    *Tree
	typeMap map[string]Handle
}

// NewStructRegistry creates a registry adding structs to tree.
func NewStructRegistry(tree *Tree) *StructRegistry {
	return &StructRegistry{
		tree:    tree,
		typeMap: make(map[string]Handle, 16),
	}
}

// GetOrCreate returns the handle registered under key, adding s to the
// tree if the key is new.
func (r *StructRegistry) GetOrCreate(key string, s Struct) Handle {
	if h, exists := r.typeMap[key]; exists {
		return h
	}
	h := r.tree.Add(s)
	r.typeMap[key] = h
	return h
}

// Lookup returns the handle registered under key.
func (r *StructRegistry) Lookup(key string) (Handle, bool) {
	h, ok := r.typeMap[key]
	return h, ok
}

// Alias registers an additional key for an existing handle.
func (r *StructRegistry) Alias(key string, h Handle) {
	r.typeMap[key] = h
}

// Remove drops key. Handles already handed out stay valid.
func (r *StructRegistry) Remove(key string) {
	delete(r.typeMap, key)
}

// Count returns the number of registered keys.
func (r *StructRegistry) Count() int {
	return len(r.typeMap)
}
