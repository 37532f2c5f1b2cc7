// Package syntax implements the front end of the besl compiler.
//
// Source text is split into string tokens by Tokenize, parsed into a Syntax
// Tree by Parse, and resolved into an ir.Tree by Resolve:
//
//	tokens, err := syntax.Tokenize(source)
//	root, table, err := syntax.Parse(tokens)
//	tree, err := syntax.Resolve(root, table)
//
// The Syntax Tree refers to types by name. Resolution replaces every name
// with a shared handle into the resolved tree.
//
// # Grammar
//
//	Light: struct { position: vec3f, color: vec3f }
//	color: In<vec4f>;
//	#[fragment]
//	main: fn () -> void {
//	    let albedo: vec3f = vec3f(1.0, 0.0, 0.0);
//	    albedo.x = 2.0 * albedo.y;
//	}
//
// Trees can also be built programmatically with the New* constructors or
// loaded from a JSON program description with ParseJSON.
package syntax
