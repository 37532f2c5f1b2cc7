// Package ir defines the resolved tree produced by the besl resolver.
//
// Every node lives in an arena owned by a Tree and is referenced through a
// Handle. Type references are handles to Struct nodes, so two members that
// name the same type share one node and compare equal by handle.
//
// # Structure
//
// The tree is rooted at a Scope named "root". Declarations are:
//   - Struct: user or intrinsic structures, and generic instantiations
//   - Function: functions with parameters, a return type and statements
//   - Binding, PushConstant, Specialization: shader resources
//   - Fragment: raw target-language text with declared inputs and outputs
//   - Intrinsic, Literal: inlined helpers
//
// Expressions (Sentence, Accessor, MemberExpr, Call, OperatorExpr, ...) live
// in the same arena and are owned by the function that contains them.
//
// # Translation Pipeline
//
//	tokens → syntax.Parse → syntax.Resolve → ir.Tree → glsl.Compile
package ir
