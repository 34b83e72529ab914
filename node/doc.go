// Package node implements the document tree every typed view is projected
// from: a tagged value over null, boolean, number, string, array and object.
//
// Nodes are immutable. Updates such as Set, Delete and Append return a new
// node that shares every unchanged subtree with the original, and Editor
// batches such updates with copy-on-write so that a seed node or a handed-out
// snapshot is never modified. A nil *Node is the absent value; all read
// methods accept it, which lets lookups chain without nil checks:
//
//	n.Get("code").Get("coding").Index(0).Get("system").AsString()
//
// Numbers keep their source text so decimal precision survives a round trip,
// and objects keep key insertion order for encoding while lookups ignore it.
package node
