package node

// Editor accumulates changes to one object with copy-on-write semantics.
//
// Edit is O(1): the editor shares the seed node. The first mutation copies the
// seed's top level (keys and value pointers, not subtrees); later mutations
// write into that private copy until Freeze hands it out, after which the next
// mutation copies again. The seed and every frozen snapshot are therefore
// never modified.
//
// An Editor must not be shared between goroutines.
type Editor struct {
	cur   *Node
	owned bool
}

// Edit starts an editor seeded with n. An absent or non-object seed starts
// from an empty object.
func Edit(n *Node) *Editor {
	if n == nil || n.kind != KindObject {
		return &Editor{cur: Object()}
	}
	return &Editor{cur: n}
}

func (e *Editor) own() {
	if e.owned {
		return
	}
	e.cur = e.cur.shallow(4)
	e.owned = true
}

// Set binds key to v; an absent v deletes the key.
func (e *Editor) Set(key string, v *Node) *Editor {
	if v == nil {
		return e.Delete(key)
	}
	e.own()
	e.cur.put(key, v)
	return e
}

// Delete removes key.
func (e *Editor) Delete(key string) *Editor {
	if e.cur.lookup(key) < 0 {
		return e
	}
	e.own()
	e.cur.remove(key)
	return e
}

// Append adds v to the array at key, creating the array when missing. A
// non-array value at key is replaced by a single-item array.
func (e *Editor) Append(key string, v *Node) *Editor {
	prev := e.Get(key)
	if prev.Kind() != KindArray {
		prev = nil
	}
	return e.Set(key, prev.Append(v))
}

// Get returns the current value at key.
func (e *Editor) Get(key string) *Node { return e.cur.Get(key) }

// Peek returns the current state without freezing it. The result must be
// treated as read-only and may change on the next mutation.
func (e *Editor) Peek() *Node { return e.cur }

// Freeze returns the current object as an immutable snapshot.
func (e *Editor) Freeze() *Node {
	e.owned = false
	return e.cur
}

// Shared reports whether the editor still shares its state with the seed or
// the last snapshot.
func (e *Editor) Shared() bool { return !e.owned }
