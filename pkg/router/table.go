package router

// Table is a declarative route table mapping path patterns to values of
// type R. Patterns are made of static segments, typed parameters
// (":id:uint64") and, for nested scopes, a trailing "*".
//
// A Table is built once and then only read, so it is safe for concurrent
// lookups.
type Table[R any] struct {
	root *node[R]
}

// NewTable creates an empty table.
func NewTable[R any]() *Table[R] {
	return &Table[R]{root: &node[R]{}}
}

// Page registers a pattern. build turns the bound parameters into a value;
// if it returns an error the pattern is treated as unmatched, so a binding
// failure falls through to the table's fallback instead of surfacing.
func (t *Table[R]) Page(pattern string, build func(Params) (R, error)) {
	n := t.root.insert(pattern)
	n.handle = func(params Params, _ string) (R, outcome) {
		v, err := build(params)
		if err != nil {
			var zero R
			return zero, unmatched
		}
		return v, matched
	}
}

// Static registers a pattern without parameters that always yields v.
func (t *Table[R]) Static(pattern string, v R) {
	t.Page(pattern, func(Params) (R, error) { return v, nil })
}

// Mount delegates every path below prefix to child. wrap lifts a child
// value into the parent's type; it returns false when the child value is
// the child's own fallback page. Child misses and child fallbacks both
// surface in the parent as a redirect to the parent's fallback, so a
// nested table can never strand the user on a dead end.
func Mount[R, S any](parent *Table[R], prefix string, child *Table[S], wrap func(S) (R, bool)) {
	n := parent.root.insert(prefix + "/*")
	n.handle = func(_ Params, rest string) (R, outcome) {
		var zero R
		s, out := child.lookup(rest)
		if out != matched {
			return zero, redirected
		}
		v, ok := wrap(s)
		if !ok {
			return zero, redirected
		}
		return v, matched
	}
}

// Match looks up a canonical path. ok is false when nothing matched or a
// nested scope redirected to the fallback; redirect distinguishes the two.
func (t *Table[R]) Match(path string) (v R, ok bool, redirect bool) {
	v, out := t.lookup(path)
	return v, out == matched, out == redirected
}

func (t *Table[R]) lookup(path string) (R, outcome) {
	var zero R
	segments := splitPath(path)
	for i, seg := range segments {
		decoded, err := DecodeSegment(seg)
		if err != nil {
			return zero, unmatched
		}
		segments[i] = decoded
	}
	return t.root.match(segments, make(Params))
}
