package router

import "strings"

// outcome is the result class of a table lookup.
type outcome uint8

const (
	unmatched  outcome = iota // nothing matched
	matched                   // a page matched
	redirected                // a nested scope hit its own fallback
)

// handler builds the value for a matched node. rest holds the remaining
// segments for scope nodes and is empty otherwise.
type handler[R any] func(params Params, rest string) (R, outcome)

// node is a node in the route tree.
type node[R any] struct {
	// segment is the static path segment this node matches
	segment string

	// paramName and paramType describe a parameter node (:id:uint64)
	paramName string
	paramType string

	// handle is set on nodes that terminate a pattern
	handle handler[R]

	// children are static segment children
	children []*node[R]

	// paramChild is the dynamic parameter child
	paramChild *node[R]

	// scopeChild consumes every remaining segment (nested tables)
	scopeChild *node[R]
}

func (n *node[R]) findChild(segment string) *node[R] {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node[R]) addChild(segment string) *node[R] {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node[R]{segment: segment}
	n.children = append(n.children, child)
	return child
}

func (n *node[R]) addParamChild(name, paramType string) *node[R] {
	if n.paramChild != nil {
		return n.paramChild
	}
	n.paramChild = &node[R]{paramName: name, paramType: paramType}
	return n.paramChild
}

func (n *node[R]) addScopeChild() *node[R] {
	if n.scopeChild == nil {
		n.scopeChild = &node[R]{}
	}
	return n.scopeChild
}

// insert adds a pattern to the tree and returns its terminal node.
// A trailing "*" segment creates a scope node.
func (n *node[R]) insert(pattern string) *node[R] {
	current := n
	for _, seg := range splitPath(pattern) {
		switch {
		case seg == "*":
			return current.addScopeChild()
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			current = current.addParamChild(name, paramType)
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match walks the tree. Static children are tried before the parameter
// child, and the parameter child before the scope child; a branch that
// fails (including a parameter that does not bind) backtracks.
func (n *node[R]) match(segments []string, params Params) (R, outcome) {
	var zero R

	if len(segments) == 0 {
		if n.handle != nil {
			return n.handle(params, "")
		}
		return zero, unmatched
	}

	segment, remaining := segments[0], segments[1:]

	if child := n.findChild(segment); child != nil {
		if v, out := child.match(remaining, params); out != unmatched {
			return v, out
		}
	}

	if pc := n.paramChild; pc != nil {
		if ValidateParam(pc.paramName, segment, pc.paramType) == nil {
			params[pc.paramName] = segment
			if v, out := pc.match(remaining, params); out != unmatched {
				return v, out
			}
			delete(params, pc.paramName)
		}
	}

	if sc := n.scopeChild; sc != nil && sc.handle != nil {
		return sc.handle(params, "/"+strings.Join(segments, "/"))
	}

	return zero, unmatched
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:uint64" -> name="id", type="string" or "uint64"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
