package router

import (
	"strings"

	"github.com/sss-sync/console/pkg/routepath"
)

// node is a node in the route tree.
type node struct {
	// segment is the static path segment this node matches
	segment string

	// paramName is the capture name for param and catch-all nodes
	paramName string

	isParam    bool
	isCatchAll bool

	// route is the record terminating at this node, if any
	route *Route

	// children are static segment children
	children []*node

	// paramChild is the dynamic parameter child (:id)
	paramChild *node

	// catchAllChild is the catch-all child (*rest)
	catchAllChild *node
}

func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node{segment: segment}
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name string) (*node, error) {
	if n.paramChild != nil {
		if n.paramChild.paramName != name {
			return nil, errConflictingParam(n.paramChild.paramName, name)
		}
		return n.paramChild, nil
	}
	n.paramChild = &node{isParam: true, paramName: name}
	return n.paramChild, nil
}

func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild == nil {
		n.catchAllChild = &node{isCatchAll: true, paramName: name}
	}
	return n.catchAllChild
}

// insert walks (and grows) the tree along a pattern and returns its leaf.
func (n *node) insert(segments []string) (*node, error) {
	current := n
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "*"):
			if i != len(segments)-1 {
				return nil, errCatchAllNotLast(seg)
			}
			current = current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			next, err := current.addParamChild(seg[1:])
			if err != nil {
				return nil, err
			}
			current = next
		default:
			current = current.addChild(seg)
		}
	}
	return current, nil
}

// match finds the most specific node for segments and records decoded
// captures in params. Static children are tried first, then the parameter
// child, then the catch-all; a failed branch backtracks.
//
// A segment that does not decode (bad escape, NUL, encoded slash) never
// binds a parameter. A catch-all that does not decode keeps the raw text,
// so such paths still reach it.
func (n *node) match(segments []string, params map[string]string) *node {
	if len(segments) == 0 {
		if n.route != nil {
			return n
		}
		return nil
	}

	segment, remaining := segments[0], segments[1:]

	if child := n.findChild(segment); child != nil {
		if found := child.match(remaining, params); found != nil {
			return found
		}
	}

	if n.paramChild != nil {
		if value, err := routepath.DecodeSegment(segment, false); err == nil {
			params[n.paramChild.paramName] = value
			if found := n.paramChild.match(remaining, params); found != nil {
				return found
			}
			delete(params, n.paramChild.paramName)
		}
	}

	if n.catchAllChild != nil && n.catchAllChild.route != nil {
		raw := strings.Join(segments, "/")
		value, err := routepath.DecodeSegment(raw, true)
		if err != nil {
			value = raw
		}
		params[n.catchAllChild.paramName] = value
		return n.catchAllChild
	}

	return nil
}
