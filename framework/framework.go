/*
	Framework registration. A framework is an external collaborator that
	exposes a name and a call graph of invokable nodes. A worker reads
	that graph exactly once at construction and keeps it verbatim for
	later function/constructor resolution; nothing here re-reads or
	mutates a framework after registration.
*/

package framework

import "strings"

// Callable is one invokable node of a framework's call graph.
type Callable func(args []any) (any, error)

// Node is an entry in the call graph: a callable, a namespace of child
// nodes, or both (a constructor that also carries static members).
type Node struct {
	Call     Callable
	Children map[string]Node
}

// Func wraps a bare callable as a graph node.
func Func(c Callable) Node {
	return Node{Call: c}
}

// Namespace groups child nodes under one attribute name.
func Namespace(children map[string]Node) Node {
	return Node{Children: children}
}

// Framework is the registration interface a collaborator implements.
type Framework interface {
	Name() string
	Attrs() map[string]Node
}

// Globals is the merged attribute table of every framework registered
// with a worker, keyed by top-level attribute name.
type Globals struct {
	attrs map[string]Node
	names map[string]struct{}
}

func NewGlobals() *Globals {
	return &Globals{
		attrs: make(map[string]Node),
		names: make(map[string]struct{}),
	}
}

// Register merges one framework's attributes. A framework name may be
// registered at most once; a duplicate is a caller bug and fails
// immediately rather than merging or overwriting.
func (g *Globals) Register(fw Framework) error {
	name := fw.Name()
	if _, dup := g.names[name]; dup {
		return &ErrDuplicateFramework{Name: name}
	}
	g.names[name] = struct{}{}
	for attr, node := range fw.Attrs() {
		if _, dup := g.attrs[attr]; dup {
			return &ErrDuplicateFramework{Name: name, Attr: attr}
		}
		g.attrs[attr] = node
	}
	return nil
}

// Registered reports whether a framework name has been merged in.
func (g *Globals) Registered(name string) bool {
	_, ok := g.names[name]
	return ok
}

// Resolve walks a dotted path through the merged call graph and returns
// the callable at its end.
func (g *Globals) Resolve(path string) (Callable, error) {
	parts := strings.Split(path, ".")
	if path == "" || len(parts) == 0 {
		return nil, &ErrUnresolvedPath{Path: path}
	}

	node, ok := g.attrs[parts[0]]
	if !ok {
		return nil, &ErrUnresolvedPath{Path: path, Missing: parts[0]}
	}
	for _, part := range parts[1:] {
		child, ok := node.Children[part]
		if !ok {
			return nil, &ErrUnresolvedPath{Path: path, Missing: part}
		}
		node = child
	}

	if node.Call == nil {
		return nil, &ErrUnresolvedPath{Path: path, Missing: parts[len(parts)-1], NotCallable: true}
	}
	return node.Call, nil
}

// Static builds a fixed framework from a literal attribute table. Used
// by tests and by in-process embedders that do not mirror an external
// library.
func Static(name string, attrs map[string]Node) Framework {
	return &static{name: name, attrs: attrs}
}

type static struct {
	name  string
	attrs map[string]Node
}

func (s *static) Name() string           { return s.name }
func (s *static) Attrs() map[string]Node { return s.attrs }
