package framework

import "fmt"

// ErrDuplicateFramework is returned when a framework name or top-level
// attribute is registered twice on one worker.
type ErrDuplicateFramework struct {
	Name string
	Attr string
}

func (e *ErrDuplicateFramework) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("framework '%s' collides on attribute '%s'", e.Name, e.Attr)
	}
	return fmt.Sprintf("framework '%s' already registered. Why are you importing it twice?", e.Name)
}

// ErrUnresolvedPath is returned when a dotted call path does not lead
// to a callable node in any registered framework.
type ErrUnresolvedPath struct {
	Path        string
	Missing     string
	NotCallable bool
}

func (e *ErrUnresolvedPath) Error() string {
	if e.NotCallable {
		return fmt.Sprintf("path '%s' resolves to '%s' which is not callable", e.Path, e.Missing)
	}
	if e.Missing != "" {
		return fmt.Sprintf("path '%s' does not resolve: no attribute '%s'", e.Path, e.Missing)
	}
	return fmt.Sprintf("path '%s' does not resolve", e.Path)
}
