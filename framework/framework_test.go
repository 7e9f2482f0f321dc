package framework

import (
	"errors"
	"fmt"
	"testing"
)

func mathFramework() Framework {
	return Static("calc", map[string]Node{
		"calc": Namespace(map[string]Node{
			"add": Func(func(args []any) (any, error) {
				if len(args) != 2 {
					return nil, fmt.Errorf("add wants 2 args, got %d", len(args))
				}
				a, aok := args[0].(float64)
				b, bok := args[1].(float64)
				if !aok || !bok {
					return nil, fmt.Errorf("add wants numeric args")
				}
				return a + b, nil
			}),
			"linear": Namespace(map[string]Node{
				"new": Func(func(args []any) (any, error) {
					return map[string]any{"kind": "linear", "args": args}, nil
				}),
			}),
		}),
	})
}

func TestGlobals_RegisterAndResolve(t *testing.T) {
	g := NewGlobals()
	if err := g.Register(mathFramework()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("resolve leaf callable", func(t *testing.T) {
		call, err := g.Resolve("calc.add")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		got, err := call([]any{2.0, 3.0})
		if err != nil {
			t.Fatalf("call error = %v", err)
		}
		if got != 5.0 {
			t.Errorf("call got = %v, want 5", got)
		}
	})

	t.Run("resolve nested constructor", func(t *testing.T) {
		call, err := g.Resolve("calc.linear.new")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := call(nil); err != nil {
			t.Errorf("constructor error = %v", err)
		}
	})

	t.Run("missing attribute", func(t *testing.T) {
		_, err := g.Resolve("calc.subtract")
		var unresolved *ErrUnresolvedPath
		if !errors.As(err, &unresolved) {
			t.Errorf("Resolve() error = %v, want ErrUnresolvedPath", err)
		}
	})

	t.Run("namespace is not callable", func(t *testing.T) {
		_, err := g.Resolve("calc.linear")
		var unresolved *ErrUnresolvedPath
		if !errors.As(err, &unresolved) || !unresolved.NotCallable {
			t.Errorf("Resolve() error = %v, want not-callable ErrUnresolvedPath", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := g.Resolve("")
		var unresolved *ErrUnresolvedPath
		if !errors.As(err, &unresolved) {
			t.Errorf("Resolve() error = %v, want ErrUnresolvedPath", err)
		}
	})
}

func TestGlobals_DuplicateRejection(t *testing.T) {
	g := NewGlobals()
	if err := g.Register(mathFramework()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := g.Register(mathFramework())
	var dup *ErrDuplicateFramework
	if !errors.As(err, &dup) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateFramework", err)
	}
	if !g.Registered("calc") {
		t.Errorf("Registered(calc) = false after successful registration")
	}
}
