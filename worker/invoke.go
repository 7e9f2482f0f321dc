package worker

import (
	"fmt"
	"reflect"
)

// MethodReceiver lets a stored object take full control of its own
// method dispatch. Objects that do not implement it are invoked through
// reflection instead.
type MethodReceiver interface {
	RunMethod(name string, args []any) (any, error)
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// invokeMethod calls the named method on a stored object. Arguments are
// converted to the parameter types where the conversion is lossless in
// kind (json numbers arrive as float64 and are narrowed here); anything
// else is an invocation failure, not a panic.
func invokeMethod(obj any, name string, args []any) (any, error) {
	if obj == nil {
		return nil, fmt.Errorf("no method '%s' on <nil>", name)
	}
	if r, ok := obj.(MethodReceiver); ok {
		return r.RunMethod(name, args)
	}

	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil, fmt.Errorf("no method '%s' on <nil>", name)
	}
	m := v.MethodByName(name)
	if !m.IsValid() && v.Kind() != reflect.Ptr {
		// pointer receivers need an addressable copy
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		m = pv.MethodByName(name)
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("no method '%s' on %T", name, obj)
	}

	mt := m.Type()
	if mt.IsVariadic() {
		return nil, fmt.Errorf("method '%s' is variadic; variadic methods are not invokable remotely", name)
	}
	if mt.NumIn() != len(args) {
		return nil, fmt.Errorf("method '%s' wants %d args, got %d", name, mt.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := mt.In(i)
		av, err := convertArg(arg, want)
		if err != nil {
			return nil, fmt.Errorf("arg %d of '%s': %w", i, name, err)
		}
		in[i] = av
	}

	out := m.Call(in)
	return collapseReturns(name, out)
}

func convertArg(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
	}

	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(want) {
		return av, nil
	}
	if av.Type().ConvertibleTo(want) {
		// numeric narrowing only; never convert across kinds like
		// string <-> int
		if isNumericKind(av.Kind()) && isNumericKind(want.Kind()) {
			return av.Convert(want), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", arg, want)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// collapseReturns maps Go return shapes onto the single-result contract:
// (), (T), (error), (T, error).
func collapseReturns(name string, out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errType) {
			if !out[0].IsNil() {
				return nil, out[0].Interface().(error)
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	case 2:
		if !out[1].Type().Implements(errType) {
			return nil, fmt.Errorf("method '%s' has unsupported return shape", name)
		}
		if !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("method '%s' has unsupported return shape", name)
	}
}
