package di

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// IsConstructor reports whether fn has a signature Invoke can call.
func IsConstructor(fn any) bool {
	return checkConstructor(fn) == nil
}

// Invoke calls a constructor and returns what it built. Accepted signatures:
//
//	func() T
//	func() (T, error)
//	func(context.Context) T
//	func(context.Context) (T, error)
//
// A nil ctx is replaced by context.Background for context-aware constructors.
func Invoke(ctx context.Context, constructor any) (any, error) {
	if err := checkConstructor(constructor); err != nil {
		return nil, err
	}
	fn := reflect.ValueOf(constructor)

	var in []reflect.Value
	if fn.Type().NumIn() == 1 {
		if ctx == nil {
			ctx = context.Background()
		}
		in = []reflect.Value{reflect.ValueOf(ctx)}
	}
	return handleConstructorResults(fn.Call(in))
}

func checkConstructor(constructor any) error {
	if constructor == nil {
		return fmt.Errorf("constructor must be a function, got nil")
	}
	fnType := reflect.TypeOf(constructor)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	if fnType.IsVariadic() {
		return fmt.Errorf("constructor must not be variadic")
	}
	switch fnType.NumIn() {
	case 0:
	case 1:
		if fnType.In(0) != contextType {
			return fmt.Errorf("constructor argument must be context.Context, got %s", fnType.In(0))
		}
	default:
		return fmt.Errorf("constructor must take no arguments or a context.Context")
	}
	switch fnType.NumOut() {
	case 1:
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return fmt.Errorf("constructor second result must be error, got %s", fnType.Out(1))
		}
	default:
		return fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
	return nil
}

func handleConstructorResults(results []reflect.Value) (any, error) {
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}
