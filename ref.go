package taskbridge

import "fmt"

// RefKind tells how an AppRef produces its application.
type RefKind int

const (
	// RefInstance holds an already-constructed application.
	RefInstance RefKind = iota + 1
	// RefPath names an object registered with Provide.
	RefPath
	// RefFactory holds a constructor called with no arguments.
	RefFactory
)

func (k RefKind) String() string {
	switch k {
	case RefInstance:
		return "instance"
	case RefPath:
		return "path"
	case RefFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// AppRef is an immutable reference to the application a worker should run.
// Build one with Instance, Path or Factory.
type AppRef struct {
	kind     RefKind
	instance Application
	path     string
	factory  any
}

// Instance references an existing application.
func Instance(app Application) AppRef {
	return AppRef{kind: RefInstance, instance: app}
}

// Path references an object registered under path, such as
// "example.com/shop/web.App". The object may be an Application or a
// constructor returning one.
func Path(path string) AppRef {
	return AppRef{kind: RefPath, path: path}
}

// Factory references a constructor. Accepted signatures are func() T,
// func() (T, error), func(context.Context) T and
// func(context.Context) (T, error); the context is the startup context.
func Factory(fn any) AppRef {
	return AppRef{kind: RefFactory, factory: fn}
}

// Kind returns the reference kind. The zero AppRef has kind 0.
func (r AppRef) Kind() RefKind { return r.kind }

// String describes the reference for logs and error messages.
func (r AppRef) String() string {
	switch r.kind {
	case RefInstance:
		return fmt.Sprintf("instance(%T)", r.instance)
	case RefPath:
		return r.path
	case RefFactory:
		return fmt.Sprintf("factory(%T)", r.factory)
	default:
		return "<empty>"
	}
}
