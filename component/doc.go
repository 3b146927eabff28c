// Package component defines lifecycle-managed resources owned by an
// application: things acquired when the application starts and released, in
// reverse order, when it stops.
package component
