// Package errors provides the structured error type shared by taskbridge
// packages. Errors carry a machine-readable code, a message, optional details
// and an underlying cause that stays reachable through errors.Is/As.
package errors
