package domain

import "fmt"

// RouteProviderError wraps any failure from the Route Provider (geocoding,
// distance matrix, directions). It is always fatal to the current dispatch
// run: the caller should abort before any commit.
type RouteProviderError struct {
	Op  string
	Err error
}

func (e *RouteProviderError) Error() string {
	return fmt.Sprintf("route provider: %s: %v", e.Op, e.Err)
}

func (e *RouteProviderError) Unwrap() error { return e.Err }

// PersistenceError wraps a Persistence Store failure. Reads abort the run;
// writes after the strict-pass commit leave the engine partially committed
// by design.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError signals a missing or invalid required setting at
// startup (kitchen or clustering configuration).
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
