package frontend

import (
	"errors"
	"fmt"
)

var (
	ErrLoadFailed    = errors.New("load failed")
	ErrSymbolMissing = errors.New("symbol missing")
	ErrInitFailed    = errors.New("init failed")
)

// ErrorKind classifies a LoadError.
type ErrorKind int

const (
	LoadFailed ErrorKind = iota
	SymbolMissing
	InitFailed
)

func (k ErrorKind) sentinel() error {
	switch k {
	case SymbolMissing:
		return ErrSymbolMissing
	case InitFailed:
		return ErrInitFailed
	default:
		return ErrLoadFailed
	}
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// LoadError reports why a module could not be registered. It matches the
// sentinel of its kind with errors.Is.
type LoadError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("frontend %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("frontend %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}
