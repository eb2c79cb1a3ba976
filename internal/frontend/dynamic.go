//go:build (linux || darwin || freebsd) && cgo

package frontend

import (
	"fmt"
	"plugin"
)

// SymbolName is the symbol a frontend bundle must export. Its type must be
// func() frontend.Frontend.
const SymbolName = "NewFrontend"

// DynamicLoader opens frontends built with -buildmode=plugin.
//
// The Go runtime cannot unload a plugin, so release only drops the
// reference; the code stays mapped until the process exits.
type DynamicLoader struct{}

func (DynamicLoader) Open(path string) (Frontend, func() error, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, nil, &LoadError{Path: path, Kind: LoadFailed, Err: err}
	}
	sym, err := p.Lookup(SymbolName)
	if err != nil {
		return nil, nil, &LoadError{Path: path, Kind: SymbolMissing, Err: err}
	}
	var factory func() Frontend
	switch f := sym.(type) {
	case func() Frontend:
		factory = f
	case *func() Frontend:
		factory = *f
	default:
		return nil, nil, &LoadError{
			Path: path,
			Kind: SymbolMissing,
			Err:  fmt.Errorf("%s has type %T", SymbolName, sym),
		}
	}
	fe := factory()
	if fe == nil {
		return nil, nil, &LoadError{Path: path, Kind: SymbolMissing, Err: fmt.Errorf("%s returned nil", SymbolName)}
	}
	return fe, func() error { return nil }, nil
}

// DynamicSupported reports whether this build can open frontend bundles.
const DynamicSupported = true
