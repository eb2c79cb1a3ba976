//go:build !((linux || darwin || freebsd) && cgo)

package frontend

import "errors"

const SymbolName = "NewFrontend"

// DynamicLoader is unavailable in this build; Open always fails.
type DynamicLoader struct{}

func (DynamicLoader) Open(path string) (Frontend, func() error, error) {
	return nil, nil, &LoadError{
		Path: path,
		Kind: LoadFailed,
		Err:  errors.New("dynamic frontends are not supported by this build"),
	}
}

const DynamicSupported = false
