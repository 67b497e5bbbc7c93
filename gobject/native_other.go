//go:build ios || android || !(amd64 || arm64)

package gobject

import "errors"

// ErrNotLoaded is returned when the native runtime is used before GLib is
// loaded.
var ErrNotLoaded = errors.New("goglib: GLib libraries not loaded")

// ErrLibraryNotFound is returned when libgobject-2.0 or libglib-2.0 cannot be
// found.
var ErrLibraryNotFound = errors.New("goglib: GLib library not found")

// Native is unavailable on this platform.
type Native struct {
	Runtime
}

// NewNative always fails with ErrNotSupported on this platform.
func NewNative() (*Native, error) {
	return nil, ErrNotSupported
}

// HasGIO always reports false on this platform.
func (n *Native) HasGIO() bool { return false }

// TypeFromSymbol always fails with ErrNotSupported on this platform.
func (n *Native) TypeFromSymbol(string) (Type, error) {
	return TypeInvalid, ErrNotSupported
}
