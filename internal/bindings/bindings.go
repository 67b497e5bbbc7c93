//go:build !ios && !android && (amd64 || arm64)

// Package bindings locates and loads the GLib shared libraries with purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/multierr"

	"github.com/rayblake800/goglib/internal/platform"
)

// ErrNotLoaded is returned when GLib functions are used before Load().
var ErrNotLoaded = errors.New("goglib: GLib libraries not loaded")

// ErrLibraryNotFound is returned when a required GLib library cannot be found.
var ErrLibraryNotFound = errors.New("goglib: GLib library not found")

// LibDirEnv names an extra directory searched before any other location.
const LibDirEnv = "GOGLIB_LIB_DIR"

// GLib 2.x keeps interface version 0 in every soname.
const soVersion = 0

// Library handles
var (
	libGLib    uintptr
	libGObject uintptr
	libGIO     uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// IsLoaded returns true if the GLib libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads libglib-2.0, libgobject-2.0 and, when present, libgio-2.0.
// It is safe to call multiple times; subsequent calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error

	// glib first: gobject links against it.
	libGLib, err = loadLibrary("glib-2.0")
	if err != nil {
		return fmt.Errorf("loading libglib-2.0: %w", err)
	}

	libGObject, err = loadLibrary("gobject-2.0")
	if err != nil {
		return fmt.Errorf("loading libgobject-2.0: %w", err)
	}

	// gio is optional, it only provides extra object types.
	libGIO, _ = loadLibrary("gio-2.0")

	return nil
}

// loadLibrary tries every candidate file name in every search path, then lets
// the dynamic linker search on its own. The returned error lists each attempt.
func loadLibrary(name string) (uintptr, error) {
	names := platform.LibraryNames(name, soVersion)
	var errs error

	for _, searchPath := range LibrarySearchPaths() {
		for _, libName := range names {
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err != nil {
				continue
			}
			lib, err := tryOpen(fullPath)
			if err == nil {
				return lib, nil
			}
			errs = multierr.Append(errs, err)
		}
	}

	for _, libName := range names {
		lib, err := tryOpen(libName)
		if err == nil {
			return lib, nil
		}
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrLibraryNotFound, name, errs)
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL so that gio and
// gobject resolve their glib symbols from the already loaded copy.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// FindLibrary searches for a GLib library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string) (string, error) {
	names := platform.LibraryNames(name, soVersion)
	for _, searchPath := range LibrarySearchPaths() {
		for _, libName := range names {
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns the directories searched for GLib libraries,
// starting with $GOGLIB_LIB_DIR.
func LibrarySearchPaths() []string {
	var paths []string

	if dir := os.Getenv(LibDirEnv); dir != "" {
		paths = append(paths, filepath.SplitList(dir)...)
	}

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib64",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/lib",          // Apple Silicon
			"/usr/local/lib",             // Intel
			"/opt/homebrew/opt/glib/lib", // Homebrew GLib
			"/usr/local/opt/glib/lib",    // Homebrew GLib (Intel)
			"/opt/local/lib",             // MacPorts
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			"C:\\msys64\\mingw64\\bin",
			"C:\\msys64\\ucrt64\\bin",
			"C:\\gtk-build\\gtk\\x64\\release\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// LibGLib returns the libglib-2.0 handle.
func LibGLib() uintptr {
	return libGLib
}

// LibGObject returns the libgobject-2.0 handle.
func LibGObject() uintptr {
	return libGObject
}

// LibGIO returns the libgio-2.0 handle, or 0 when gio is not installed.
func LibGIO() uintptr {
	return libGIO
}

// HasGIO returns true if libgio-2.0 is available.
func HasGIO() bool {
	return libGIO != 0
}

// Libraries returns every loaded library handle, gobject first.
func Libraries() []uintptr {
	libs := make([]uintptr, 0, 3)
	for _, lib := range []uintptr{libGObject, libGLib, libGIO} {
		if lib != 0 {
			libs = append(libs, lib)
		}
	}
	return libs
}

// Symbol looks up a symbol in every loaded library, gobject first.
func Symbol(name string) (uintptr, error) {
	if !loaded {
		return 0, ErrNotLoaded
	}
	var errs error
	for _, lib := range Libraries() {
		sym, err := purego.Dlsym(lib, name)
		if err == nil {
			return sym, nil
		}
		errs = multierr.Append(errs, err)
	}
	return 0, fmt.Errorf("symbol %s: %w", name, errs)
}
